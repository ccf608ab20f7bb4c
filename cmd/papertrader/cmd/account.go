package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the paper-trading account",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new account with the configured starting balance",
	Args:  cobra.NoArgs,
	RunE:  runAccountCreate,
}

var accountShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the account balance and trade list",
	Args:  cobra.NoArgs,
	RunE:  runAccountShow,
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountShowCmd)
}

func runAccountCreate(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	acct, err := rt.engine.CreateAccount(cmd.Context(),
		rt.cfg.Account.ID,
		rt.cfg.Account.Currency,
		decimal.NewFromFloat(rt.cfg.Account.StartingBalance))
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	fmt.Printf("account %s created with balance %s %s\n",
		acct.ID, acct.Balance, acct.Currency)
	return nil
}

func runAccountShow(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	acct, err := rt.engine.GetAccount(cmd.Context(), rt.cfg.Account.ID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	fmt.Printf("account:   %s (%s)\n", acct.ID, acct.Currency)
	fmt.Printf("starting:  %s\n", acct.StartingBalance)
	fmt.Printf("balance:   %s\n", acct.Balance)
	fmt.Printf("trades:    %d\n", len(acct.Trades))

	for i := range acct.Trades {
		printTrade(&acct.Trades[i])
	}
	return nil
}
