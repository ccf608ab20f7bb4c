package cmd

import (
	"fmt"

	"github.com/Zee-create-614/papertrader/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write a default configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		if err := cfg.SaveToFile(args[0]); err != nil {
			return err
		}
		fmt.Printf("wrote default config to %s\n", args[0])
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		fmt.Printf("account:  %s (%s), starting balance %.2f\n",
			cfg.Account.ID, cfg.Account.Currency, cfg.Account.StartingBalance)
		fmt.Printf("store:    %s %s\n", cfg.Store.Type, cfg.Store.Path)
		fmt.Printf("journal:  %s\n", cfg.Journal.Type)
		fmt.Printf("server:   %s\n", cfg.Server.Addr)
		fmt.Printf("log:      %s\n", cfg.Log.Level)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
