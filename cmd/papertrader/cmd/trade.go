package cmd

import (
	"fmt"
	"time"

	"github.com/Zee-create-614/papertrader/engine"
	"github.com/Zee-create-614/papertrader/ledger"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Open, close, expire and delete trades",
}

var (
	openType       string
	openSymbol     string
	openDirection  string
	openEntryPrice string
	openQuantity   string
	openStrategy   string
	openStrike     string
	openStrike2    string
	openContracts  int64
	openPremium    string
	openExpiration string
	openNotes      string
	openSignal     string
)

var tradeOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a spot or option trade",
	Long: `Open a trade against the configured account.

Examples:
  papertrader trade open --type spot --symbol BTC --direction long \
      --entry 96000 --quantity 0.25

  papertrader trade open --type option --symbol AAPL --strategy covered_call \
      --entry 100 --strike 110 --contracts 1 --premium 2 --expiration 2026-10-16`,
	Args: cobra.NoArgs,
	RunE: runTradeOpen,
}

var (
	closePrice   string
	closePremium string
)

var tradeCloseCmd = &cobra.Command{
	Use:   "close <trade-id>",
	Short: "Close an open trade at the given underlying price",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeClose,
}

var expirePrice string

var tradeExpireCmd = &cobra.Command{
	Use:   "expire <trade-id>",
	Short: "Settle an option past its expiration date",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeExpire,
}

var tradeDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete a trade record (does not reverse its cash effects)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeDelete,
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all trades on the account",
	Args:  cobra.NoArgs,
	RunE:  runTradeList,
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeOpenCmd)
	tradeCmd.AddCommand(tradeCloseCmd)
	tradeCmd.AddCommand(tradeExpireCmd)
	tradeCmd.AddCommand(tradeDeleteCmd)
	tradeCmd.AddCommand(tradeListCmd)

	f := tradeOpenCmd.Flags()
	f.StringVar(&openType, "type", "spot", "trade type: spot or option")
	f.StringVar(&openSymbol, "symbol", "", "symbol, e.g. BTC or AAPL")
	f.StringVar(&openDirection, "direction", "", "spot direction: long or short")
	f.StringVar(&openEntryPrice, "entry", "", "entry price of the underlying")
	f.StringVar(&openQuantity, "quantity", "", "spot quantity (fractional allowed)")
	f.StringVar(&openStrategy, "strategy", "", "option strategy kind")
	f.StringVar(&openStrike, "strike", "", "option strike price")
	f.StringVar(&openStrike2, "strike2", "", "second strike for spreads")
	f.Int64Var(&openContracts, "contracts", 0, "option contracts (x100 shares)")
	f.StringVar(&openPremium, "premium", "", "per-share premium")
	f.StringVar(&openExpiration, "expiration", "", "option expiration date (YYYY-MM-DD)")
	f.StringVar(&openNotes, "notes", "", "free-form notes")
	f.StringVar(&openSignal, "signal", "", "signal tag captured at entry")

	tradeCloseCmd.Flags().StringVar(&closePrice, "price", "", "underlying price at close")
	tradeCloseCmd.Flags().StringVar(&closePremium, "premium", "", "per-share exit premium (options, informational)")

	tradeExpireCmd.Flags().StringVar(&expirePrice, "price", "", "underlying settlement price")
}

func parseDecimalFlag(name, val string) (decimal.Decimal, error) {
	if val == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("flag --%s: %w", name, err)
	}
	return d, nil
}

func buildOpenRequest() (engine.OpenRequest, error) {
	req := engine.OpenRequest{
		Type:      ledger.TradeType(openType),
		Symbol:    openSymbol,
		Direction: ledger.Direction(openDirection),
		Strategy:  ledger.Strategy(openStrategy),
		Contracts: openContracts,
		Notes:     openNotes,
		Signal:    openSignal,
	}

	var err error
	if req.EntryPrice, err = parseDecimalFlag("entry", openEntryPrice); err != nil {
		return req, err
	}
	if req.Quantity, err = parseDecimalFlag("quantity", openQuantity); err != nil {
		return req, err
	}
	if req.Strike, err = parseDecimalFlag("strike", openStrike); err != nil {
		return req, err
	}
	if req.Premium, err = parseDecimalFlag("premium", openPremium); err != nil {
		return req, err
	}
	if openStrike2 != "" {
		s2, err := parseDecimalFlag("strike2", openStrike2)
		if err != nil {
			return req, err
		}
		req.SecondStrike = &s2
	}
	if openExpiration != "" {
		exp, err := time.Parse("2006-01-02", openExpiration)
		if err != nil {
			return req, fmt.Errorf("flag --expiration: %w", err)
		}
		req.Expiration = exp.UTC()
	}
	return req, nil
}

func runTradeOpen(cmd *cobra.Command, _ []string) error {
	req, err := buildOpenRequest()
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	t, err := rt.engine.OpenTrade(cmd.Context(), rt.cfg.Account.ID, req)
	if err != nil {
		return fmt.Errorf("open trade: %w", err)
	}

	fmt.Printf("opened %s\n", t.ID)
	printTrade(t)
	return nil
}

func runTradeClose(cmd *cobra.Command, args []string) error {
	price, err := parseDecimalFlag("price", closePrice)
	if err != nil {
		return err
	}
	req := engine.CloseRequest{ClosePrice: price}
	if closePremium != "" {
		p, err := parseDecimalFlag("premium", closePremium)
		if err != nil {
			return err
		}
		req.ClosePremium = &p
	}

	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	t, err := rt.engine.CloseTrade(cmd.Context(), rt.cfg.Account.ID, args[0], req)
	if err != nil {
		return fmt.Errorf("close trade: %w", err)
	}

	fmt.Printf("closed %s: pnl %s (%s%%)\n", t.ID, t.Pnl, t.PnlPercent.StringFixed(2))
	return nil
}

func runTradeExpire(cmd *cobra.Command, args []string) error {
	price, err := parseDecimalFlag("price", expirePrice)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	t, err := rt.engine.ExpireTrade(cmd.Context(), rt.cfg.Account.ID, args[0], price)
	if err != nil {
		return fmt.Errorf("expire trade: %w", err)
	}

	fmt.Printf("expired %s: pnl %s\n", t.ID, t.Pnl)
	return nil
}

func runTradeDelete(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.engine.DeleteTrade(cmd.Context(), rt.cfg.Account.ID, args[0]); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}

	fmt.Printf("deleted %s (cash effects preserved)\n", args[0])
	return nil
}

func runTradeList(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	acct, err := rt.engine.GetAccount(cmd.Context(), rt.cfg.Account.ID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	for i := range acct.Trades {
		printTrade(&acct.Trades[i])
	}
	return nil
}

func printTrade(t *ledger.Trade) {
	switch t.Type {
	case ledger.TradeTypeSpot:
		fmt.Printf("  %s  %-7s %-6s %s x %s @ %s",
			t.ID, t.Status, t.Direction, t.Symbol, t.Spot.Quantity, t.EntryPrice)
	case ledger.TradeTypeOption:
		o := t.Option
		fmt.Printf("  %s  %-7s %-16s %s strike %s x %d @ premium %s exp %s",
			t.ID, t.Status, o.Strategy, t.Symbol, o.Strike, o.Contracts,
			o.Premium, o.Expiration.Format("2006-01-02"))
	}
	if t.Pnl != nil {
		fmt.Printf("  pnl %s", t.Pnl)
	}
	fmt.Println()
}
