package cmd

import (
	"fmt"

	"github.com/Zee-create-614/papertrader/stats"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show performance statistics derived from closed trades",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	acct, err := rt.engine.GetAccount(cmd.Context(), rt.cfg.Account.ID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	s := stats.Summarize(acct)

	fmt.Printf("trades:         %d (%d open, %d closed, %d expired)\n",
		s.TotalTrades, s.OpenTrades, s.ClosedTrades, s.ExpiredTrades)
	fmt.Printf("wins/losses:    %d / %d\n", s.WinningTrades, s.LosingTrades)
	fmt.Printf("win rate:       %.2f%%\n", s.WinRate)
	fmt.Printf("profit factor:  %.2f\n", s.ProfitFactor)
	fmt.Printf("realized pnl:   %s\n", s.RealizedPnl)
	fmt.Printf("total return:   %.2f%%\n", s.TotalReturnPct)
	return nil
}
