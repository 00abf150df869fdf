package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/analytics"
	"github.com/rustyeddy/propjournal/report"
)

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List recorded trades as Org-mode entries",
	Long: `List trades from the ledger, formatted as Org-mode headings ready to
paste into a trading journal.

Examples:
  propjournal trades --date 2024-01-15
  propjournal trades --today --account 2`,
	Args: cobra.NoArgs,
	RunE: runTrades,
}

var (
	tradesDate      string
	tradesToday     bool
	tradesAccountID int64
)

func init() {
	rootCmd.AddCommand(tradesCmd)

	tradesCmd.Flags().StringVar(&tradesDate, "date", "", "only trades closed on this UTC day (YYYY-MM-DD)")
	tradesCmd.Flags().BoolVar(&tradesToday, "today", false, "only trades closed today (UTC)")
	tradesCmd.Flags().Int64VarP(&tradesAccountID, "account", "a", 0, "account id (0 for all accounts)")
	tradesCmd.MarkFlagsMutuallyExclusive("date", "today")
}

func runTrades(cmd *cobra.Command, args []string) error {
	var day time.Time
	switch {
	case tradesToday:
		day = time.Now().UTC()
	case tradesDate != "":
		d, err := time.Parse(analytics.DayLayout, tradesDate)
		if err != nil {
			return fmt.Errorf("date: %w", err)
		}
		day = d
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	views, err := report.NewService(a.ledger).Trades(context.Background(), tradesAccountID, day)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	if len(views) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no trades")
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), report.FormatTradesOrg(views))
	return nil
}
