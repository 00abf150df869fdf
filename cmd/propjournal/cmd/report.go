package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show dashboards and P/L calendars",
	Long: `Report on the ledger. Without --account the report covers every
active account.

Subcommands:
  dashboard - Balances, trade statistics, drawdown and equity curve
  calendar  - Daily P/L for one month

Examples:
  propjournal report dashboard --account 2
  propjournal report calendar --year 2024 --month 3`,
}

var reportDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the dashboard",
	Args:  cobra.NoArgs,
	RunE:  runReportDashboard,
}

var reportCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the monthly P/L calendar",
	Args:  cobra.NoArgs,
	RunE:  runReportCalendar,
}

var (
	reportAccountID int64
	reportJSON      bool
	calendarYear    int
	calendarMonth   int
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportDashboardCmd, reportCalendarCmd)

	reportCmd.PersistentFlags().Int64VarP(&reportAccountID, "account", "a", 0, "account id (0 for all active accounts)")
	reportCmd.PersistentFlags().BoolVar(&reportJSON, "json", false, "print JSON instead of text")

	now := time.Now()
	reportCalendarCmd.Flags().IntVar(&calendarYear, "year", now.Year(), "calendar year")
	reportCalendarCmd.Flags().IntVar(&calendarMonth, "month", int(now.Month()), "calendar month (1-12)")
}

func runReportDashboard(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	d, err := report.NewService(a.ledger).Dashboard(context.Background(), reportAccountID)
	if err != nil {
		return err
	}
	if reportJSON {
		return printJSON(cmd, d)
	}
	report.PrintDashboard(cmd.OutOrStdout(), d)
	return nil
}

func runReportCalendar(cmd *cobra.Command, args []string) error {
	if calendarMonth < 1 || calendarMonth > 12 {
		return fmt.Errorf("--month must be 1-12")
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	cal, err := report.NewService(a.ledger).Calendar(context.Background(), reportAccountID, calendarYear, time.Month(calendarMonth))
	if err != nil {
		return err
	}
	if reportJSON {
		return printJSON(cmd, cal)
	}
	report.PrintCalendar(cmd.OutOrStdout(), cal)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
