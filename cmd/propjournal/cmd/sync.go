package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/config"
	"github.com/rustyeddy/propjournal/reconcile"
	"github.com/rustyeddy/propjournal/vps"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull new closed trades for every active account",
	Long: `Run one reconciliation pass: ask the VPS feed for each active account's
trades closed since its latest recorded trade, then merge them into the
ledger. Re-running is safe; trades already recorded are skipped.

Example:
  VPS_MT5_URL=http://vps:5000/sync propjournal sync`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func (a *app) reconciler() (*reconcile.Reconciler, error) {
	if a.cfg.VPS.URL == "" {
		return nil, fmt.Errorf("vps.url is not set (config or %s)", config.EnvVPSURL)
	}
	timeout, err := a.cfg.VPS.ParseTimeout()
	if err != nil {
		return nil, err
	}
	feed := vps.NewClient(a.cfg.VPS.URL, a.cfg.VPS.APIKey, timeout)
	return reconcile.New(a.ledger, feed, a.cipher, a.logger), nil
}

func runSync(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := a.reconciler()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	rep, err := r.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	printSyncReport(cmd.OutOrStdout(), rep)
	return nil
}

func printSyncReport(w io.Writer, rep reconcile.Report) {
	fmt.Fprintf(w, "Sync %s: %s\n", rep.RunID, rep.Message)
	if rep.Accounts == 0 {
		return
	}
	fmt.Fprintf(w, "  Accounts:         %d\n", rep.Accounts)
	fmt.Fprintf(w, "  New trades:       %d\n", rep.NewTrades)
	fmt.Fprintf(w, "  Already recorded: %d\n", rep.Duplicates)
	fmt.Fprintf(w, "  Balances updated: %d\n", rep.BalancesUpdated)
	if len(rep.Skipped) > 0 {
		fmt.Fprintf(w, "  Skipped:          %d\n", len(rep.Skipped))
		for _, s := range rep.Skipped {
			fmt.Fprintf(w, "    login %d ticket %d: %s\n", s.Login, s.Ticket, s.Reason)
		}
	}
}
