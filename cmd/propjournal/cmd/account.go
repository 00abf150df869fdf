package cmd

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/report"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage evaluation accounts",
	Long: `Register and administer the accounts the sync pulls trades for.

Subcommands:
  add        - Register an account (the password is stored encrypted)
  list       - List accounts with their P/L
  activate   - Include an account in syncs and dashboards
  deactivate - Exclude an account from syncs and dashboards
  delete     - Remove an account and all of its trades

Examples:
  propjournal account add --login 5012345 --password ... --server FTMO-Demo --initial 100000 --max-dd 10
  propjournal account deactivate 3`,
}

var accountAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register an account",
	Args:  cobra.NoArgs,
	RunE:  runAccountAdd,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE:  runAccountList,
}

var accountActivateCmd = &cobra.Command{
	Use:   "activate <account-id>",
	Short: "Mark an account active",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setAccountActive(cmd, args[0], true) },
}

var accountDeactivateCmd = &cobra.Command{
	Use:   "deactivate <account-id>",
	Short: "Mark an account inactive",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setAccountActive(cmd, args[0], false) },
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete <account-id>",
	Short: "Delete an account and its trades",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountDelete,
}

var newAccount ledger.Account

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountAddCmd, accountListCmd, accountActivateCmd, accountDeactivateCmd, accountDeleteCmd)

	f := accountAddCmd.Flags()
	f.Int64Var(&newAccount.LoginID, "login", 0, "terminal login id (required)")
	f.StringVar(&newAccount.Password, "password", "", "terminal password (required)")
	f.StringVar(&newAccount.Server, "server", "", "broker server name")
	f.StringVar(&newAccount.Alias, "alias", "", "display name")
	f.StringVar(&newAccount.PropFirm, "prop-firm", "", "prop firm name")
	f.StringVar(&newAccount.AccountType, "type", "", "account type, e.g. phase-1")
	f.Float64Var(&newAccount.InitialBalance, "initial", 0, "initial balance (required)")
	f.Float64Var(&newAccount.RiskPerTrade, "risk", 0, "risk per trade, percent")
	f.Float64Var(&newAccount.TargetPercent, "target", 0, "profit target, percent")
	f.Float64Var(&newAccount.Investment, "investment", 0, "evaluation fee paid")
	f.BoolVar(&newAccount.TrailingDrawdown, "trailing", false, "max drawdown trails the high-water mark")
	f.Float64Var(&newAccount.DailyDrawdownLimit, "daily-dd", 0, "daily drawdown limit, percent")
	f.Float64Var(&newAccount.MaxDrawdownLimit, "max-dd", 0, "max drawdown limit, percent")
	f.Float64Var(&newAccount.ConsistencyRule, "consistency", 0, "max share of profit from one day, percent (0 disables)")
	accountAddCmd.MarkFlagRequired("login")
	accountAddCmd.MarkFlagRequired("password")
	accountAddCmd.MarkFlagRequired("initial")
}

func runAccountAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	acct := newAccount
	if acct.InitialBalance <= 0 {
		return fmt.Errorf("--initial must be positive")
	}
	if acct.Alias == "" {
		acct.Alias = strconv.FormatInt(acct.LoginID, 10)
	}
	acct.Password, err = a.cipher.Encrypt(acct.Password)
	if err != nil {
		return fmt.Errorf("encrypt password: %w", err)
	}
	if err := a.ledger.CreateAccount(context.Background(), &acct); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added account %d (%s, login %d)\n", acct.ID, acct.Alias, acct.LoginID)
	return nil
}

func runAccountList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	views, err := report.NewService(a.ledger).Accounts(context.Background())
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLOGIN\tALIAS\tFIRM\tACTIVE\tINITIAL\tBALANCE\tP/L\t%")
	for _, v := range views {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%t\t%.2f\t%.2f\t%+.2f\t%+.2f\n",
			v.ID, v.LoginID, v.Alias, v.PropFirm, v.Active, v.InitialBalance, v.Balance, v.TotalPL, v.CurrentPercent)
	}
	return w.Flush()
}

func setAccountActive(cmd *cobra.Command, arg string, active bool) error {
	id, err := parseAccountID(arg)
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ledger.SetActive(context.Background(), id, active); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	state := "inactive"
	if active {
		state = "active"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Account %d is %s\n", id, state)
	return nil
}

func runAccountDelete(cmd *cobra.Command, args []string) error {
	id, err := parseAccountID(args[0])
	if err != nil {
		return err
	}
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.ledger.DeleteAccount(context.Background(), id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted account %d and its trades\n", id)
	return nil
}

func parseAccountID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid account id %q", s)
	}
	return id, nil
}
