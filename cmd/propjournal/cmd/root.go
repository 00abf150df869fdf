package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/propjournal/config"
	"github.com/rustyeddy/propjournal/internal/logging"
	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/secret"
)

var rootCmd = &cobra.Command{
	Use:   "propjournal",
	Short: "Trade reconciliation and analytics for prop-firm evaluation accounts",
	Long: `Propjournal keeps a ledger of closed trades for prop-firm evaluation
accounts and reports on them.

It provides tools for:
  - Registering accounts with encrypted terminal credentials
  - Syncing closed trades from the VPS trade history feed
  - Dashboards with equity curves and drawdown/consistency tracking
  - Monthly P/L calendars
  - Serving the reports over HTTP with a scheduled sync`,
	SilenceUsage: true,
}

var (
	cfgFile string
	envFile string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults apply when empty")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")
}

// loadConfig reads the dotenv file, the config file and the environment,
// in that order of precedence from lowest to highest.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := config.Default()
	if cfgFile != "" {
		loaded, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app bundles what most commands need.
type app struct {
	cfg    *config.Config
	ledger *ledger.SQLite
	cipher *secret.Cipher
	logger *zap.Logger
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	cipher, err := secret.LoadOrCreate(cfg.Secret.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("secret key: %w", err)
	}
	l, err := ledger.NewSQLite(cfg.Ledger.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return &app{cfg: cfg, ledger: l, cipher: cipher, logger: logger}, nil
}

func (a *app) Close() {
	_ = a.ledger.Close()
	_ = a.logger.Sync()
}
