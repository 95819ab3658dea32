package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"authstate/internal/app"
)

var (
	home       string
	configPath string
	backend    string
	passphrase string
	verbose    bool

	logger *zap.Logger
	wire   *app.Wire
)

// Execute runs the CLI with os.Args.
func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	return multierr.Append(err, shutdown())
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "authstate",
		Short:         "Per-device multi-account authentication state",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err = app.NewLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			wire, err = app.NewWire(cfg, logger)
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.authstate)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	root.PersistentFlags().StringVar(&backend, "backend", "", "backing store: file, leveldb, badger or memory")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase to seal stored keys")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		appIDCmd(),
		accountsCmd(),
		loginCmd(),
		switchCmd(),
		logoutCmd(),
		lockCmd(),
		getCmd(),
		putCmd(),
		clearCmd(),
		emailCmd(),
		watchCmd(),
	)
	return root
}

// loadConfig reads the config file and applies flag overrides on top.
func loadConfig(cmd *cobra.Command) (*app.Config, error) {
	path := configPath
	if path == "" {
		dir := home
		if dir == "" {
			dir = os.Getenv("AUTHSTATE_HOME")
		}
		if dir == "" {
			var err error
			if dir, err = app.DefaultHome(); err != nil {
				return nil, err
			}
		}
		path = filepath.Join(dir, "config.yaml")
	}
	cfg, err := app.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("home") || cfg.Home == "" {
		if home == "" {
			if home, err = app.DefaultHome(); err != nil {
				return nil, err
			}
		}
		cfg.Home = home
	}
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if passphrase != "" {
		cfg.Secure.Enabled = true
		cfg.Secure.Passphrase = passphrase
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// shutdown closes the wired store and flushes the logger.
func shutdown() error {
	var err error
	if wire != nil {
		err = wire.Close()
		wire = nil
	}
	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
	return err
}
