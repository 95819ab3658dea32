package app

import (
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"authstate/internal/authdisk"
	"authstate/internal/domain"
	accountsvc "authstate/internal/services/account"
	"authstate/internal/store"
)

// Wire bundles the backing store and services for the CLI.
type Wire struct {
	Raw      domain.RawStore
	Disk     *authdisk.Source
	Accounts domain.AccountService
	Log      *zap.Logger
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg *Config, log *zap.Logger) (*Wire, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Home != "" {
		if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
			return nil, err
		}
	}

	raw, err := store.Open(cfg.Backend, cfg.Home, log.Named("store"))
	if err != nil {
		return nil, err
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = authdisk.DefaultKeyPrefix
	}

	// Secret kinds go through the sealed store; everything else passes through.
	if cfg.Secure.Enabled {
		sealed, err := store.NewSealedStore(raw, cfg.Secure.Passphrase,
			store.WithSealedKeys(authdisk.SecretKeyMatcher(prefix)))
		if err != nil {
			return nil, multierr.Append(err, raw.Close())
		}
		raw = sealed
	}

	opts := []authdisk.Option{
		authdisk.WithLogger(log.Named("authdisk")),
		authdisk.WithKeyPrefix(prefix),
	}
	if cfg.SubscriberBuffer > 0 {
		opts = append(opts, authdisk.WithSubscriberBuffer(cfg.SubscriberBuffer))
	}
	disk := authdisk.New(raw, opts...)
	accounts := accountsvc.New(disk, log.Named("account"))

	log.Debug("wired",
		zap.String("backend", cfg.Backend),
		zap.Bool("sealed", cfg.Secure.Enabled))

	return &Wire{
		Raw:      raw,
		Disk:     disk,
		Accounts: accounts,
		Log:      log,
	}, nil
}

// Close releases the backing store.
func (w *Wire) Close() error {
	return w.Raw.Close()
}
