package cmd

import (
	"context"
	"fmt"

	"github.com/Zee-create-614/papertrader/config"
	"github.com/Zee-create-614/papertrader/engine"
	"github.com/Zee-create-614/papertrader/journal"
	"github.com/Zee-create-614/papertrader/logger"
	"github.com/Zee-create-614/papertrader/market"
	"github.com/Zee-create-614/papertrader/store"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "papertrader",
	Short: "A paper-trading simulation engine for spot and options strategies",
	Long: `Papertrader is a virtual brokerage ledger.

It lets you open and close simulated positions against a single cash account:
  - Spot long and short positions
  - Covered calls, cash-secured puts, protective puts
  - Bull call and bear put vertical spreads

The account balance, trade lifecycle, and realized P&L stay mutually
consistent at all times; statistics are derived fresh from closed trades.`,
}

var cfgFile string

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
}

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

// runtime bundles everything the commands need, built from config.
type runtime struct {
	cfg    *config.Config
	store  store.Store
	jrnl   journal.Journal
	engine *engine.Engine
	logger *zap.Logger
}

func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jrnl, err := openJournal(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	opts := []engine.Option{engine.WithLogger(log)}
	if jrnl != nil {
		opts = append(opts, engine.WithJournal(jrnl))
	}
	if prices := openPriceSource(cfg); prices != nil {
		opts = append(opts, engine.WithPriceSource(prices))
	}

	return &runtime{
		cfg:    cfg,
		store:  st,
		jrnl:   jrnl,
		engine: engine.New(st, opts...),
		logger: log,
	}, nil
}

func (rt *runtime) close() {
	if rt.jrnl != nil {
		rt.jrnl.Close()
	}
	rt.store.Close()
	rt.logger.Sync()
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Type {
	case "memory":
		return store.NewMemory(), nil
	case "file":
		return store.NewFile(cfg.Store.Path)
	case "sqlite":
		return store.NewSQLite(cfg.Store.Path)
	case "redis":
		return store.NewRedis(ctx, store.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

func openPriceSource(cfg *config.Config) market.PriceSource {
	if cfg.Market.Type != "redis" {
		return nil
	}
	return market.NewRedisSource(redis.NewClient(&redis.Options{
		Addr:     cfg.Market.Redis.Addr,
		Password: cfg.Market.Redis.Password,
		DB:       cfg.Market.Redis.DB,
	}))
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "", "none":
		return nil, nil
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.BalanceFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}
