package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/equitytax/tax-calculator/internal/api"
	"github.com/equitytax/tax-calculator/internal/calculation"
	"github.com/equitytax/tax-calculator/internal/config"
	"github.com/equitytax/tax-calculator/internal/logging"
	"github.com/equitytax/tax-calculator/internal/service"
	"github.com/equitytax/tax-calculator/internal/storage"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tax return HTTP API",
		Long: `Run the tax return HTTP API.

Settings come from TAXCALC_* environment variables, optionally loaded from a
.env file in the working directory. --addr and --rules override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServerConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if root.rulesFile != "" {
				cfg.RulesFile = root.rulesFile
			}

			log, err := logging.New(cfg.LogLevel, cfg.LogJSON)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			if !log.Core().Enabled(zapcore.DebugLevel) {
				gin.SetMode(gin.ReleaseMode)
			}

			rules, err := config.NewInputParser().LoadRules(cfg.RulesFile)
			if err != nil {
				return err
			}
			calc := calculation.NewCalculator(rules)
			calc.Debug = root.debug
			calc.SetLogger(log.Sugar())

			repo, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			svc := service.NewTaxReturnService(repo, calc, log.Sugar())
			log.Info("starting tax calculator api",
				zap.String("store", cfg.Store),
				zap.Ints("tax_years", rules.Years()),
			)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return api.Serve(ctx, cfg.Addr, api.NewRouter(svc, log), cfg.ShutdownTimeout, log)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides TAXCALC_ADDR)")
	return cmd
}

func openStore(cfg config.ServerConfig) (storage.Repository, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		repo, err := storage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return repo, nil
	default:
		return storage.NewMemoryStore(), nil
	}
}
