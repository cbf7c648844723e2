package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"spendwise/internal/amqp"
	"spendwise/internal/backend"
	"spendwise/internal/config"
	"spendwise/internal/ledger"
	applog "spendwise/internal/log"
	"spendwise/internal/render"
	"spendwise/internal/services"
)

// Env is handed to every command through subcommands' Execute args. The
// logger travels in the context (see applog.NewContext).
type Env struct {
	Config *config.Config
	Stdout io.Writer
	Stderr io.Writer
}

// App is one open ledger plus everything needed to present it.
type App struct {
	Store     *ledger.Store
	Formatter *render.Formatter

	logger   *applog.Logger
	cleanups []backend.CleanupFunc
}

// OpenApp opens the configured slot, loads the ledger and, when AMQP_URL is
// set, attaches the change feed. A broker that cannot be reached is logged
// and the ledger works without it.
func OpenApp(ctx context.Context, env *Env) (*App, error) {
	cfg, logger := env.Config, applog.FromContext(ctx)

	formatter, err := render.NewFormatter(cfg.Currency)
	if err != nil {
		return nil, err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateSlot(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Store:     ledger.Open(ctx, res.Slot, logger),
		Formatter: formatter,
		logger:    logger.WithComponent(applog.ComponentApp),
	}
	if res.Cleanup != nil {
		app.cleanups = append(app.cleanups, res.Cleanup)
	}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change feed",
				applog.FieldError, err)
		} else {
			pub := services.NewChangePublisher(client, logger)
			pub.Attach(app.Store)
			app.cleanups = append(app.cleanups, pub.Close)
		}
	}

	app.logger.DebugContext(ctx, "Ledger opened",
		applog.FieldOperation, applog.OpStartup,
		applog.FieldBackend, bcfg.Type.String(),
		applog.FieldSlot, bcfg.SlotName,
		applog.FieldCount, app.Store.Len())

	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		err := errors.Join(errs...)
		a.logger.Error("Failed to release resources",
			applog.NewFields().WithOperation(applog.OpShutdown).WithError(err).ToSlice()...)
		return fmt.Errorf("close app: %w", err)
	}
	a.logger.Debug("Ledger closed", applog.FieldOperation, applog.OpShutdown)
	return nil
}
