package main

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

type command interface {
	name() string
	config() *globalConfig
	execute(ctx context.Context, env *cmdEnv) error
}

// cmdEnv carries the resources a command runs with.
type cmdEnv struct {
	logger   xlog.XLogger
	mp       metric.MeterProvider
	out      io.Writer
	gatherer prometheus.Gatherer
}

// dumpPrometheus writes the gathered metrics in the text exposition format.
func (env *cmdEnv) dumpPrometheus() error {
	if env.gatherer == nil {
		return nil
	}
	families, err := env.gatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err = expfmt.MetricFamilyToText(env.out, mf); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(lc fx.Lifecycle, cmd command) xlog.XLogger {
	logger := xlog.NewXLogger(
		xlog.WithXLoggerStdOutWriter(),
		cmd.config().logEncoder(),
	)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = logger.Sync()
			return nil
		},
	})
	return logger
}

func newCmdEnv(lc fx.Lifecycle, cmd command, logger xlog.XLogger, out io.Writer) (*cmdEnv, error) {
	env := &cmdEnv{
		logger: logger,
		mp:     noop.NewMeterProvider(),
		out:    out,
	}
	switch cmd.config().metrics {
	case metricsConsole:
		mp, err := observability.NewConsoleMeterProvider(
			10*time.Second,
			5*time.Second,
			stdoutmetric.WithWriter(out),
			stdoutmetric.WithPrettyPrint(),
		)
		if err != nil {
			return nil, err
		}
		env.mp = mp
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				observability.InitAppStats(ctx, cmd.name(), nil)
				return nil
			},
			OnStop: mp.Shutdown,
		})
		_ = observability.SetGlobalMeterProvider(mp)
	case metricsPrometheus:
		registry := prometheus.NewRegistry()
		mp, err := observability.NewPrometheusMeterProvider(otelprom.WithRegisterer(registry))
		if err != nil {
			return nil, err
		}
		env.mp, env.gatherer = mp, registry
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				observability.InitAppStats(ctx, cmd.name(), nil)
				return nil
			},
			OnStop: mp.Shutdown,
		})
		_ = observability.SetGlobalMeterProvider(mp)
	default:
	}
	return env, nil
}

func setMaxProcs(lc fx.Lifecycle, logger xlog.XLogger) error {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.DebugLevel, format, args...)
	}))
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			undo()
			return nil
		},
	})
	return nil
}

func executeCommand(lc fx.Lifecycle, cmd command, env *cmdEnv) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			start := time.Now()
			if err := cmd.execute(ctx, env); err != nil {
				env.logger.Error(err, "[rbtreectl] command failed", zap.String("command", cmd.name()))
				return err
			}
			env.logger.Info("[rbtreectl] command done",
				zap.String("command", cmd.name()),
				zap.Duration("elapsed", time.Since(start)),
			)
			return env.dumpPrometheus()
		},
	})
}

func newApp(cmd command, out io.Writer) *fx.App {
	return fx.New(
		// The command runs inside the start hooks.
		fx.StartTimeout(30*time.Minute),
		fx.Provide(
			func() command { return cmd },
			func() io.Writer { return out },
			newLogger,
			newCmdEnv,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Invoke(
			setMaxProcs,
			executeCommand,
		),
	)
}

// runApp starts the app which executes the command once, then stops it.
func runApp(ctx context.Context, app *fx.App) error {
	if err := app.Err(); err != nil {
		return err
	}
	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	startErr := app.Start(startCtx)

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	if startErr != nil {
		return startErr
	}
	return app.Stop(stopCtx)
}
