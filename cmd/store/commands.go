package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/sk-intls/ecommerce-simulation/pkg/infrastructure/transport"
)

const shutdownTimeout = 10 * time.Second

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply or roll back database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: withContainer(func(_ *cli.Context, c *container) error {
					return c.migrator.Up()
				}),
			},
			{
				Name:  "down",
				Usage: "roll back all migrations",
				Action: withContainer(func(_ *cli.Context, c *container) error {
					return c.migrator.Down()
				}),
			},
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "load catalog products and demo customers",
		Action: withContainer(func(ctx *cli.Context, c *container) error {
			if err := c.store.Init(ctx.Context); err != nil {
				return err
			}
			return c.seed(ctx.Context)
		}),
	}
}

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "seed the store and walk through a premium and a regular customer journey",
		Action: withContainer(func(ctx *cli.Context, c *container) error {
			if err := c.store.Init(ctx.Context); err != nil {
				return err
			}
			if err := c.seed(ctx.Context); err != nil {
				return err
			}
			return runDemo(ctx.Context, c.store)
		}),
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the store over HTTP",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "seed", Usage: "seed the store before serving"},
		},
		Action: withContainer(func(ctx *cli.Context, c *container) error {
			if err := c.store.Init(ctx.Context); err != nil {
				return err
			}
			if ctx.Bool("seed") {
				if err := c.seed(ctx.Context); err != nil {
					return err
				}
			}
			return serve(ctx.Context, c)
		}),
	}
}

func withContainer(action func(ctx *cli.Context, c *container) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		c, err := newContainer(ctx.Context)
		if err != nil {
			return err
		}
		defer c.close()
		return action(ctx, c)
	}
}

func serve(ctx context.Context, c *container) error {
	srv := &http.Server{
		Addr:              c.config.HTTPAddr,
		Handler:           transport.Router(c.store),
		ReadHeaderTimeout: 5 * time.Second,
	}
	killSignalChan := getKillSignalChan()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithFields(log.Fields{"addr": srv.Addr}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to start server")
		}
		return nil
	})
	g.Go(func() error {
		select {
		case killSignal := <-killSignalChan:
			logKillSignal(killSignal)
		case <-gctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func logKillSignal(killSignal os.Signal) {
	switch killSignal {
	case os.Interrupt:
		log.Info("got SIGINT...")
	case syscall.SIGTERM:
		log.Info("got SIGTERM...")
	}
}
