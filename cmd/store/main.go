package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  appID,
		Usage: "e-commerce store: catalog, customers, orders and restock alerts",
		Commands: []*cli.Command{
			migrateCommand(),
			seedCommand(),
			demoCommand(),
			serveCommand(),
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.WithError(err).Fatal("store failed")
	}
}
