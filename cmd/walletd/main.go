package main

import (
	"os"
	"os/signal"
	"syscall"

	appconfig "github.com/otcdesk/walletd/internal/app-config"
	"github.com/otcdesk/walletd/internal/config"
	httpservice "github.com/otcdesk/walletd/internal/interface/http"
	"github.com/urfave/cli/v2"

	log "github.com/sirupsen/logrus"
)

//nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := cli.NewApp()
	app.Name = "walletd"
	app.Usage = "wallet session daemon for the OTC trading desk"
	app.Version = version
	app.Flags = []cli.Flag{urlFlag}
	app.Action = daemonAction
	app.Commands = append(cli.Commands{}, sessionCmd, accountCmd, senderCmd)

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func daemonAction(_ *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	appConfig := &appconfig.Config{
		DbType:  cfg.DbType,
		DbDir:   cfg.DbDir,
		NodeURL: cfg.NodeURL,
	}
	session, err := appConfig.SessionService()
	if err != nil {
		return err
	}
	accounts, err := appConfig.AccountService()
	if err != nil {
		return err
	}

	svc := httpservice.NewService(
		httpservice.Config{Port: cfg.Port, NoCors: cfg.NoCors},
		session, accounts, appConfig.BridgeHub(),
	)

	log.RegisterExitHandler(svc.Stop)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, os.Interrupt)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
	return nil
}
