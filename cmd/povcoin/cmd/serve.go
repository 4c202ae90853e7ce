package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/spf13/cobra"
)

// build is the git version of this program, set via build flags.
var build = "develop"

// serveConfig is the long-running node's configuration. Values come from
// environment variables or defaults; the P2P port matches the gossip
// default of spec's reference implementation.
type serveConfig struct {
	conf.Version
	P2P struct {
		Host            string        `conf:"default:0.0.0.0:6001"`
		ShutdownTimeout time.Duration `conf:"default:5s"`
	}
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gossip transport and keep this node's chain resident.",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runServe(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	log := newLogger("POVCOIN")
	defer log.Sync()

	cfg := serveConfig{
		Version: conf.Version{Build: build, Desc: "povcoin node"},
	}

	const prefix = "POVCOIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	log.Infow("startup", "version", build)
	defer log.Infow("shutdown complete")

	n, g, err := newNode(log)
	if err != nil {
		return fmt.Errorf("wiring node: %w", err)
	}

	log.Infow("startup", "status", "wallet ready", "address", n.Address())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrors := make(chan error, 1)
	go func() {
		log.Infow("startup", "status", "gossip listener started", "host", cfg.P2P.Host)
		serverErrors <- g.ListenAndServe(ctx, cfg.P2P.Host)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("gossip listener error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)
		cancel()
	}

	return nil
}
