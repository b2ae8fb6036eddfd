// Command fakeapi serves an in-memory imitation of the dog adoption service
// for local runs of the client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/patric-chuzhbe/dogmatch/internal/config"
	"github.com/patric-chuzhbe/dogmatch/internal/fakeapi"
	"github.com/patric-chuzhbe/dogmatch/internal/logger"
)

const defaultCatalogSize = 500

func main() {
	flagSet := pflag.NewFlagSet("fakeapi", pflag.ExitOnError)
	config.RegisterFlags(flagSet)
	dogs := flagSet.Int("dogs", defaultCatalogSize, "number of generated dogs")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		panic(err)
	}

	cfg, err := config.New(config.WithFlagSet(flagSet))
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			panic(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := fakeapi.New(fakeapi.SeedCatalog(*dogs), []byte(cfg.FakeAPISigningKey))
	if err := server.Run(ctx, cfg.FakeAPIAddr); err != nil {
		logger.Log.Errorw("fake API stopped", "err", err)
	}
}
