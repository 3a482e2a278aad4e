package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/technodrive/vehictrl/internal/binding"
	"github.com/technodrive/vehictrl/internal/config"
	"github.com/technodrive/vehictrl/internal/server"
	"github.com/technodrive/vehictrl/pkg/util"
)

// serveCmd runs the companion registration server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the registration/authorization server.",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		log.Fatal(serveRegistration())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serveRegistration() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger, err := util.DefaultLogger(cfg.Debug, cfg.LogDir)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := util.OpenBadgerDB(filepath.Join(cfg.DataDir, "server"))
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := binding.NewDefaultStore(db)
	if err != nil {
		return err
	}

	cache, err := binding.NewDefaultCache(10 * time.Minute)
	if err != nil {
		return err
	}

	bindings, err := binding.NewManager(store, cache, cfg.AuthorizedVIN)
	if err != nil {
		return err
	}
	bindings.SetLogger(logger)

	s, err := server.New(bindings, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		cancel()
	}()

	return server.Run(ctx, s, cfg.ListenAddr)
}
