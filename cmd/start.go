package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/technodrive/vehictrl/internal/config"
	"github.com/technodrive/vehictrl/internal/core"
	"github.com/technodrive/vehictrl/pkg/auth"
	"github.com/technodrive/vehictrl/pkg/control"
	"github.com/technodrive/vehictrl/pkg/device"
	"github.com/technodrive/vehictrl/pkg/netmon"
	"github.com/technodrive/vehictrl/pkg/security/gate"
	"github.com/technodrive/vehictrl/pkg/util"
	"github.com/technodrive/vehictrl/pkg/vault"
)

// startCmd runs the client core
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the VehiCtrl client core.",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		log.Fatal(startClient())
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func startClient() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger, err := util.DefaultLogger(cfg.Debug, cfg.LogDir)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := util.OpenBadgerDB(filepath.Join(cfg.DataDir, "client"))
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := vault.NewDefaultStore(db)
	if err != nil {
		return err
	}

	v, err := vault.New(store)
	if err != nil {
		return err
	}
	v.SetLogger(logger)

	devices, err := device.NewManager(v, nil)
	if err != nil {
		return err
	}
	devices.SetLogger(logger)

	session, err := auth.NewSession(devices, cfg.ServerURL, cfg.RequestTimeout)
	if err != nil {
		return err
	}
	session.SetLogger(logger)

	g, err := gate.New(v, nil)
	if err != nil {
		return err
	}
	g.SetLogger(logger)

	monitor, err := netmon.NewMonitor(cfg.ServerURL, cfg.CheckInterval, cfg.RequestTimeout)
	if err != nil {
		return err
	}
	monitor.SetLogger(logger)

	port, err := control.NewPort(map[control.Capability]string{
		control.CapIgnition: cfg.ControlURL,
		control.CapStarter:  cfg.ControlURL,
		control.CapAC:       cfg.ACURL,
	}, cfg.RequestTimeout, logger)
	if err != nil {
		return err
	}

	c, err := core.New(v, devices, session, g, monitor, port)
	if err != nil {
		return err
	}
	c.SetLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// a process start is always a fresh launch; in-app navigation
	// never re-enters this path
	if err = c.Init(ctx, true); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	c.Shutdown()

	return nil
}
