package main

import "fmt"

import "github.com/spf13/cobra"

import "github.com/coldharbor/rsm/pkg/config"
import "github.com/coldharbor/rsm/pkg/kvservice"
import "github.com/coldharbor/rsm/pkg/logfacade"
import "github.com/coldharbor/rsm/pkg/logger"
import "github.com/coldharbor/rsm/pkg/manager"
import "github.com/coldharbor/rsm/pkg/metrics"
import "github.com/coldharbor/rsm/pkg/snapshotstore"


const NAME = "rsmd"
var Log = clog.NewCustomLog(NAME)

var runCmd = &cobra.Command{
	Use: "run",
	Short: "starts a service manager backed by bbolt log/snapshot stores",
	RunE: runE,
}

func runE(cmd *cobra.Command, args []string) error {
	cfg := config.Default()

	if configPath != "" {
		loaded, loadErr := config.Load(configPath)
		if loadErr != nil { return loadErr }
		cfg = loaded
	}

	logFacade, logErr := logfacade.NewBoltLogFacade(cfg.DataDir, 0.25)
	if logErr != nil { return logErr }

	snapshots, snapErr := snapshotstore.NewBoltSnapshotStore(cfg.DataDir)
	if snapErr != nil { return snapErr }

	metricsInst := metrics.New()
	go func() {
		if serveErr := metricsInst.Serve(fmt.Sprintf(":%d", cfg.MetricsPort)); serveErr != nil {
			Log.Error("metrics server exited", serveErr.Error())
		}
	}()

	mgr := manager.New(cfg, logFacade, snapshots, metricsInst)
	mgr.RegisterServiceType("kv", kvservice.Constructor)

	if startErr := mgr.Start(); startErr != nil { return startErr }
	defer mgr.Stop()

	Log.Info(NAME, "running; serving metrics on port", cfg.MetricsPort)

	select {}
}
