package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"perfmon-dashboard/src/config"
	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/storage"
)

// -----------------------------------------------------------------------------

func main() {

	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	csvPath := flag.String("csv", "", "PerfMon CSV export to load (overrides data.csv_path)")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *csvPath != "" {
		conf.Data.CSVPath = *csvPath
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.MConfig, conf.Name)
	defer appLogger.Sync()

	// 4. Load and summarize the export; any failure here is fatal
	snapshot := loadSnapshot(conf.MConfig, appLogger)

	// 5. Archive (best effort)
	if err := storage.ArchiveSnapshot(conf.MConfig, appLogger.Named("Archive"), snapshot.Record()); err != nil {
		appLogger.Warning("Snapshot not archived: %v", err)
	}

	// 6. Start Servers
	servers, errs := startServers(conf.MConfig, snapshot, appLogger)

	// 7. Wait for a signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-quit:
		appLogger.Info("Received %s, shutting down...", sig)
	case err := <-errs:
		appLogger.Error("Server failed: %v", err)
		exitCode = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Stop(ctx); err != nil {
			appLogger.Warning("Shutdown incomplete: %v", err)
		}
	}
	appLogger.Info("Stopped.")

	if exitCode != 0 {
		appLogger.Sync()
		os.Exit(exitCode)
	}
}
