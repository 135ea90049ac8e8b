package main

import (
	"perfmon-dashboard/src/analysis"
	"perfmon-dashboard/src/grpc_control"
	"perfmon-dashboard/src/interfaces"
	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/models"
	"perfmon-dashboard/src/server"
)

// -----------------------------------------------------------------------------

// startServers launches the dashboard and, when grpc_port is set, the gRPC
// query service. The first listener error is delivered on the returned
// channel.
func startServers(cfg *models.MConfig, snapshot *analysis.Snapshot, appLogger *logger.Logger) ([]interfaces.IDataExchanger, <-chan error) {
	var servers []interfaces.IDataExchanger

	// 1. Dashboard (HTML + JSON + WebSocket)
	dashboard, err := server.NewDashboardServer(cfg, snapshot, appLogger.Named("Dashboard"))
	if err != nil {
		appLogger.Critical("Failed to set up dashboard: %v", err)
	}
	servers = append(servers, dashboard)

	// 2. gRPC query service
	if cfg.GrpcPort > 0 {
		servers = append(servers, grpc_control.NewGrpcServer(cfg, snapshot, appLogger.Named("QueryService")))
	}

	errs := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv interfaces.IDataExchanger) {
			if err := srv.Start(); err != nil {
				errs <- err
			}
		}(srv)
	}
	return servers, errs
}
