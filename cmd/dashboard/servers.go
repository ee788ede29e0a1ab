package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"market-dashboard/src/actions"
	"market-dashboard/src/grpc_control"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/notify"
	"market-dashboard/src/server"
	"market-dashboard/src/store"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// startServers brings up the view gateway and the gRPC health service.
func startServers(
	config *models.MConfig,
	st *store.Store,
	session interfaces.ISession,
	acts *actions.Actions,
	notifier *notify.Notifier,
	markets *utils.MarketScheduler,
	registry *prometheus.Registry,
	appLogger *logger.Logger,
) (*server.GatewayServer, *grpc_control.HealthService) {

	// 1. Gateway (REST + view WebSocket)
	gateway := server.NewGatewayServer(config, server.Dependencies{
		Store:    st,
		Session:  session,
		Actions:  acts,
		Notifier: notifier,
		Markets:  markets,
		Gatherer: registry,
	}, appLogger.Named("Gateway"))

	if err := gateway.Start(); err != nil {
		appLogger.Critical("Failed to start gateway: %v", err)
	}

	// 2. gRPC health service
	health := grpc_control.NewHealthService(session, appLogger.Named("Health"))
	if config.GrpcPort == 0 {
		appLogger.Info("gRPC health service disabled")
		return gateway, health
	}
	if err := health.Start(config.GrpcHost, config.GrpcPort); err != nil {
		appLogger.Critical("Failed to start gRPC health service: %v", err)
	}
	return gateway, health
}
