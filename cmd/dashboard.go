package cmd

import (
	"context"

	"walrus/config"
	"walrus/dashboard"
	"walrus/ipc"

	log "github.com/sirupsen/logrus"
)

// Dashboard runs the web dashboard process until ctx is cancelled
func Dashboard(ctx context.Context) error {
	cfg := config.Get()
	log.SetLevel(cfg.LogLevel)

	nc, err := ipc.Connect(cfg.NATSServers, "walrus-dashboard")
	if err != nil {
		return err
	}
	defer nc.Close()

	server := dashboard.NewServer(ipc.NewClient(nc, cfg.IPCSubjectPrefix))
	stop := server.Start(cfg.DashboardAddr)
	defer stop()

	<-ctx.Done()
	log.Info("Shutting down dashboard...")
	return nil
}
