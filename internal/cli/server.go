package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"exam-prep-service/internal/config"
	"exam-prep-service/internal/scheduler"
	transport "exam-prep-service/internal/transport/http"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the contest API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := config.Logger()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	svc, release, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	runCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	if cfg.Contest.Scheduler {
		loc, _ := cfg.Location()
		sched := scheduler.New(svc.contests, config.TTLDuration(cfg.Contest.Tick, time.Minute), loc)
		go sched.Run(runCtx)
	}

	handler := transport.NewRouter(transport.RouterConfig{
		ContestHandler:      transport.NewContestHandler(svc.contests),
		ResultHandler:       transport.NewResultHandler(svc.results),
		NotificationHandler: transport.NewNotificationHandler(svc.notifications),
		WSHandler:           transport.NewWSHandler(svc.contests),
	})

	// No WriteTimeout: it would cut long-lived leaderboard websockets.
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting exam prep service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
