package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariebrainware/clinic-reservation/booking"
	"github.com/ariebrainware/clinic-reservation/config"
	"github.com/ariebrainware/clinic-reservation/endpoint"
	"github.com/ariebrainware/clinic-reservation/queue"
	"github.com/ariebrainware/clinic-reservation/util"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) {
	log.Info().Str("app", cfg.AppName).Msg("Starting server")

	db, catalog, err := openStore()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare database")
	}
	util.SetAuditLoggerDB(db)

	if _, err := config.ConnectRedis(); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-process doctor locks and no rate limiting")
	}

	var opts []booking.Option
	var publisher *queue.Publisher
	if cfg.RabbitMQURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitMQURL)
		opts = append(opts, booking.WithPublisher(publisher))
	}
	svc, err := newService(db, catalog, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build booking service")
	}

	overfull, err := svc.WarmUp(context.Background(), time.Now().Format("2006-01-02"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load reservations")
	}
	if len(overfull) > 0 {
		log.Warn().Int("buckets", len(overfull)).Msg("stored reservations overfill some buckets")
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	router, err := endpoint.SetupRouter(db, svc, endpoint.RouterOptions{AppName: cfg.AppName})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	port := cfg.AppPort
	if port == 0 {
		port = 8080
	}
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if publisher != nil {
		_ = publisher.Close()
	}

	log.Info().Msg("Server exited properly")
}
