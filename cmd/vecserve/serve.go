package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/viant/vecserve/artifact"
	"github.com/viant/vecserve/config"
	"github.com/viant/vecserve/httpapi"
	"github.com/viant/vecserve/logging"
	"github.com/viant/vecserve/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the artifact and serve queries over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	logger := logging.Configure(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	var client artifact.ObjectGetter
	if artifact.IsRemote(cfg.Artifact.Path) {
		client = artifact.NewS3Client(cfg.Artifact.S3)
	}
	resolver := artifact.NewResolver(client, cfg.Artifact.CacheDir, artifact.WithLogger(logger))
	svc := service.New(service.NewLoader(cfg, resolver, logger), logger)

	if err := svc.Start(ctx); err != nil {
		if !cfg.ServeOnFailure {
			return fmt.Errorf("startup failed: %w", err)
		}
		logger.Warn("serving probes after failed startup", "error", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(svc, httpapi.Options{MaxBodyBytes: cfg.HTTP.MaxBodyBytes, Logger: logger})
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	return httpapi.Serve(ctx, ln, router, httpapi.ServerOptions{
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, logger.With("component", "http"))
}
