package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/portfolio"
	"github.com/Zachkp/portfolio/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portfolio web server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, slog.Default())
	},
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if os.Getenv(gin.EnvGinMode) == "" && !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	source, err := portfolio.NewSource(ctx, cfg.Source, s3Options(cfg))
	if err != nil {
		return err
	}
	logger.Info("portfolio source", "location", fmt.Sprint(source))

	var visits *web.VisitLog
	if cfg.VisitsDB != "" {
		visits, err = web.OpenVisitLog(ctx, cfg.VisitsDB, logger)
		if err != nil {
			return err
		}
		defer visits.Close()
		logger.Info("visit tracking enabled with hashed IP addresses")
	}

	if cfg.Watch {
		file, ok := source.(portfolio.FileSource)
		if !ok {
			return errors.New("PORTFOLIO_WATCH needs a file source")
		}
		go watchDocument(ctx, file.Path, logger)
	}

	server, err := web.NewServer(cfg.Addr(), web.Options{
		Title:        cfg.Title,
		Source:       source,
		FetchTimeout: cfg.FetchTimeout,
		Visits:       visits,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	return server.ListenAndServe(ctx)
}

func watchDocument(ctx context.Context, path string, logger *slog.Logger) {
	err := portfolio.Watch(ctx, path, logger, func(doc *portfolio.Document, err error) {
		if err != nil {
			logger.Warn("portfolio document invalid", "path", path, "error", err)
			return
		}
		logger.Info("portfolio document valid", "path", path,
			"skills", len(doc.Skills), "projects", len(doc.Projects))
	})
	if err != nil {
		logger.Error("portfolio watcher stopped", "error", err)
	}
}

func s3Options(cfg config.Config) portfolio.S3Options {
	return portfolio.S3Options{
		Endpoint:  cfg.S3.Endpoint,
		Region:    cfg.S3.Region,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
	}
}
