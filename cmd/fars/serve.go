package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/willojs/FARS/internal/adapter/census"
	httpadapter "github.com/willojs/FARS/internal/adapter/http"
	kafkaadapter "github.com/willojs/FARS/internal/adapter/kafka"
	plotadapter "github.com/willojs/FARS/internal/adapter/plot"
	"github.com/willojs/FARS/internal/observability"
	"github.com/willojs/FARS/internal/pipeline"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve summaries and maps over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.String("http-addr", ":8080", "listen address")
	f.Int("cache-size", 16, "parsed year files kept in memory; 0 disables the cache")
	f.Bool("kafka", false, "enable POST /publish")
	f.String("kafka-brokers", "localhost:9092", "comma-separated Kafka brokers")
	f.String("kafka-topic", "fars-accidents", "topic to publish to")
	f.String("width", "6in", "map width (in, cm, mm or pt)")
	f.String("height", "6in", "map height (in, cm, mm or pt)")
	return cmd
}

func (a *app) serve(parent context.Context) error {
	cfg := a.cfg
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var reader pipeline.TableReader = census.FileReader{}
	if cfg.CacheSize > 0 {
		reader = census.NewCachedReader(census.FileReader{}, cfg.CacheSize, metrics)
		logger.Info("table cache enabled", "entries", cfg.CacheSize)
	}
	svc := pipeline.New(cfg.DataDir, reader, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, rendererFactory(cfg.PlotWidth, cfg.PlotHeight), logger)

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		srv.EnablePublish(svc, writer)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errc:
		logger.Error("http server error", "error", serveErr)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return serveErr
}

// rendererFactory renders maps into HTTP responses at the configured size.
func rendererFactory(width, height vg.Length) httpadapter.RendererFactory {
	return func(w io.Writer, format string) (pipeline.Renderer, string, error) {
		r, err := plotadapter.NewWriterRenderer(w, format, width, height)
		if err != nil {
			return nil, "", err
		}
		ct, _ := plotadapter.ContentType(format)
		return r, ct, nil
	}
}
