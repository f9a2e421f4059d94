package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"nmsportal/backend/services/uploader/internal/clients"
	"nmsportal/backend/services/uploader/internal/config"
	"nmsportal/backend/services/uploader/internal/service"
)

// App wires uploader dependencies.
type App struct {
	service *service.UploadService
	logger  *zap.Logger
}

// New constructs application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	httpClient := clients.NewDefaultHTTPClient(cfg.HTTPTimeout())
	writer := clients.NewLineClient(cfg.Endpoint.URL, cfg.Endpoint.User, cfg.Endpoint.Token, httpClient)

	return &App{
		service: service.NewUploadService(cfg, writer, logger),
		logger:  logger,
	}, nil
}

// Run uploads every session once. It fails when any file could not be uploaded.
func (a *App) Run(ctx context.Context) error {
	results, err := a.service.Run(ctx)
	if err != nil {
		return err
	}

	var failed, lines int
	for _, r := range results {
		lines += r.Lines
		if r.Failed() {
			failed++
		}
	}
	a.logger.Info("upload finished",
		zap.Int("files", len(results)),
		zap.Int("failed", failed),
		zap.Int("lines", lines),
	)
	if failed > 0 {
		return fmt.Errorf("uploader: %d of %d files failed", failed, len(results))
	}
	return nil
}

// Close releases resources (none yet).
func (a *App) Close() {}
