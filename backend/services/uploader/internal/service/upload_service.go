package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nmsportal/backend/libs/aimcsv"
	"nmsportal/backend/libs/derive"
	"nmsportal/backend/libs/lineproto"
	"nmsportal/backend/services/uploader/internal/config"
	"nmsportal/backend/services/uploader/internal/models"
)

// ErrNoFiles is returned when the data folder holds no matching session files.
var ErrNoFiles = errors.New("uploader: no session files found")

// LineWriter delivers a line-protocol batch.
type LineWriter interface {
	Write(ctx context.Context, batch []byte) error
}

// UploadService pushes every session file in the data folder to the time-series database.
type UploadService struct {
	dataDir string
	pattern string
	workers int
	point   config.PointConfig
	writer  LineWriter
	logger  *zap.Logger
	now     func() time.Time
}

// NewUploadService returns service instance.
func NewUploadService(cfg *config.Config, writer LineWriter, logger *zap.Logger) *UploadService {
	return &UploadService{
		dataDir: cfg.Data.Dir,
		pattern: cfg.Data.Pattern,
		workers: cfg.WorkerCount(),
		point:   cfg.Point,
		writer:  writer,
		logger:  logger,
		now:     time.Now,
	}
}

// Run uploads all files in parallel. A failing file is reported in its result and
// does not stop the others.
func (s *UploadService) Run(ctx context.Context) ([]models.UploadResult, error) {
	files, err := filepath.Glob(filepath.Join(s.dataDir, s.pattern))
	if err != nil {
		return nil, fmt.Errorf("uploader: glob: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, s.dataDir)
	}
	sort.Strings(files)

	results := make([]models.UploadResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			results[i] = s.uploadFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *UploadService) uploadFile(ctx context.Context, path string) models.UploadResult {
	result := models.UploadResult{File: filepath.Base(path)}
	logger := s.logger.With(zap.String("file", result.File))

	if err := ctx.Err(); err != nil {
		result.Error = err.Error()
		return result
	}

	table, err := aimcsv.ReadFile(path)
	if err != nil {
		logger.Warn("failed to load session", zap.Error(err))
		result.Error = err.Error()
		return result
	}

	lines, skipped, err := BuildLines(table, s.point, s.now().Unix())
	result.Lines, result.Skipped = len(lines), skipped
	if err != nil {
		logger.Warn("failed to encode session", zap.Error(err))
		result.Error = err.Error()
		return result
	}
	if len(lines) == 0 {
		logger.Info("no complete samples, nothing to upload", zap.Int("skipped", skipped))
		return result
	}

	if err := s.writer.Write(ctx, lineproto.Batch(lines)); err != nil {
		logger.Warn("upload failed", zap.Error(err))
		result.Error = err.Error()
		return result
	}
	logger.Info("uploaded session", zap.Int("lines", len(lines)), zap.Int("skipped", skipped))
	return result
}

// BuildLines encodes one line per sample. A sample is skipped when Time or any mapped
// field is missing or infinite. Timestamps are the sample's Time offset from baseUnix.
func BuildLines(table *derive.Table, point config.PointConfig, baseUnix int64) ([]string, int, error) {
	times, ok := table.Column(derive.ChannelTime)
	if !ok {
		return nil, 0, fmt.Errorf("uploader: channel %q not found", derive.ChannelTime)
	}
	columns := make([][]float64, len(point.Fields))
	for i, f := range point.Fields {
		col, ok := table.Column(f.Column)
		if !ok {
			return nil, 0, fmt.Errorf("uploader: channel %q not found", f.Column)
		}
		columns[i] = col
	}

	tags := make([]lineproto.Tag, 0, len(point.Tags))
	for k, v := range point.Tags {
		tags = append(tags, lineproto.Tag{Key: k, Value: v})
	}

	var (
		lines   []string
		skipped int
	)
	fields := make([]lineproto.Field, len(point.Fields))
rows:
	for row := 0; row < table.Len(); row++ {
		if !usable(times[row]) {
			skipped++
			continue
		}
		for i, f := range point.Fields {
			v := columns[i][row]
			if !usable(v) {
				skipped++
				continue rows
			}
			fields[i] = lineproto.Field{Key: f.Name, Value: v}
		}
		line, err := lineproto.Encode(lineproto.Point{
			Measurement: point.Measurement,
			Tags:        tags,
			Fields:      fields,
			TimestampNs: lineproto.TimestampNs(baseUnix, times[row]),
		})
		if err != nil {
			return nil, skipped, err
		}
		lines = append(lines, line)
	}
	return lines, skipped, nil
}

func usable(v float64) bool {
	return !derive.IsMissing(v) && !math.IsInf(v, 0)
}
