package repository

import (
	"context"
	"database/sql"

	libdb "nmsportal/backend/libs/db"
	"nmsportal/backend/libs/derive"
	"nmsportal/backend/services/portal-service/internal/models"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS session_summaries (
		id BIGSERIAL PRIMARY KEY,
		file TEXT NOT NULL,
		units TEXT NOT NULL,
		file_modified TIMESTAMPTZ NOT NULL,
		samples INTEGER NOT NULL,
		duration_s DOUBLE PRECISION NOT NULL,
		max_speed DOUBLE PRECISION NOT NULL,
		speed_unit TEXT NOT NULL,
		max_power_kw DOUBLE PRECISION NOT NULL,
		total_wh DOUBLE PRECISION NOT NULL,
		spent_wh DOUBLE PRECISION NOT NULL,
		recovered_wh DOUBLE PRECISION NOT NULL,
		net_wh DOUBLE PRECISION NOT NULL,
		regen_efficiency_pct DOUBLE PRECISION NOT NULL,
		mean_voltage DOUBLE PRECISION,
		power_available BOOLEAN NOT NULL,
		derived_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (file, units, file_modified)
	)`,
	`CREATE INDEX IF NOT EXISTS session_summaries_file_idx ON session_summaries (file, derived_at DESC)`,
}

// SummaryRepository persists derived session summaries.
type SummaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository returns repository.
func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// EnsureSchema creates the summaries table if needed.
func (r *SummaryRepository) EnsureSchema(ctx context.Context) error {
	return libdb.EnsureSchema(ctx, r.db, schema...)
}

// Upsert stores a summary, replacing an earlier derivation of the same file version and units.
func (r *SummaryRepository) Upsert(ctx context.Context, s *models.SessionSummary) error {
	const query = `
		INSERT INTO session_summaries (
			file, units, file_modified, samples, duration_s,
			max_speed, speed_unit, max_power_kw,
			total_wh, spent_wh, recovered_wh, net_wh, regen_efficiency_pct,
			mean_voltage, power_available, derived_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (file, units, file_modified) DO UPDATE SET
			samples = EXCLUDED.samples,
			duration_s = EXCLUDED.duration_s,
			max_speed = EXCLUDED.max_speed,
			speed_unit = EXCLUDED.speed_unit,
			max_power_kw = EXCLUDED.max_power_kw,
			total_wh = EXCLUDED.total_wh,
			spent_wh = EXCLUDED.spent_wh,
			recovered_wh = EXCLUDED.recovered_wh,
			net_wh = EXCLUDED.net_wh,
			regen_efficiency_pct = EXCLUDED.regen_efficiency_pct,
			mean_voltage = EXCLUDED.mean_voltage,
			power_available = EXCLUDED.power_available,
			derived_at = EXCLUDED.derived_at
		RETURNING id
	`
	meanVoltage := sql.NullFloat64{
		Float64: s.Summary.MeanVoltage.Value,
		Valid:   s.Summary.MeanVoltage.Available,
	}
	return r.db.QueryRowContext(ctx, query,
		s.File,
		s.Units,
		s.FileModified,
		s.Samples,
		s.DurationS,
		s.Summary.MaxSpeed,
		s.Summary.SpeedUnit,
		s.Summary.MaxPowerKW,
		s.Summary.Energy.TotalWh,
		s.Summary.Energy.SpentWh,
		s.Summary.Energy.RecoveredWh,
		s.Summary.Energy.NetWh,
		s.Summary.Energy.RegenEfficiencyPct,
		meanVoltage,
		s.Summary.PowerAvailable,
		s.DerivedAt,
	).Scan(&s.ID)
}

// History returns the last N summaries stored for a file, newest first.
func (r *SummaryRepository) History(ctx context.Context, file string, limit int) ([]models.SessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT id, file, units, file_modified, samples, duration_s,
		       max_speed, speed_unit, max_power_kw,
		       total_wh, spent_wh, recovered_wh, net_wh, regen_efficiency_pct,
		       mean_voltage, power_available, derived_at
		FROM session_summaries
		WHERE file = $1
		ORDER BY derived_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, file, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SessionSummary
	for rows.Next() {
		var (
			s           models.SessionSummary
			meanVoltage sql.NullFloat64
		)
		if err := rows.Scan(
			&s.ID,
			&s.File,
			&s.Units,
			&s.FileModified,
			&s.Samples,
			&s.DurationS,
			&s.Summary.MaxSpeed,
			&s.Summary.SpeedUnit,
			&s.Summary.MaxPowerKW,
			&s.Summary.Energy.TotalWh,
			&s.Summary.Energy.SpentWh,
			&s.Summary.Energy.RecoveredWh,
			&s.Summary.Energy.NetWh,
			&s.Summary.Energy.RegenEfficiencyPct,
			&meanVoltage,
			&s.Summary.PowerAvailable,
			&s.DerivedAt,
		); err != nil {
			return nil, err
		}
		s.Summary.MeanVoltage = derive.Unavailable()
		if meanVoltage.Valid {
			s.Summary.MeanVoltage = derive.Available(meanVoltage.Float64)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
