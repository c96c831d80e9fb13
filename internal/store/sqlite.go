package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/vcniti/estimator/internal/estimate"
)

// ErrNotFound is returned when no estimate exists under the requested id.
var ErrNotFound = errors.New("estimate not found")

// StoredEstimate is one persisted wizard result.
type StoredEstimate struct {
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"createdAt"`
	Source    estimate.Source       `json:"source"`
	Form      estimate.FormData     `json:"formData"`
	Estimate  estimate.EstimateData `json:"estimate"`
}

// Summary is the listing row for the dashboard index.
type Summary struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"createdAt"`
	Source    estimate.Source `json:"source"`
	TotalLow  float64         `json:"totalLow"`
	TotalHigh float64         `json:"totalHigh"`
}

const schema = `
CREATE TABLE IF NOT EXISTS estimates (
	id            TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	source        TEXT NOT NULL DEFAULT 'ai',
	total_low     REAL NOT NULL DEFAULT 0,
	total_high    REAL NOT NULL DEFAULT 0,
	form_json     TEXT NOT NULL,
	estimate_json TEXT NOT NULL
);
`

// EstimateStore persists wizard results to SQLite. Loads follow the
// dashboard read contract: every material comes back selected with default
// brands re-attached, regardless of what was stored.
type EstimateStore struct {
	db     *sqlx.DB
	brands estimate.BrandTable
}

func Open(dbPath string, brands estimate.BrandTable) (*EstimateStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &EstimateStore{db: db, brands: brands}, nil
}

func (s *EstimateStore) Close() error {
	return s.db.Close()
}

// Save writes the record with write-through JSON payloads; totals are
// denormalized for listing without unmarshalling.
func (s *EstimateStore) Save(ctx context.Context, rec StoredEstimate) error {
	formJSON, err := json.Marshal(rec.Form)
	if err != nil {
		return fmt.Errorf("marshal form: %w", err)
	}
	estJSON, err := json.Marshal(rec.Estimate)
	if err != nil {
		return fmt.Errorf("marshal estimate: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO estimates (id, created_at, source, total_low, total_high, form_json, estimate_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		string(rec.Source),
		rec.Estimate.TotalLow,
		rec.Estimate.TotalHigh,
		string(formJSON),
		string(estJSON),
	)
	if err != nil {
		return fmt.Errorf("save estimate: %w", err)
	}
	return nil
}

type estimateRow struct {
	ID           string  `db:"id"`
	CreatedAt    string  `db:"created_at"`
	Source       string  `db:"source"`
	TotalLow     float64 `db:"total_low"`
	TotalHigh    float64 `db:"total_high"`
	FormJSON     string  `db:"form_json"`
	EstimateJSON string  `db:"estimate_json"`
}

// Load reads one estimate and rehydrates it for the dashboard: all
// materials selected, brand lists re-resolved, selected brand kept only when
// still available.
func (s *EstimateStore) Load(ctx context.Context, id string) (StoredEstimate, error) {
	var row estimateRow
	err := s.db.GetContext(ctx, &row, `SELECT id, created_at, source, total_low, total_high, form_json, estimate_json FROM estimates WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredEstimate{}, ErrNotFound
	}
	if err != nil {
		return StoredEstimate{}, fmt.Errorf("load estimate: %w", err)
	}

	rec := StoredEstimate{ID: row.ID, Source: estimate.Source(row.Source)}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, row.CreatedAt); err != nil {
		return StoredEstimate{}, fmt.Errorf("parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(row.FormJSON), &rec.Form); err != nil {
		return StoredEstimate{}, fmt.Errorf("unmarshal form: %w", err)
	}
	if err := json.Unmarshal([]byte(row.EstimateJSON), &rec.Estimate); err != nil {
		return StoredEstimate{}, fmt.Errorf("unmarshal estimate: %w", err)
	}

	for i := range rec.Estimate.Materials {
		m := &rec.Estimate.Materials[i]
		m.Selected = true
		m.AvailableBrands = s.brands.BrandsFor(m.Category)
		if !contains(m.AvailableBrands, m.SelectedBrand) {
			m.SelectedBrand = m.AvailableBrands[0]
		}
	}
	return rec, nil
}

// List returns the newest estimates first.
func (s *EstimateStore) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []estimateRow
	err := s.db.SelectContext(ctx, &rows, `SELECT id, created_at, source, total_low, total_high, form_json, estimate_json FROM estimates ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		createdAt, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, Summary{
			ID:        row.ID,
			CreatedAt: createdAt,
			Source:    estimate.Source(row.Source),
			TotalLow:  row.TotalLow,
			TotalHigh: row.TotalHigh,
		})
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
