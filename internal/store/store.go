// Package store persists brands, weekly scorecards, timeseries points and
// evidence citations in a local sqlite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eidolonhq/eidolon/internal/model"
)

// ErrNotFound distinguishes lookup failures from storage errors.
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS brands (
  id          TEXT PRIMARY KEY,
  name        TEXT NOT NULL,
  entity_key  TEXT NOT NULL DEFAULT '',
  category    TEXT NOT NULL,
  region      TEXT NOT NULL,
  website     TEXT NOT NULL,
  description TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_brands_entity_key ON brands(entity_key);

CREATE TABLE IF NOT EXISTS scorecards (
  id                       INTEGER PRIMARY KEY,
  brand_id                 TEXT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
  snapshot_week            TEXT NOT NULL,
  heat_score               REAL NOT NULL,
  risk_score               REAL NOT NULL,
  asymmetry_index          REAL NOT NULL,
  capital_intensity        REAL NOT NULL,
  revenue_p10              REAL NOT NULL,
  revenue_p50              REAL NOT NULL,
  revenue_p90              REAL NOT NULL,
  delta_heat               REAL NOT NULL,
  confidence               REAL NOT NULL,
  confidence_reasons       TEXT NOT NULL DEFAULT '[]',
  suggested_deal_structure TEXT NOT NULL,
  capital_required_musd    REAL NOT NULL,
  UNIQUE(brand_id, snapshot_week)
);
CREATE INDEX IF NOT EXISTS idx_scorecards_week ON scorecards(snapshot_week);

CREATE TABLE IF NOT EXISTS timeseries_points (
  id          INTEGER PRIMARY KEY,
  brand_id    TEXT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
  metric      TEXT NOT NULL,
  observed_at TEXT NOT NULL,
  value       REAL NOT NULL,
  source      TEXT NOT NULL,
  reliability REAL NOT NULL,
  UNIQUE(brand_id, metric, observed_at)
);

CREATE TABLE IF NOT EXISTS evidence_citations (
  id          INTEGER PRIMARY KEY,
  brand_id    TEXT NOT NULL REFERENCES brands(id) ON DELETE CASCADE,
  title       TEXT NOT NULL,
  url         TEXT NOT NULL,
  snippet     TEXT NOT NULL,
  source      TEXT NOT NULL,
  reliability REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_evidence_brand ON evidence_citations(brand_id);
`

// Store wraps the sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// WipeAll deletes every persisted row. Used by the reseed operation and the
// legacy synthetic-data gate.
func (s *Store) WipeAll(ctx context.Context) error {
	for _, table := range []string{"evidence_citations", "timeseries_points", "scorecards", "brands"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}
	return nil
}

// SaveBrand inserts or fully updates a brand row.
func (s *Store) SaveBrand(ctx context.Context, b model.Brand) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO brands (id, name, entity_key, category, region, website, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			entity_key = excluded.entity_key,
			category = excluded.category,
			region = excluded.region,
			website = excluded.website,
			description = excluded.description`,
		b.ID, b.Name, b.EntityKey, b.Category, b.Region, b.Website, b.Description)
	if err != nil {
		return fmt.Errorf("save brand %s: %w", b.ID, err)
	}
	return nil
}

const brandColumns = "id, name, entity_key, category, region, website, description"

func scanBrand(row interface{ Scan(...any) error }) (model.Brand, error) {
	var b model.Brand
	err := row.Scan(&b.ID, &b.Name, &b.EntityKey, &b.Category, &b.Region, &b.Website, &b.Description)
	return b, err
}

// GetBrand looks a brand up by id.
func (s *Store) GetBrand(ctx context.Context, id string) (model.Brand, error) {
	b, err := scanBrand(s.db.QueryRowContext(ctx, "SELECT "+brandColumns+" FROM brands WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Brand{}, fmt.Errorf("brand %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Brand{}, fmt.Errorf("get brand %s: %w", id, err)
	}
	return b, nil
}

// GetBrandByEntityKey returns the brand whose dedup key matches, if any.
func (s *Store) GetBrandByEntityKey(ctx context.Context, key string) (model.Brand, error) {
	b, err := scanBrand(s.db.QueryRowContext(ctx, "SELECT "+brandColumns+" FROM brands WHERE entity_key = ? LIMIT 1", key))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Brand{}, fmt.Errorf("entity key %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return model.Brand{}, fmt.Errorf("get brand by entity key: %w", err)
	}
	return b, nil
}

// ListBrands returns all brands.
func (s *Store) ListBrands(ctx context.Context) ([]model.Brand, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+brandColumns+" FROM brands ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	var brands []model.Brand
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("scan brand: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// CountBrands returns the number of brand rows.
func (s *Store) CountBrands(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM brands").Scan(&n); err != nil {
		return 0, fmt.Errorf("count brands: %w", err)
	}
	return n, nil
}

// ListBrandIDs returns up to limit brand ids, for the legacy data detector.
func (s *Store) ListBrandIDs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM brands LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list brand ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpsertScorecard writes the (brand, snapshot week) row, overwriting in
// place when the week already exists.
func (s *Store) UpsertScorecard(ctx context.Context, sc model.Scorecard) error {
	reasons, err := json.Marshal(sc.ConfidenceReasons)
	if err != nil {
		return fmt.Errorf("marshal confidence reasons: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scorecards (
			brand_id, snapshot_week, heat_score, risk_score, asymmetry_index,
			capital_intensity, revenue_p10, revenue_p50, revenue_p90, delta_heat,
			confidence, confidence_reasons, suggested_deal_structure, capital_required_musd
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(brand_id, snapshot_week) DO UPDATE SET
			heat_score = excluded.heat_score,
			risk_score = excluded.risk_score,
			asymmetry_index = excluded.asymmetry_index,
			capital_intensity = excluded.capital_intensity,
			revenue_p10 = excluded.revenue_p10,
			revenue_p50 = excluded.revenue_p50,
			revenue_p90 = excluded.revenue_p90,
			delta_heat = excluded.delta_heat,
			confidence = excluded.confidence,
			confidence_reasons = excluded.confidence_reasons,
			suggested_deal_structure = excluded.suggested_deal_structure,
			capital_required_musd = excluded.capital_required_musd`,
		sc.BrandID, sc.SnapshotWeek.Format(dateLayout), sc.HeatScore, sc.RiskScore,
		sc.AsymmetryIndex, sc.CapitalIntensity, sc.RevenueP10, sc.RevenueP50,
		sc.RevenueP90, sc.DeltaHeat, sc.Confidence, string(reasons),
		sc.SuggestedDealStructure, sc.CapitalRequiredMUSD)
	if err != nil {
		return fmt.Errorf("upsert scorecard: %w", err)
	}
	return nil
}

const scorecardColumns = `brand_id, snapshot_week, heat_score, risk_score, asymmetry_index,
	capital_intensity, revenue_p10, revenue_p50, revenue_p90, delta_heat,
	confidence, confidence_reasons, suggested_deal_structure, capital_required_musd`

func scanScorecard(row interface{ Scan(...any) error }) (model.Scorecard, error) {
	var sc model.Scorecard
	var week, reasons string
	err := row.Scan(&sc.BrandID, &week, &sc.HeatScore, &sc.RiskScore, &sc.AsymmetryIndex,
		&sc.CapitalIntensity, &sc.RevenueP10, &sc.RevenueP50, &sc.RevenueP90, &sc.DeltaHeat,
		&sc.Confidence, &reasons, &sc.SuggestedDealStructure, &sc.CapitalRequiredMUSD)
	if err != nil {
		return model.Scorecard{}, err
	}
	if sc.SnapshotWeek, err = time.Parse(dateLayout, week); err != nil {
		return model.Scorecard{}, fmt.Errorf("parse snapshot week %q: %w", week, err)
	}
	if err := json.Unmarshal([]byte(reasons), &sc.ConfidenceReasons); err != nil {
		return model.Scorecard{}, fmt.Errorf("parse confidence reasons: %w", err)
	}
	return sc, nil
}

// GetScorecard returns the exact (brand, week) row.
func (s *Store) GetScorecard(ctx context.Context, brandID string, week time.Time) (model.Scorecard, error) {
	sc, err := scanScorecard(s.db.QueryRowContext(ctx,
		"SELECT "+scorecardColumns+" FROM scorecards WHERE brand_id = ? AND snapshot_week = ?",
		brandID, week.Format(dateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Scorecard{}, fmt.Errorf("scorecard %s@%s: %w", brandID, week.Format(dateLayout), ErrNotFound)
	}
	if err != nil {
		return model.Scorecard{}, fmt.Errorf("get scorecard: %w", err)
	}
	return sc, nil
}

// LatestScorecard returns the most recent scorecard for a brand.
func (s *Store) LatestScorecard(ctx context.Context, brandID string) (model.Scorecard, error) {
	sc, err := scanScorecard(s.db.QueryRowContext(ctx,
		"SELECT "+scorecardColumns+" FROM scorecards WHERE brand_id = ? ORDER BY snapshot_week DESC LIMIT 1",
		brandID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Scorecard{}, fmt.Errorf("scorecard for %s: %w", brandID, ErrNotFound)
	}
	if err != nil {
		return model.Scorecard{}, fmt.Errorf("latest scorecard: %w", err)
	}
	return sc, nil
}

// PriorScorecard returns the most recent scorecard strictly before the given
// week, for week-over-week deltas.
func (s *Store) PriorScorecard(ctx context.Context, brandID string, before time.Time) (model.Scorecard, error) {
	sc, err := scanScorecard(s.db.QueryRowContext(ctx,
		"SELECT "+scorecardColumns+" FROM scorecards WHERE brand_id = ? AND snapshot_week < ? ORDER BY snapshot_week DESC LIMIT 1",
		brandID, before.Format(dateLayout)))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Scorecard{}, fmt.Errorf("prior scorecard for %s: %w", brandID, ErrNotFound)
	}
	if err != nil {
		return model.Scorecard{}, fmt.Errorf("prior scorecard: %w", err)
	}
	return sc, nil
}

// LatestSnapshotWeek returns the newest snapshot week across all brands.
func (s *Store) LatestSnapshotWeek(ctx context.Context) (time.Time, error) {
	var week sql.NullString
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(snapshot_week) FROM scorecards").Scan(&week); err != nil {
		return time.Time{}, fmt.Errorf("latest snapshot week: %w", err)
	}
	if !week.Valid || week.String == "" {
		return time.Time{}, ErrNotFound
	}
	return time.Parse(dateLayout, week.String)
}

// FeedRow pairs a brand with its scorecard for one snapshot week.
type FeedRow struct {
	Brand     model.Brand
	Scorecard model.Scorecard
}

// FeedRows returns all (brand, scorecard) pairs for the given week.
func (s *Store) FeedRows(ctx context.Context, week time.Time) ([]FeedRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.name, b.entity_key, b.category, b.region, b.website, b.description,
		       s.brand_id, s.snapshot_week, s.heat_score, s.risk_score, s.asymmetry_index,
		       s.capital_intensity, s.revenue_p10, s.revenue_p50, s.revenue_p90, s.delta_heat,
		       s.confidence, s.confidence_reasons, s.suggested_deal_structure, s.capital_required_musd
		FROM brands b
		JOIN scorecards s ON s.brand_id = b.id
		WHERE s.snapshot_week = ?`,
		week.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("feed rows: %w", err)
	}
	defer rows.Close()

	var out []FeedRow
	for rows.Next() {
		var fr FeedRow
		var weekStr, reasons string
		err := rows.Scan(
			&fr.Brand.ID, &fr.Brand.Name, &fr.Brand.EntityKey, &fr.Brand.Category,
			&fr.Brand.Region, &fr.Brand.Website, &fr.Brand.Description,
			&fr.Scorecard.BrandID, &weekStr, &fr.Scorecard.HeatScore, &fr.Scorecard.RiskScore,
			&fr.Scorecard.AsymmetryIndex, &fr.Scorecard.CapitalIntensity, &fr.Scorecard.RevenueP10,
			&fr.Scorecard.RevenueP50, &fr.Scorecard.RevenueP90, &fr.Scorecard.DeltaHeat,
			&fr.Scorecard.Confidence, &reasons, &fr.Scorecard.SuggestedDealStructure,
			&fr.Scorecard.CapitalRequiredMUSD)
		if err != nil {
			return nil, fmt.Errorf("scan feed row: %w", err)
		}
		if fr.Scorecard.SnapshotWeek, err = time.Parse(dateLayout, weekStr); err != nil {
			return nil, fmt.Errorf("parse snapshot week: %w", err)
		}
		if err := json.Unmarshal([]byte(reasons), &fr.Scorecard.ConfidenceReasons); err != nil {
			return nil, fmt.Errorf("parse confidence reasons: %w", err)
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}

// UpsertTimeSeriesPoint writes one (brand, metric, date) observation,
// overwriting in place on repeat runs within the same day.
func (s *Store) UpsertTimeSeriesPoint(ctx context.Context, p model.TimeSeriesPoint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO timeseries_points (brand_id, metric, observed_at, value, source, reliability)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(brand_id, metric, observed_at) DO UPDATE SET
			value = excluded.value,
			source = excluded.source,
			reliability = excluded.reliability`,
		p.BrandID, p.Metric, p.ObservedAt.Format(dateLayout), p.Value, p.Source, p.Reliability)
	if err != nil {
		return fmt.Errorf("upsert timeseries point: %w", err)
	}
	return nil
}

// ListTimeSeries returns all stored observations for a brand, oldest first.
func (s *Store) ListTimeSeries(ctx context.Context, brandID string) ([]model.TimeSeriesPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT brand_id, metric, observed_at, value, source, reliability
		FROM timeseries_points WHERE brand_id = ? ORDER BY observed_at ASC, metric ASC`,
		brandID)
	if err != nil {
		return nil, fmt.Errorf("list timeseries: %w", err)
	}
	defer rows.Close()

	var points []model.TimeSeriesPoint
	for rows.Next() {
		var p model.TimeSeriesPoint
		var observed string
		if err := rows.Scan(&p.BrandID, &p.Metric, &observed, &p.Value, &p.Source, &p.Reliability); err != nil {
			return nil, fmt.Errorf("scan timeseries point: %w", err)
		}
		if p.ObservedAt, err = time.Parse(dateLayout, observed); err != nil {
			return nil, fmt.Errorf("parse observed_at %q: %w", observed, err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// AddEvidence inserts one citation row. Callers dedupe by URL beforehand via
// EvidenceURLs.
func (s *Store) AddEvidence(ctx context.Context, e model.EvidenceCitation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO evidence_citations (brand_id, title, url, snippet, source, reliability)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.BrandID, e.Title, e.URL, e.Snippet, e.Source, e.Reliability)
	if err != nil {
		return fmt.Errorf("add evidence: %w", err)
	}
	return nil
}

// EvidenceURLs returns the set of URLs already stored for a brand.
func (s *Store) EvidenceURLs(ctx context.Context, brandID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT url FROM evidence_citations WHERE brand_id = ?", brandID)
	if err != nil {
		return nil, fmt.Errorf("evidence urls: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		seen[u] = struct{}{}
	}
	return seen, rows.Err()
}

// ListEvidence returns up to limit citations for a brand, most reliable first.
func (s *Store) ListEvidence(ctx context.Context, brandID string, limit int) ([]model.EvidenceCitation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT brand_id, title, url, snippet, source, reliability
		FROM evidence_citations WHERE brand_id = ?
		ORDER BY reliability DESC, id ASC LIMIT ?`,
		brandID, limit)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	defer rows.Close()

	var items []model.EvidenceCitation
	for rows.Next() {
		var e model.EvidenceCitation
		if err := rows.Scan(&e.BrandID, &e.Title, &e.URL, &e.Snippet, &e.Source, &e.Reliability); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// ListEvidenceURLs returns up to limit URLs across all brands, for the legacy
// data detector.
func (s *Store) ListEvidenceURLs(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT url FROM evidence_citations LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list evidence urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// EvidenceCountsByBrand returns per-brand citation counts.
func (s *Store) EvidenceCountsByBrand(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT brand_id, COUNT(*) FROM evidence_citations GROUP BY brand_id")
	if err != nil {
		return nil, fmt.Errorf("evidence counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// BrandsWithEvidence returns how many distinct brands have any citation.
func (s *Store) BrandsWithEvidence(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT brand_id) FROM evidence_citations").Scan(&n); err != nil {
		return 0, fmt.Errorf("brands with evidence: %w", err)
	}
	return n, nil
}
