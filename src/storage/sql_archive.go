package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"perfmon-dashboard/src/analysis"
	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/models"
)

// ErrSnapshotNotFound is returned by LoadSnapshot for an unknown fingerprint.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// -----------------------------------------------------------------------------

// sqlArchive holds the schema and queries shared by the SQLite and Postgres
// archives. Queries are written with "?" placeholders and rebound per driver.
type sqlArchive struct {
	DB     *sql.DB
	Logger *logger.Logger

	table  func(name string) string
	rebind func(query string) string
}

// -----------------------------------------------------------------------------

func questionMarks(query string) string { return query }

// dollarPlaceholders rewrites "?" placeholders into Postgres "$n" form.
func dollarPlaceholders(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// -----------------------------------------------------------------------------

// attach adopts db and runs setup on it. If setup fails the connection is
// closed and DB is left nil, so a retried Initialize starts clean.
func (d *sqlArchive) attach(db *sql.DB, setup func() error) error {
	d.DB = db
	if err := setup(); err != nil {
		db.Close()
		d.DB = nil
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *sqlArchive) createTables(realType, boolType string) error {
	queries := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				fingerprint TEXT PRIMARY KEY,
				source TEXT,
				row_count INTEGER,
				counter_total INTEGER,
				rejected_cells INTEGER,
				first_timestamp TEXT,
				last_timestamp TEXT,
				loaded_at BIGINT
			);
		`, d.table("snapshots")),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				fingerprint TEXT,
				name TEXT,
				host TEXT,
				object TEXT,
				instance TEXT,
				counter TEXT,
				category TEXT,
				min %[2]s,
				max %[2]s,
				average %[2]s,
				count INTEGER,
				has_data %[3]s,
				PRIMARY KEY (fingerprint, name)
			);
		`, d.table("counter_summaries"), realType, boolType),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				fingerprint TEXT,
				category TEXT,
				min %[2]s,
				max %[2]s,
				average %[2]s,
				count INTEGER,
				counter_count INTEGER,
				sample_count INTEGER,
				has_data %[3]s,
				PRIMARY KEY (fingerprint, category)
			);
		`, d.table("category_summaries"), realType, boolType),
	}

	for _, q := range queries {
		if _, err := d.DB.Exec(q); err != nil {
			return fmt.Errorf("failed to create archive tables: %w", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func nullable(v float64, valid bool) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: valid}
}

// -----------------------------------------------------------------------------

func (d *sqlArchive) SaveSnapshot(record models.MSnapshotRecord) error {
	fp := record.Stats.Fingerprint
	if fp == "" {
		return fmt.Errorf("snapshot has no fingerprint")
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range []string{"category_summaries", "counter_summaries", "snapshots"} {
		if _, err := tx.Exec(d.rebind(fmt.Sprintf("DELETE FROM %s WHERE fingerprint = ?", d.table(t))), fp); err != nil {
			return fmt.Errorf("failed to clear %s: %w", t, err)
		}
	}

	s := record.Stats
	_, err = tx.Exec(d.rebind(fmt.Sprintf(`
		INSERT INTO %s (fingerprint, source, row_count, counter_total, rejected_cells, first_timestamp, last_timestamp, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.table("snapshots"))),
		fp, s.Source, s.Rows, s.Counters, s.RejectedCells, s.FirstTimestamp, s.LastTimestamp, s.LoadedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	counterStmt, err := tx.Prepare(d.rebind(fmt.Sprintf(`
		INSERT INTO %s (fingerprint, name, host, object, instance, counter, category, min, max, average, count, has_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.table("counter_summaries"))))
	if err != nil {
		return err
	}
	defer counterStmt.Close()

	for _, c := range record.Counters {
		_, err := counterStmt.Exec(fp, c.Name, c.Host, c.Object, c.Instance, c.Counter, string(c.Category),
			nullable(c.Min, c.HasData), nullable(c.Max, c.HasData), nullable(c.Average, c.HasData), c.Count, c.HasData)
		if err != nil {
			return fmt.Errorf("failed to insert counter %q: %w", c.Name, err)
		}
	}

	categoryStmt, err := tx.Prepare(d.rebind(fmt.Sprintf(`
		INSERT INTO %s (fingerprint, category, min, max, average, count, counter_count, sample_count, has_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.table("category_summaries"))))
	if err != nil {
		return err
	}
	defer categoryStmt.Close()

	for _, c := range record.Categories {
		_, err := categoryStmt.Exec(fp, string(c.Category),
			nullable(c.Min, c.HasData), nullable(c.Max, c.HasData), nullable(c.Average, c.HasData),
			c.Count, c.CounterCount, c.SampleCount, c.HasData)
		if err != nil {
			return fmt.Errorf("failed to insert category %s: %w", c.Category, err)
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *sqlArchive) LoadSnapshot(fingerprint string) (*models.MSnapshotRecord, error) {
	record := &models.MSnapshotRecord{}
	s := &record.Stats
	var loadedAt int64

	err := d.DB.QueryRow(d.rebind(fmt.Sprintf(`
		SELECT fingerprint, source, row_count, counter_total, rejected_cells, first_timestamp, last_timestamp, loaded_at
		FROM %s WHERE fingerprint = ?
	`, d.table("snapshots"))), fingerprint).
		Scan(&s.Fingerprint, &s.Source, &s.Rows, &s.Counters, &s.RejectedCells, &s.FirstTimestamp, &s.LastTimestamp, &loadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, fingerprint)
	}
	if err != nil {
		return nil, err
	}
	s.LoadedAt = time.Unix(0, loadedAt).UTC()

	rows, err := d.DB.Query(d.rebind(fmt.Sprintf(`
		SELECT name, host, object, instance, counter, category, min, max, average, count, has_data
		FROM %s WHERE fingerprint = ? ORDER BY name
	`, d.table("counter_summaries"))), fingerprint)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make(map[models.Category][]models.MCounterSummary)
	for rows.Next() {
		var c models.MCounterSummary
		var category string
		var min, max, avg sql.NullFloat64
		if err := rows.Scan(&c.Name, &c.Host, &c.Object, &c.Instance, &c.Counter, &category,
			&min, &max, &avg, &c.Count, &c.HasData); err != nil {
			return nil, err
		}
		c.Category = models.Category(category)
		c.Min, c.Max, c.Average = min.Float64, max.Float64, avg.Float64
		record.Counters = append(record.Counters, c)
		members[c.Category] = append(members[c.Category], c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	catRows, err := d.DB.Query(d.rebind(fmt.Sprintf(`
		SELECT category, min, max, average, count, counter_count, sample_count, has_data
		FROM %s WHERE fingerprint = ?
	`, d.table("category_summaries"))), fingerprint)
	if err != nil {
		return nil, err
	}
	defer catRows.Close()

	byCategory := make(map[models.Category]models.MCategorySummary)
	for catRows.Next() {
		var c models.MCategorySummary
		var category string
		var min, max, avg sql.NullFloat64
		if err := catRows.Scan(&category, &min, &max, &avg, &c.Count, &c.CounterCount, &c.SampleCount, &c.HasData); err != nil {
			return nil, err
		}
		c.Category = models.Category(category)
		c.Min, c.Max, c.Average = min.Float64, max.Float64, avg.Float64
		c.Counters = analysis.SortCategoryMembers(members[c.Category])
		byCategory[c.Category] = c
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	for _, category := range models.AllCategories {
		if c, ok := byCategory[category]; ok {
			record.Categories = append(record.Categories, c)
		}
	}
	return record, nil
}

// -----------------------------------------------------------------------------

func (d *sqlArchive) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
