package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"ghcn-dashboard/internal/modules/climate/types"
)

//go:embed sql/upsert-station.sql
var upsertStationSQL string

//go:embed sql/delete-station-records.sql
var deleteStationRecordsSQL string

//go:embed sql/insert-record.sql
var insertRecordSQL string

//go:embed sql/count-records.sql
var countRecordsSQL string

// ArchiveRepository stores a snapshot of derived tables in sqlite. The
// dashboard never serves from it; it exists for offline analysis.
type ArchiveRepository interface {
	SaveTable(ctx context.Context, table types.Table) error
	CountRecords(ctx context.Context, stationID string) (int, error)
	Ping(ctx context.Context) error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewArchiveRepository(db *sql.DB) ArchiveRepository {
	return &repositoryImpl{db: db}
}

// SaveTable replaces everything archived for the table's station.
func (r *repositoryImpl) SaveTable(ctx context.Context, table types.Table) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("archive rollback", "station_id", table.Station.ID, "error", rbErr)
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, upsertStationSQL, table.Station.ID, table.Station.Name); err != nil {
		return fmt.Errorf("upsert station %q: %w", table.Station.ID, err)
	}
	if _, err = tx.ExecContext(ctx, deleteStationRecordsSQL, table.Station.ID); err != nil {
		return fmt.Errorf("clear station %q: %w", table.Station.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertRecordSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			slog.Error("close insert statement", "error", closeErr)
		}
	}()

	for _, rec := range table.Records {
		_, err = stmt.ExecContext(ctx,
			table.Station.ID, rec.Year, rec.DayOfYear,
			nullable(rec.TMax), nullable(rec.TMin),
			nullable(rec.AvgMax), nullable(rec.AvgMin),
			nullable(rec.RecordMax), nullable(rec.RecordMin),
		)
		if err != nil {
			return fmt.Errorf("insert %s %d/%d: %w", table.Station.ID, rec.Year, rec.DayOfYear, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *repositoryImpl) CountRecords(ctx context.Context, stationID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countRecordsSQL, stationID).Scan(&n)
	return n, err
}

func (r *repositoryImpl) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
