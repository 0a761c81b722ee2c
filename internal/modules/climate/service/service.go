package service

import (
	"context"
	"log/slog"

	"ghcn-dashboard/internal/ghcn"
	"ghcn-dashboard/internal/modules/climate/derive"
	"ghcn-dashboard/internal/modules/climate/repository"
	"ghcn-dashboard/internal/modules/climate/types"
)

// Fetcher retrieves the raw observations of one station. *ghcn.Client implements it.
type Fetcher interface {
	FetchStation(ctx context.Context, stationID string, elements ...string) ([]ghcn.Observation, error)
}

type Service struct {
	fetcher Fetcher
	archive repository.ArchiveRepository
}

// NewService returns a preparer backed by fetcher. archive may be nil.
func NewService(fetcher Fetcher, archive repository.ArchiveRepository) *Service {
	return &Service{fetcher: fetcher, archive: archive}
}

// Prepare downloads and derives the table for one station. Any failure yields
// an empty table; the caller treats that as "station unavailable".
func (s *Service) Prepare(ctx context.Context, station types.Station) types.Table {
	obs, err := s.fetcher.FetchStation(ctx, station.ID, ghcn.ElementTMAX, ghcn.ElementTMIN)
	if err != nil {
		slog.Warn("station unavailable", "station_id", station.ID, "station", station.Name, "error", err)
		return types.Table{Station: station}
	}

	table := derive.Table(station, obs)
	if table.Empty() {
		slog.Warn("station has no temperature data", "station_id", station.ID, "station", station.Name)
	}
	return table
}

// LoadAll prepares every station in order and builds the catalog of usable
// stations. Archive failures are logged and never drop a station.
func (s *Service) LoadAll(ctx context.Context, stations []types.Station) *repository.Catalog {
	tables := make([]types.Table, 0, len(stations))
	for _, st := range stations {
		if ctx.Err() != nil {
			slog.Warn("station loading interrupted", "error", ctx.Err())
			break
		}

		table := s.Prepare(ctx, st)
		if table.Empty() {
			continue
		}
		slog.Info("station loaded",
			"station_id", st.ID,
			"station", st.Name,
			"rows", len(table.Records),
			"years", len(table.Years()),
		)
		s.archiveTable(ctx, table)
		tables = append(tables, table)
	}

	catalog := repository.NewCatalog(tables)
	if catalog.Len() == 0 {
		slog.Error("no station data available", "stations", len(stations))
	}
	return catalog
}

func (s *Service) archiveTable(ctx context.Context, table types.Table) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveTable(ctx, table); err != nil {
		slog.Error("archive table failed", "station_id", table.Station.ID, "error", err)
		return
	}

	n, err := s.archive.CountRecords(ctx, table.Station.ID)
	if err != nil {
		slog.Error("archive count failed", "station_id", table.Station.ID, "error", err)
		return
	}
	if n != len(table.Records) {
		slog.Error("archive row count mismatch", "station_id", table.Station.ID, "archived", n, "rows", len(table.Records))
		return
	}
	slog.Info("station archived", "station_id", table.Station.ID, "rows", n)
}
