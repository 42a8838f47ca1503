package screening

import (
	"context"
	"strings"

	"github.com/wonny/precinho/internal/contracts"
	"github.com/wonny/precinho/internal/s1_normalize"
)

// sectorMap merges the universe source's sector column with the strategy map.
// Strategy entries win; a failing source only loses its own entries.
func (s *Service) sectorMap(ctx context.Context) map[string]string {
	sectors := make(map[string]string, len(s.deps.Sectors))

	if sp, ok := s.deps.Universe.(contracts.SectorProvider); ok {
		scraped, err := sp.Sectors(ctx)
		if err != nil {
			s.logger.WithError(err).Warn("Universe sectors unavailable")
		}
		for t, sector := range scraped {
			sectors[s1_normalize.CanonicalTicker(t)] = sector
		}
	}

	for t, sector := range s.deps.Sectors {
		sectors[s1_normalize.CanonicalTicker(t)] = sector
	}
	return sectors
}

// assignSectors fills RawRecord.Sector where ingestion left it blank.
// Returns how many records were filled.
func assignSectors(raws []contracts.RawRecord, sectors map[string]string) int {
	if len(sectors) == 0 {
		return 0
	}

	filled := 0
	for i := range raws {
		if raws[i].Sector != nil && strings.TrimSpace(*raws[i].Sector) != "" {
			continue
		}
		sector, ok := sectors[s1_normalize.CanonicalTicker(raws[i].Ticker)]
		if !ok || strings.TrimSpace(sector) == "" {
			continue
		}
		raws[i].Sector = contracts.String(sector)
		filled++
	}
	return filled
}
