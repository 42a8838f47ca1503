package contracts

import "context"

// UniverseProvider supplies the ticker universe for a run
// ⭐ SSOT: 종목 리스트는 코어에 하드코딩하지 않음
type UniverseProvider interface {
	Name() string
	Tickers(ctx context.Context) ([]string, error)
}

// SectorProvider is implemented by universe providers whose source also
// classifies tickers by sector (ticker → sector name)
type SectorProvider interface {
	Sectors(ctx context.Context) (map[string]string, error)
}

// FundamentalsSource resolves raw fundamentals for a set of tickers.
// Every ticker comes back either filled or marked with FetchError.
type FundamentalsSource interface {
	Fetch(ctx context.Context, tickers []string) ([]RawRecord, error)
}

// RunArchiver persists finished run reports (write-only)
type RunArchiver interface {
	SaveRun(ctx context.Context, report *RunReport) error
}
