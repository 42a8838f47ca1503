package universe

import "context"

// StaticProvider serves a fixed ticker list (strategy file or built-in)
type StaticProvider struct {
	tickers []string
}

// NewStaticProvider canonicalizes and de-duplicates the list
func NewStaticProvider(tickers []string) *StaticProvider {
	return &StaticProvider{tickers: clean(tickers)}
}

func (p *StaticProvider) Name() string { return SourceStatic }

// Tickers returns a copy of the list
func (p *StaticProvider) Tickers(ctx context.Context) ([]string, error) {
	out := make([]string, len(p.tickers))
	copy(out, p.tickers)
	return out, nil
}
