package metadata

import (
	"context"
	"log"
	"strings"
)

// SummaryLimit is the maximum summary length in characters.
const SummaryLimit = 600

// Catalog is the raw catalog API the proxy forwards to.
type Catalog interface {
	Search(ctx context.Context, q string, field SearchField) ([]Candidate, error)
	WorkDescription(ctx context.Context, workKey string) (string, error)
}

// Proxy forwards lookups to a Catalog under the degrade-to-empty policy:
// every failure (transport error, timeout, bad status, malformed body) turns
// into an empty result and is only logged. There is no retry, backoff or
// circuit breaking.
type Proxy struct {
	catalog Catalog
	logf    func(format string, args ...any)
}

// NewProxy wraps catalog with the degrade-to-empty policy.
func NewProxy(catalog Catalog) *Proxy {
	return &Proxy{
		catalog: catalog,
		logf:    log.Printf,
	}
}

// Search returns normalized candidates, or an empty (non-nil) slice on any failure.
func (p *Proxy) Search(ctx context.Context, q string, field SearchField) []Candidate {
	if strings.TrimSpace(q) == "" {
		return []Candidate{}
	}

	candidates, err := p.catalog.Search(ctx, q, field)
	if err != nil {
		p.degrade("search", err)
		return []Candidate{}
	}
	if candidates == nil {
		return []Candidate{}
	}
	return candidates
}

// Summary returns the work description truncated to SummaryLimit characters,
// or "" on any failure.
func (p *Proxy) Summary(ctx context.Context, workKey string) string {
	if strings.TrimSpace(workKey) == "" {
		return ""
	}

	text, err := p.catalog.WorkDescription(ctx, workKey)
	if err != nil {
		p.degrade("summary", err)
		return ""
	}
	return Truncate(strings.TrimSpace(text), SummaryLimit)
}

func (p *Proxy) degrade(op string, err error) {
	p.logf("Metadata proxy: %s degraded to empty result: %v", op, err)
}

// Truncate cuts s to at most limit characters.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
