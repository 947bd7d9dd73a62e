// Package harvest runs archive searches: it partitions the date range,
// fetches one result page per interval, parses the rows and optionally reads
// the trailer metadata of every listed document.
package harvest

import (
	"context"
	"errors"
	"fmt"

	"ads-harvest/pkg/dates"
	"ads-harvest/pkg/domain"
	"ads-harvest/pkg/query"
	"ads-harvest/pkg/results"

	"github.com/rs/zerolog"
)

// Fetcher retrieves the body of a result page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// IntervalResult is the outcome of one interval query. A failed interval has
// a non-nil Err and no records; it does not affect the other intervals.
type IntervalResult struct {
	Index    int
	Interval dates.Interval
	URL      string
	Records  []domain.DocumentRecord
	Err      error
}

// SearchResult holds the per-interval outcomes in chronological order.
type SearchResult struct {
	Intervals []IntervalResult
}

// Records concatenates the records of all intervals in interval order.
func (r *SearchResult) Records() []domain.DocumentRecord {
	var n int
	for _, ir := range r.Intervals {
		n += len(ir.Records)
	}
	out := make([]domain.DocumentRecord, 0, n)
	for _, ir := range r.Intervals {
		out = append(out, ir.Records...)
	}
	return out
}

// Err joins the errors of all failed intervals, or returns nil.
func (r *SearchResult) Err() error {
	var errs []error
	for _, ir := range r.Intervals {
		if ir.Err != nil {
			errs = append(errs, fmt.Errorf("interval %s: %w", ir.Interval, ir.Err))
		}
	}
	return errors.Join(errs...)
}

// Failed returns the number of intervals that produced an error.
func (r *SearchResult) Failed() int {
	var n int
	for _, ir := range r.Intervals {
		if ir.Err != nil {
			n++
		}
	}
	return n
}

// Harvester turns a date range and criteria into document records.
type Harvester struct {
	Builder *query.Builder
	Fetcher Fetcher
	Parser  *results.Parser
	Logger  zerolog.Logger
}

// NewHarvester wires a harvester for the archive at baseURL.
func NewHarvester(baseURL string, fetcher Fetcher, log zerolog.Logger) *Harvester {
	return &Harvester{
		Builder: query.NewBuilder(baseURL),
		Fetcher: fetcher,
		Parser:  results.NewParser(baseURL),
		Logger:  log,
	}
}

// Search partitions [from, to] into month intervals and queries them one
// after another. An invalid range is returned as an error before any request
// is made. Fetch and parse failures are recorded on the interval and the
// search continues. If ctx is cancelled the remaining intervals carry the
// context error and Search returns it alongside the partial result.
func (h *Harvester) Search(ctx context.Context, from, to dates.Date, c query.SearchCriteria) (*SearchResult, error) {
	intervals, err := dates.Partition(from, to)
	if err != nil {
		return nil, err
	}
	urls := h.Builder.BuildAll(intervals, c)

	res := &SearchResult{Intervals: make([]IntervalResult, len(intervals))}
	for i, iv := range intervals {
		res.Intervals[i] = IntervalResult{Index: i, Interval: iv, URL: urls[i]}
	}

	h.Logger.Info().
		Str("from", from.String()).
		Str("to", to.String()).
		Int("intervals", len(intervals)).
		Msg("Starting search")

	for i := range res.Intervals {
		ir := &res.Intervals[i]
		if err := ctx.Err(); err != nil {
			for j := i; j < len(res.Intervals); j++ {
				res.Intervals[j].Err = err
			}
			return res, err
		}

		ir.Records, ir.Err = h.searchInterval(ctx, ir.URL)
		if ir.Err != nil {
			h.Logger.Warn().Err(ir.Err).Str("interval", ir.Interval.String()).Msg("Interval failed")
			continue
		}
		h.Logger.Debug().
			Str("interval", ir.Interval.String()).
			Int("records", len(ir.Records)).
			Msg("Interval fetched")
	}

	return res, nil
}

func (h *Harvester) searchInterval(ctx context.Context, url string) ([]domain.DocumentRecord, error) {
	body, err := h.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	records, err := h.Parser.Parse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse result page: %w", err)
	}
	return records, nil
}
