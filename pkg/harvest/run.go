package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ads-harvest/pkg/dates"
	"ads-harvest/pkg/query"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Request describes one harvest run.
type Request struct {
	From     dates.Date
	To       dates.Date
	Criteria query.SearchCriteria
}

// Summary reports the counts of a finished run. Err joins every per-item
// failure; a run with failures still completes.
type Summary struct {
	RunID            string
	Intervals        int
	FailedIntervals  int
	Records          int
	SavedRecords     int
	Documents        int
	SkippedDocuments int
	FailedDocuments  int
	Duration         time.Duration
	Err              error
}

// Runner drives search, the optional document stage and the sink.
type Runner struct {
	Harvester *Harvester
	Documents *DocumentProcessor // nil skips the document stage
	Sink      Sink
	Logger    zerolog.Logger

	// Processed holds ids whose metadata is already stored; their PDFs are
	// not downloaded again.
	Processed map[string]bool

	now   func() time.Time
	newID func() string
}

// NewRunner creates a runner. documents may be nil.
func NewRunner(h *Harvester, documents *DocumentProcessor, sink Sink, log zerolog.Logger) *Runner {
	return &Runner{
		Harvester: h,
		Documents: documents,
		Sink:      sink,
		Logger:    log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Run executes a harvest. The returned error is non-nil only when the run
// could not start (invalid range) or was cancelled; item failures are
// collected in Summary.Err.
func (r *Runner) Run(ctx context.Context, req Request) (*Summary, error) {
	start := r.now()
	sum := &Summary{RunID: r.newID()}
	log := r.Logger.With().Str("run_id", sum.RunID).Logger()

	res, err := r.Harvester.Search(ctx, req.From, req.To, req.Criteria)
	if res == nil {
		return nil, err
	}

	var errs []error
	if serr := res.Err(); serr != nil {
		errs = append(errs, serr)
	}
	sum.Intervals = len(res.Intervals)
	sum.FailedIntervals = res.Failed()

	records := res.Records()
	sum.Records = len(records)
	retrieved := r.now().UTC()

	for _, rec := range records {
		if cerr := ctx.Err(); cerr != nil {
			err = cerr
			break
		}

		rec.RunID = sum.RunID
		rec.RetrievedAt = retrieved
		if serr := r.Sink.SaveRecord(ctx, rec); serr != nil {
			errs = append(errs, fmt.Errorf("save record %s: %w", rec.Key(), serr))
			log.Warn().Err(serr).Str("id", rec.Key()).Msg("Saving record failed")
			// Metadata is keyed to a stored record; without one it has no owner.
			continue
		}
		sum.SavedRecords++

		if r.Documents == nil {
			continue
		}
		if r.Processed[rec.Key()] {
			sum.SkippedDocuments++
			continue
		}
		sum.Documents++
		dr := r.Documents.Process(ctx, rec)
		if dr.Err != nil {
			sum.FailedDocuments++
			errs = append(errs, dr.Err)
			log.Warn().Err(dr.Err).Str("id", rec.Key()).Msg("Document failed")
			continue
		}
		if serr := r.Sink.SaveMetadata(ctx, rec.Key(), *dr.Metadata); serr != nil {
			sum.FailedDocuments++
			errs = append(errs, fmt.Errorf("save metadata %s: %w", rec.Key(), serr))
			log.Warn().Err(serr).Str("id", rec.Key()).Msg("Saving metadata failed")
		}
	}

	sum.Err = errors.Join(errs...)
	sum.Duration = r.now().Sub(start)

	log.Info().
		Int("intervals", sum.Intervals).
		Int("failed_intervals", sum.FailedIntervals).
		Int("records", sum.Records).
		Int("saved", sum.SavedRecords).
		Int("documents", sum.Documents).
		Int("skipped_documents", sum.SkippedDocuments).
		Int("failed_documents", sum.FailedDocuments).
		Dur("duration", sum.Duration).
		Msg("Run finished")

	return sum, err
}
