// Package replication copies harvested documents from MongoDB into Postgres.
package replication

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ads-harvest/pkg/db"
	"ads-harvest/pkg/domain"

	"github.com/rs/zerolog"
)

const defaultBatchSize = 100

// DocumentSource lists the documents to replicate. *db.Client implements it.
type DocumentSource interface {
	GetAllDocuments(ctx context.Context) ([]domain.Document, error)
}

// Config wires the replication dependencies.
type Config struct {
	Mongo     DocumentSource
	Postgres  db.DBProvider
	BatchSize int // defaults to 100
	Logger    zerolog.Logger
}

// Stats counts the documents seen and inserted by a replication run.
type Stats struct {
	Processed int
	Inserted  int
	Skipped   int // no id, or already present in Postgres
}

// Replicator replicates documents from MongoDB to Postgres.
type Replicator struct {
	mongo     DocumentSource
	pg        db.DBProvider
	batchSize int
	log       zerolog.Logger
}

func NewReplicator(cfg Config) (*Replicator, error) {
	if cfg.Mongo == nil {
		return nil, fmt.Errorf("mongo client is required")
	}
	if cfg.Postgres == nil {
		return nil, fmt.Errorf("postgres client is required")
	}
	size := cfg.BatchSize
	if size <= 0 {
		size = defaultBatchSize
	}
	return &Replicator{
		mongo:     cfg.Mongo,
		pg:        cfg.Postgres,
		batchSize: size,
		log:       cfg.Logger,
	}, nil
}

// Replicate reads all documents from Mongo and inserts the ones whose id is
// not yet in the Postgres documents table. Existing rows are left untouched.
func (r *Replicator) Replicate(ctx context.Context) (Stats, error) {
	if err := db.EnsureSchema(ctx, r.pg); err != nil {
		return Stats{}, err
	}

	docs, err := r.mongo.GetAllDocuments(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("read mongo documents: %w", err)
	}
	r.log.Info().Int("documents", len(docs)).Int("batch_size", r.batchSize).Msg("Loaded documents from Mongo")

	var stats Stats
	for _, b := range batches(docs, r.batchSize) {
		inserted, err := r.processBatch(ctx, b.docs)
		if err != nil {
			return stats, fmt.Errorf("batch [%d:%d]: %w", b.start, b.end, err)
		}
		stats.Processed += len(b.docs)
		stats.Inserted += inserted
		stats.Skipped += len(b.docs) - inserted

		r.log.Debug().
			Int("start", b.start).
			Int("end", b.end).
			Int("inserted", inserted).
			Msg("Batch replicated")
	}

	r.log.Info().
		Int("processed", stats.Processed).
		Int("inserted", stats.Inserted).
		Int("skipped", stats.Skipped).
		Msg("Replication complete")
	return stats, nil
}

type batch struct {
	docs       []domain.Document
	start, end int
}

// batches splits docs into consecutive slices of at most size elements.
func batches(docs []domain.Document, size int) []batch {
	var out []batch
	for start := 0; start < len(docs); start += size {
		end := min(start+size, len(docs))
		out = append(out, batch{docs: docs[start:end], start: start, end: end})
	}
	return out
}

func (r *Replicator) processBatch(ctx context.Context, docs []domain.Document) (int, error) {
	ids := documentIDs(docs)
	if len(ids) == 0 {
		return 0, nil
	}

	existing, err := r.existingIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	toInsert := filterNew(docs, existing)
	if len(toInsert) == 0 {
		return 0, nil
	}
	if err := r.insertTx(ctx, toInsert); err != nil {
		return 0, err
	}
	return len(toInsert), nil
}

func documentIDs(docs []domain.Document) []any {
	ids := make([]any, 0, len(docs))
	for _, d := range docs {
		if id := d.Key(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// idInQuery returns a SELECT for the given ids with one placeholder each.
func idInQuery(n int) string {
	var sb strings.Builder
	sb.WriteString("SELECT id FROM documents WHERE id IN (")
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "$%d", i+1)
	}
	sb.WriteString(")")
	return sb.String()
}

func (r *Replicator) existingIDs(ctx context.Context, ids []any) (map[string]bool, error) {
	rows, err := r.pg.DB().QueryContext(ctx, idInQuery(len(ids)), ids...)
	if err != nil {
		return nil, fmt.Errorf("query existing ids: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		set[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return set, nil
}

// filterNew drops documents without id and those already present.
func filterNew(docs []domain.Document, existing map[string]bool) []domain.Document {
	out := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		id := d.Key()
		if id == "" || existing[id] {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (r *Replicator) insertTx(ctx context.Context, docs []domain.Document) error {
	tx, err := r.pg.DB().BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, d := range docs {
		if err := db.UpsertRecord(ctx, tx, d.DocumentRecord); err != nil {
			return err
		}
		if d.Metadata == nil {
			continue
		}
		if err := db.UpsertMetadata(ctx, tx, d.Key(), *d.Metadata); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
