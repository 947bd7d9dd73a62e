package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ads-harvest/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
	supabase "github.com/supabase-community/supabase-go"
)

// SupabaseConfig holds configuration required to connect to Supabase.
type SupabaseConfig struct {
	// URL is the project URL, e.g. "https://[project-ref].supabase.co".
	URL string
	// Key is the API key used by the REST client.
	Key string
	// Table receives the documents; defaults to "documents".
	Table string

	// ConnectionString or Password enable a direct Postgres connection,
	// which is preferred over REST when available.
	ConnectionString string
	Password         string

	MaxOpenConns int
	MaxIdleConns int
	ConnMaxIdle  time.Duration
	ConnMaxLife  time.Duration
}

// SupabaseClient writes documents to a Supabase project, either through a
// direct Postgres connection or through the PostgREST API.
type SupabaseClient struct {
	db  *sql.DB
	sdk *supabase.Client
	cfg SupabaseConfig
}

func NewSupabaseClient(cfg SupabaseConfig) *SupabaseClient {
	if cfg.Table == "" {
		cfg.Table = "documents"
	}
	return &SupabaseClient{cfg: cfg}
}

// Connect sets up the REST client and, when credentials allow, a direct
// database handle. A failing direct connection falls back to REST mode.
func (c *SupabaseClient) Connect(ctx context.Context) error {
	if c.cfg.URL != "" && c.cfg.Key != "" {
		sdk, err := supabase.NewClient(c.cfg.URL, c.cfg.Key, nil)
		if err != nil {
			return fmt.Errorf("initialize supabase SDK: %w", err)
		}
		c.sdk = sdk
	}

	connStr := c.cfg.ConnectionString
	if connStr == "" && c.cfg.Password != "" {
		var err error
		if connStr, err = buildConnectionString(c.cfg.URL, c.cfg.Password); err != nil && c.sdk == nil {
			return fmt.Errorf("build connection string: %w", err)
		}
	}

	if connStr != "" {
		if err := c.openDirect(ctx, connStr); err != nil && c.sdk == nil {
			return err
		}
	}

	if c.db == nil && c.sdk == nil {
		return fmt.Errorf("either connection string/password or Supabase URL+key must be provided")
	}
	return nil
}

func (c *SupabaseClient) openDirect(ctx context.Context, connStr string) error {
	// The pooler in front of Supabase does not support prepared statement caching.
	connStr = addConnectionParam(connStr, "statement_cache_capacity", "0")
	connStr = addConnectionParam(connStr, "default_query_exec_mode", "simple_protocol")

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("open supabase postgres: %w", err)
	}
	applyPool(db, c.cfg.MaxOpenConns, c.cfg.MaxIdleConns, c.cfg.ConnMaxIdle, c.cfg.ConnMaxLife)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping supabase postgres: %w", err)
	}
	c.db = db
	return nil
}

func (c *SupabaseClient) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB returns the direct handle, or nil in REST-only mode.
func (c *SupabaseClient) DB() *sql.DB {
	return c.db
}

// HasDirectDB returns true if direct database connection is available.
func (c *SupabaseClient) HasDirectDB() bool {
	return c.db != nil
}

// SaveRecord upserts a record by id.
func (c *SupabaseClient) SaveRecord(ctx context.Context, rec domain.DocumentRecord) error {
	if rec.ID == nil {
		return ErrMissingID
	}
	if c.db != nil {
		return UpsertRecord(ctx, c.db, rec)
	}
	return c.restUpsert(rec)
}

// SaveMetadata stores page count and trailer fields for id.
func (c *SupabaseClient) SaveMetadata(ctx context.Context, id string, md domain.DocumentMetadata) error {
	if id == "" {
		return ErrMissingID
	}
	if c.db != nil {
		return UpsertMetadata(ctx, c.db, id, md)
	}
	return c.restUpsert(metadataRow(id, md))
}

func (c *SupabaseClient) restUpsert(row any) error {
	if c.sdk == nil {
		return fmt.Errorf("supabase: %w", ErrNotConnected)
	}
	if _, _, err := c.sdk.From(c.cfg.Table).Upsert(row, "id", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("supabase upsert into %s: %w", c.cfg.Table, err)
	}
	return nil
}

// metadataRow is the partial row written for SaveMetadata. PostgREST merges
// it into the existing row with the same id.
func metadataRow(id string, md domain.DocumentMetadata) map[string]any {
	return map[string]any{
		"id":       id,
		"seiten":   md.Pages,
		"metadata": md.Fields,
	}
}

// buildConnectionString derives the direct Postgres DSN of a hosted project
// from its URL and database password.
func buildConnectionString(projectURL, password string) (string, error) {
	if projectURL == "" {
		return "", fmt.Errorf("supabase URL is required when connection string is not provided")
	}

	parsed, err := url.Parse(projectURL)
	if err != nil {
		return "", fmt.Errorf("parse supabase URL: %w", err)
	}

	// "abc123.supabase.co" -> "abc123"
	parts := strings.Split(parsed.Host, ".")
	if len(parts) < 2 || parts[0] == "" {
		return "", fmt.Errorf("invalid supabase URL format: expected [project-ref].supabase.co")
	}

	return fmt.Sprintf("postgresql://postgres:%s@db.%s.supabase.co:5432/postgres?sslmode=require",
		url.QueryEscape(password), parts[0]), nil
}

// addConnectionParam appends key=value unless the DSN already sets key.
func addConnectionParam(connStr, key, value string) string {
	if strings.Contains(connStr, key+"=") {
		return connStr
	}
	sep := "?"
	if strings.Contains(connStr, "?") {
		sep = "&"
	}
	return connStr + sep + key + "=" + value
}
