package cli

import (
	"context"
	"fmt"
	"io"

	"ads-harvest/pkg/db"
	"ads-harvest/pkg/harvest"
	"ads-harvest/pkg/httpclient"
	"ads-harvest/pkg/query"

	"github.com/spf13/cobra"
)

// Sink names accepted by --sink.
const (
	sinkStdout   = "stdout"
	sinkMongo    = "mongo"
	sinkPostgres = "postgres"
	sinkSupabase = "supabase"
)

func searchCmd(a *app) *cobra.Command {
	var (
		rng           rangeFlags
		criteria      = query.DefaultCriteria()
		download      bool
		sinkName      string
		skipProcessed bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search the archive and store the listed documents",
		Long: `Search the archive month by month between --fromdate and --todate.

Records are written to the selected sink. With --download every listed PDF is
fetched and the metadata on its last page (date, session, signature, ...) is
stored as well. Failed months or documents are reported and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := rng.parse()
			if err != nil {
				return err
			}
			if err := validateCriteria(criteria); err != nil {
				return err
			}

			ctx := cmd.Context()
			sink, closeSink, err := a.openSink(ctx, sinkName, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer closeSink()

			client := httpclient.NewClient(a.cfg.HTTP())
			h := harvest.NewHarvester(a.cfg.Archive.BaseURL, client, a.log)

			var docs *harvest.DocumentProcessor
			if download || a.cfg.Download.Enabled {
				docs = harvest.NewDocumentProcessor(client, a.cfg.Download.TempDir, a.log)
			}

			runner := harvest.NewRunner(h, docs, sink, a.log)
			if skipProcessed && docs != nil {
				if mc, ok := sink.(*db.Client); ok {
					if runner.Processed, err = mc.GetProcessedIDs(ctx); err != nil {
						return err
					}
				}
			}

			sum, err := runner.Run(ctx, harvest.Request{From: from, To: to, Criteria: criteria})
			if err != nil {
				return err
			}
			if sum.Err != nil {
				a.log.Warn().Err(sum.Err).Msg("Run finished with errors")
			}
			return nil
		},
	}

	addRangeFlags(cmd, &rng)
	addCriteriaFlags(cmd, &criteria)
	cmd.Flags().BoolVar(&download, "download", false, "Download each PDF and extract its trailer metadata")
	cmd.Flags().StringVar(&sinkName, "sink", sinkStdout, "Where to store results: stdout, mongo, postgres or supabase")
	cmd.Flags().BoolVar(&skipProcessed, "skip-processed", false, "With --sink mongo, do not download documents that already have metadata")

	return cmd
}

// openSink connects the named sink. The returned func releases it.
func (a *app) openSink(ctx context.Context, name string, stdout io.Writer) (harvest.Sink, func(), error) {
	switch name {
	case sinkStdout:
		return harvest.NewJSONSink(stdout), func() {}, nil

	case sinkMongo:
		c := db.NewClient(a.cfg.Mongo.URI, a.cfg.Mongo.Database, a.cfg.Mongo.Collection)
		if err := c.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		return c, func() { _ = c.Close(context.Background()) }, nil

	case sinkPostgres:
		c := db.NewPostgresClient(a.postgresConfig())
		if err := c.Connect(ctx); err != nil {
			return nil, nil, err
		}
		if err := c.EnsureSchema(ctx); err != nil {
			_ = c.Close()
			return nil, nil, err
		}
		return c, func() { _ = c.Close() }, nil

	case sinkSupabase:
		c := db.NewSupabaseClient(db.SupabaseConfig{
			URL:              a.cfg.Supabase.URL,
			Key:              a.cfg.Supabase.Key,
			Table:            a.cfg.Supabase.Table,
			ConnectionString: a.cfg.Supabase.ConnectionString,
			Password:         a.cfg.Supabase.Password,
		})
		if err := c.Connect(ctx); err != nil {
			return nil, nil, err
		}
		if c.HasDirectDB() {
			if err := db.EnsureSchema(ctx, c); err != nil {
				_ = c.Close()
				return nil, nil, err
			}
		}
		return c, func() { _ = c.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown sink %q (want stdout, mongo, postgres or supabase)", name)
	}
}

func (a *app) postgresConfig() db.PostgresConfig {
	return db.PostgresConfig{
		DSN:          a.cfg.Postgres.DSN,
		MaxOpenConns: a.cfg.Postgres.MaxOpenConns,
		MaxIdleConns: a.cfg.Postgres.MaxIdleConns,
		ConnMaxIdle:  a.cfg.Postgres.ConnMaxIdle,
		ConnMaxLife:  a.cfg.Postgres.ConnMaxLife,
	}
}
