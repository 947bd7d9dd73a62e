package cli

import (
	"fmt"

	"ads-harvest/pkg/dates"
	"ads-harvest/pkg/db"
	"ads-harvest/pkg/query"
	"ads-harvest/pkg/replication"

	"github.com/spf13/cobra"
)

func partitionCmd(a *app) *cobra.Command {
	var rng rangeFlags

	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Print the month intervals a search would query",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := rng.parse()
			if err != nil {
				return err
			}
			intervals, err := dates.Partition(from, to)
			if err != nil {
				return err
			}
			for _, iv := range intervals {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", iv.From, iv.To)
			}
			return nil
		},
	}
	addRangeFlags(cmd, &rng)
	return cmd
}

func urlsCmd(a *app) *cobra.Command {
	var (
		rng      rangeFlags
		criteria = query.DefaultCriteria()
	)

	cmd := &cobra.Command{
		Use:   "urls",
		Short: "Print the query URLs a search would fetch",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := rng.parse()
			if err != nil {
				return err
			}
			if err := validateCriteria(criteria); err != nil {
				return err
			}
			intervals, err := dates.Partition(from, to)
			if err != nil {
				return err
			}
			for _, u := range query.NewBuilder(a.cfg.Archive.BaseURL).BuildAll(intervals, criteria) {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}
	addRangeFlags(cmd, &rng)
	addCriteriaFlags(cmd, &criteria)
	return cmd
}

func replicateCmd(a *app) *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "replicate",
		Short: "Copy stored documents from MongoDB to Postgres",
		Long: `Copy every document from the MongoDB collection into the Postgres documents
table. Documents whose id already exists in Postgres are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			mongo := db.NewClient(a.cfg.Mongo.URI, a.cfg.Mongo.Database, a.cfg.Mongo.Collection)
			if err := mongo.Connect(ctx); err != nil {
				return fmt.Errorf("connect mongo: %w", err)
			}
			defer mongo.Close(ctx)

			pg := db.NewPostgresClient(a.postgresConfig())
			if err := pg.Connect(ctx); err != nil {
				return err
			}
			defer pg.Close()

			r, err := replication.NewReplicator(replication.Config{
				Mongo:     mongo,
				Postgres:  pg,
				BatchSize: batchSize,
				Logger:    a.log,
			})
			if err != nil {
				return err
			}

			stats, err := r.Replicate(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d, inserted %d, skipped %d\n",
				stats.Processed, stats.Inserted, stats.Skipped)
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "Documents per Postgres transaction")
	return cmd
}
