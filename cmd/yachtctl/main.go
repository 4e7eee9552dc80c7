package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/config"
	kafkax "github.com/nabeelarbab82-debug/LuxuryYachts/internal/kafka"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/logging"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/orders"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/outbox"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/payments"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/postgres"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/reconcile"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/redisx"
	"github.com/nabeelarbab82-debug/LuxuryYachts/internal/refnum"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var Version = "dev"

// env is what every subcommand shares: config, logger and a lazily opened pool.
type env struct {
	cfg config.Config
	log *logrus.Logger
	db  *pgxpool.Pool
}

func (e *env) pool(ctx context.Context) (*pgxpool.Pool, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := postgres.Connect(ctx, e.cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	e.db = db
	return db, nil
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	e := &env{cfg: cfg, log: logging.New(cfg.LogLevel, "text")}
	defer e.close()

	rootCmd := &cobra.Command{
		Use:          "yachtctl",
		Short:        "Operator tooling for the yacht booking backend",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd(e))
	rootCmd.AddCommand(seedCmd(e))
	rootCmd.AddCommand(adminCmd(e))
	rootCmd.AddCommand(sweepCmd(e))
	rootCmd.AddCommand(outboxCmd(e))

	if err := rootCmd.Execute(); err != nil {
		e.close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := postgres.Migrate(cmd.Context(), e.cfg.PostgresDSN); err != nil {
				return err
			}
			e.log.Info("migrations applied")
			return nil
		},
	}
}

func sweepCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Re-check orders still open after --after against the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			after, _ := cmd.Flags().GetDuration("after")
			maxAge, _ := cmd.Flags().GetDuration("max-age")
			if e.cfg.StripeSecretKey == "" {
				return fmt.Errorf("STRIPE_SECRET_KEY is required")
			}
			db, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			rdb := redisx.New(e.cfg.RedisAddr)
			defer rdb.Close()

			svc := &reconcile.Service{
				Orders: &orders.Repo{
					DB:       db,
					Refs:     refnum.NewGenerator(),
					Outbox:   &outbox.Repo{DB: db},
					Topic:    e.cfg.PaymentTopic,
					Producer: "yachtctl",
				},
				Gateway: payments.NewStripe(e.cfg.StripeSecretKey, e.cfg.StripeWebhookSecret),
				Cache:   &redisx.StatusCache{Client: rdb},
				Log:     e.log,

				MaxOpenAge: maxAge,
			}
			rep, err := svc.Sweep(cmd.Context(), time.Now().Add(-after))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d settled=%d failed=%d expired=%d unchanged=%d errors=%d\n",
				rep.Scanned, rep.Settled, rep.Failed, rep.Expired, rep.Unchanged, rep.Errors)
			return nil
		},
	}
	cmd.Flags().Duration("after", 30*time.Minute, "only orders created before now minus this")
	cmd.Flags().Duration("max-age", e.cfg.SweepMaxAge, "cancel intents still awaiting payment after this long (0 disables)")
	return cmd
}

func outboxCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Outbox maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "flush",
		Short: "Publish every pending outbox record to Kafka and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := e.pool(cmd.Context())
			if err != nil {
				return err
			}
			prod := kafkax.NewProducer(e.cfg.KafkaBrokers)
			defer prod.Close()

			relay := &outbox.Relay{Store: &outbox.Repo{DB: db}, Publisher: prod, Log: e.log}
			n, err := relay.Flush(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "published=%d\n", n)
			return err
		},
	})
	return cmd
}
