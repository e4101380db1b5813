package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/carelink/census/internal/config"
	"github.com/carelink/census/internal/domain/batch"
	"github.com/carelink/census/internal/domain/clinical"
	"github.com/carelink/census/internal/domain/staging"
	"github.com/carelink/census/internal/httpapi"
	"github.com/carelink/census/internal/platform/db"
	"github.com/carelink/census/internal/platform/middleware"
	"github.com/carelink/census/internal/platform/spreadsheet"
	"github.com/carelink/census/internal/resolve"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "census",
		Short: "Hospital census import and resolution engine",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the census API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a census spreadsheet into a new batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			facility, _ := cmd.Flags().GetString("facility")
			date, _ := cmd.Flags().GetString("date")
			sheet, _ := cmd.Flags().GetString("sheet")
			out, _ := cmd.Flags().GetString("out")

			if file == "" {
				return fmt.Errorf("--file is required")
			}
			facilityID, err := uuid.Parse(facility)
			if err != nil {
				return fmt.Errorf("--facility must be a valid uuid")
			}
			serviceDate, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("--date must be formatted as 2006-01-02")
			}

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if sheet == "" {
				sheet = cfg.ImportSheet
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			reader, err := openReader(file, sheet)
			if err != nil {
				return err
			}

			// An --out path diverts staged rows to a tab-separated file
			// for inspection; the batch record is still created.
			var sink staging.Sink = staging.NewRepoSink(staging.NewRepo(pool))
			if out != "" {
				sink = staging.NewDelimitedFileSink(out)
			}

			mapper, err := staging.NewMapper(staging.DefaultMappings())
			if err != nil {
				return err
			}
			batches := batch.NewService(batch.NewRepo(pool))
			importer := staging.NewService(batches, sink, mapper, staging.NewValidator(), logger)

			result, err := importer.Import(ctx, reader, facilityID, serviceDate, uuid.Nil)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			fmt.Printf("Batch %s imported: %d rows, %d invalid, %d mapping failures\n",
				result.Batch.ID, result.RowCount, result.InvalidCount, len(result.MappingFailures))
			for _, f := range result.MappingFailures {
				fmt.Printf("  row %d: %s\n", f.Row, f.Message)
			}
			for _, e := range result.ValidationErrors {
				fmt.Printf("  row %d: %s: %s\n", e.Row, e.Field, e.Message)
			}
			return nil
		},
	}
	cmd.Flags().String("file", "", "Path to the census spreadsheet (.xlsx or .csv)")
	cmd.Flags().String("facility", "", "Facility id the census belongs to")
	cmd.Flags().String("date", "", "Service date (2006-01-02)")
	cmd.Flags().String("sheet", "", "Worksheet name for xlsx files (default: first sheet)")
	cmd.Flags().String("out", "", "Write staged rows to a TSV file instead of the database")
	return cmd
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Run the resolution pipeline over an imported batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			batchArg, _ := cmd.Flags().GetString("batch")
			batchID, err := uuid.Parse(batchArg)
			if err != nil {
				return fmt.Errorf("--batch must be a valid uuid")
			}

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			batches := batch.NewService(batch.NewRepo(pool))
			b, err := batches.GetBatch(ctx, batchID)
			if err != nil {
				return fmt.Errorf("load batch: %w", err)
			}

			registry, err := resolve.NewDefaultRegistry(clinical.NewRepo(pool))
			if err != nil {
				return err
			}
			pipeline := resolve.NewPipeline(registry, staging.NewRepo(pool), batches, resolve.NewLogProgress(logger))

			results, err := pipeline.ResolveBatch(ctx, b)
			if err != nil {
				return fmt.Errorf("resolve failed: %w", err)
			}

			fmt.Printf("Batch %s resolved (%s)\n", b.ID, b.Status)
			for _, kind := range resolve.Order {
				stats := results[kind]
				fmt.Printf("  %-24s matched=%d unmatched=%d ambiguous=%d\n",
					kind, stats.Matched, stats.Unmatched, stats.Ambiguous)
			}
			return nil
		},
	}
	cmd.Flags().String("batch", "", "Batch id to resolve")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	// migrate status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func openReader(path, sheet string) (spreadsheet.Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return spreadsheet.NewXLSXReader(path, sheet), nil
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		return spreadsheet.NewCSVReader(f), nil
	default:
		return nil, fmt.Errorf("unsupported file type %q, want .xlsx or .csv", filepath.Ext(path))
	}
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit("1M", "50M"))

	// Wiring
	batches := batch.NewService(batch.NewRepo(pool))
	stagingRepo := staging.NewRepo(pool)
	mapper, err := staging.NewMapper(staging.DefaultMappings())
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid column mappings")
	}
	importer := staging.NewService(batches, staging.NewRepoSink(stagingRepo), mapper, staging.NewValidator(), logger)

	registry, err := resolve.NewDefaultRegistry(clinical.NewRepo(pool))
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid resolver registry")
	}
	pipeline := resolve.NewPipeline(registry, stagingRepo, batches, resolve.NewLogProgress(logger))

	api := e.Group("/api")
	httpapi.NewHandler(batches, importer, stagingRepo, pipeline, cfg.ImportSheet).RegisterRoutes(api)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
