package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/emergency-view/internal/config"
	"github.com/ehr/emergency-view/internal/domain/emergency"
	"github.com/ehr/emergency-view/internal/domain/fullrecord"
	"github.com/ehr/emergency-view/internal/platform/auth"
	"github.com/ehr/emergency-view/internal/platform/db"
	"github.com/ehr/emergency-view/migrations"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "emergency-view",
		Short: "Emergency medical record viewer",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(credentialCmd())
	rootCmd.AddCommand(shareCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the emergency view server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Env)
	if cfg.IsDev() {
		logger.Warn().Msg("running in development mode: random cookie key unless SESSION_SIGNING_KEY is set")
	}

	srv, err := newServer(context.Background(), cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build server")
		return err
	}
	defer srv.Close()

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("record_api", cfg.RecordBaseURL()).Msg("starting server")
		if err := srv.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.echo.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func migrationFiles(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	return migrations.FS
}

func openMigrator(ctx context.Context, dir string) (*db.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, migrationFiles(dir)), pool.Close, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}
	cmd.PersistentFlags().String("dir", "", "read migrations from this directory instead of the bundled ones")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ctx := cmd.Context()
			m, closeFn, err := openMigrator(ctx, dir)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := m.Up(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ctx := cmd.Context()
			m, closeFn, err := openMigrator(ctx, dir)
			if err != nil {
				return err
			}
			defer closeFn()

			statuses, err := m.Status(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(out, "%03d  %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}

	cmd.AddCommand(upCmd, statusCmd)
	return cmd
}

func credentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the login account",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "hash",
		Short: "Print the bcrypt hash of a password read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	})
	return cmd
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is empty")
	}
	return password, nil
}

func shareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Manage shared emergency records",
	}

	putCmd := &cobra.Command{
		Use:   "put",
		Short: "Share a record under a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, _ := cmd.Flags().GetString("token")
			file, _ := cmd.Flags().GetString("file")
			fullFile, _ := cmd.Flags().GetString("full-record")

			v, err := readShareFile(file)
			if err != nil {
				return err
			}
			var full *fullrecord.Record
			if fullFile != "" {
				if full, err = readFullRecordFile(fullFile); err != nil {
					return err
				}
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := emergency.NewService(emergency.NewShareRepoPG(pool)).PutView(ctx, token, v); err != nil {
				return err
			}
			if full != nil {
				if err := fullrecord.NewPGSource(pool).Put(ctx, token, full); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "shared record under token %q\n", token)
			return nil
		},
	}
	putCmd.Flags().String("token", "", "share token (required)")
	putCmd.Flags().String("file", "", "JSON file with the public record (required)")
	putCmd.Flags().String("full-record", "", "JSON file with the full record sections")
	_ = putCmd.MarkFlagRequired("token")
	_ = putCmd.MarkFlagRequired("file")

	cmd.AddCommand(putCmd)
	return cmd
}

// readShareFile accepts the same body the record endpoint serves: either
// {"public_view": {...}, "is_authenticated": false} or a bare record.
func readShareFile(path string) (*emergency.View, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rec, hint, err := emergency.DecodeView(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &emergency.View{PublicView: rec, IsAuthenticated: hint}, nil
}

func readFullRecordFile(path string) (*fullrecord.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	rec, err := fullrecord.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}
