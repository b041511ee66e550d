package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/riskibarqy/code-challenge/internal/platform/logging"
)

var logger = logging.New(logging.Options{Level: logging.LevelInfo, Service: "code-challenge-migration"})

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		logger.Error("migration failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "migration"
	app.Usage = "Apply or inspect code-challenge schema migrations"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "db-url",
			Usage:    "postgres connection url",
			EnvVars:  []string{"DB_URL"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "dir",
			Usage:   "migrations directory",
			EnvVars: []string{"MIGRATIONS_DIR", "MIGRATIONS_PATH"},
		},
		&cli.BoolFlag{
			Name:    "disable-prepared-binary-result",
			Usage:   "append disable_prepared_binary_result=yes to the db url",
			EnvVars: []string{"DB_DISABLE_PREPARED_BINARY_RESULT"},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "up",
			Usage:  "Apply all pending migrations",
			Action: withMigrator(runUp),
		},
		{
			Name:      "down",
			Usage:     "Roll back migrations",
			ArgsUsage: "[steps]",
			Action:    withMigrator(runDown),
		},
		{
			Name:   "version",
			Usage:  "Print the current schema version",
			Action: withMigrator(runVersion),
		},
		{
			Name:      "force",
			Usage:     "Set the schema version without running migrations",
			ArgsUsage: "<version>",
			Action:    withMigrator(runForce),
		},
		{
			Name:      "goto",
			Aliases:   []string{"migrate"},
			Usage:     "Migrate up or down to a target version",
			ArgsUsage: "<version>",
			Action:    withMigrator(runGoto),
		},
	}
	return app
}

func withMigrator(fn func(*cli.Context, *migrate.Migrate) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		migrationsDir, err := resolveMigrationsDir(c.String("dir"))
		if err != nil {
			return err
		}

		dbURL := normalizeDBURL(strings.TrimSpace(c.String("db-url")), c.Bool("disable-prepared-binary-result"))
		sourceURL := "file://" + filepath.ToSlash(migrationsDir)
		m, err := migrate.New(sourceURL, dbURL)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer closeMigrator(m)

		logger.Info("migration source resolved", "source", sourceURL)
		return fn(c, m)
	}
}

func runUp(_ *cli.Context, m *migrate.Migrate) error {
	if err := ignoreNoChange(m.Up()); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func runDown(c *cli.Context, m *migrate.Migrate) error {
	steps, err := parseSteps(c.Args().First())
	if err != nil {
		return err
	}
	if err := ignoreNoChange(m.Steps(-steps)); err != nil {
		return err
	}
	logger.Info("migrations rolled back", "steps", steps)
	return nil
}

func runVersion(c *cli.Context, m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Fprintln(c.App.Writer, "version: none")
		fmt.Fprintln(c.App.Writer, "dirty: false")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "version: %d\n", version)
	fmt.Fprintf(c.App.Writer, "dirty: %t\n", dirty)
	return nil
}

func runForce(c *cli.Context, m *migrate.Migrate) error {
	if c.Args().Len() < 1 {
		return errors.New("force requires a version argument")
	}
	version, err := parseVersion(c.Args().First())
	if err != nil {
		return err
	}
	if err := m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	logger.Info("migration version forced", "version", version)
	return nil
}

func runGoto(c *cli.Context, m *migrate.Migrate) error {
	if c.Args().Len() < 1 {
		return errors.New("goto requires a target version argument")
	}
	target, err := parseTarget(c.Args().First())
	if err != nil {
		return err
	}
	if err := ignoreNoChange(m.Migrate(target)); err != nil {
		return err
	}
	logger.Info("migrated to version", "version", target)
	return nil
}

func parseSteps(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}

	steps, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", raw, err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	if value > int64(^uint(0)>>1) {
		return 0, fmt.Errorf("version is too large for this platform")
	}
	return int(value), nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source failed", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration db failed", "error", dbErr)
	}
}

func resolveMigrationsDir(explicit string) (string, error) {
	candidates := []string{
		strings.TrimSpace(explicit),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked --dir, ./db/migrations, /app/db/migrations)")
}

func normalizeDBURL(raw string, disablePreparedBinaryResult bool) string {
	if !disablePreparedBinaryResult {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}
