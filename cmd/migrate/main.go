package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/config"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/logger"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultCreateDir is where new migration files are written
const defaultCreateDir = "migrations"

type cli struct {
	path     string
	logLevel string
	log      *zap.Logger
}

func main() {
	c := &cli{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the settlement database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			log, err := logger.New(logger.Config{Level: c.logLevel, Format: "console", Output: "stdout"})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.log = log
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.path, "path", "", "migrations directory (default: the migrations embedded in the binary)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		c.migratorCommand("up", "Apply all pending migrations", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			return m.Up()
		}),
		c.migratorCommand("down", "Roll back every migration", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			return m.Down()
		}),
		c.migratorCommand("step <n>", "Apply n migrations (negative rolls back)", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		}),
		c.migratorCommand("goto <version>", "Migrate up or down to a version", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.GoTo(uint(version))
		}),
		c.migratorCommand("version", "Show the applied version", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if version == 0 {
				c.log.Info("No migrations applied")
				return nil
			}
			c.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
			return nil
		}),
		c.migratorCommand("force <version>", "Record a version as applied after a manual repair", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(version)
		}),
		c.dropCommand(),
		c.createCommand(),
		c.listCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// migratorCommand builds a subcommand that runs fn against the configured database
func (c *cli) migratorCommand(use, short string, args cobra.PositionalArgs, fn func(*migration.Migrator, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(_ *cobra.Command, args []string) error {
			m, closeFn, err := c.openMigrator()
			if err != nil {
				return err
			}
			defer closeFn()
			return fn(m, args)
		},
	}
}

func (c *cli) dropCommand() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every settlement table",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if !confirm {
				return fmt.Errorf("drop cancelled; pass --confirm to drop every table")
			}
			m, closeFn, err := c.openMigrator()
			if err != nil {
				return err
			}
			defer closeFn()
			return m.Drop()
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm dropping every table")
	return cmd
}

func (c *cli) createCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name> [description]",
		Short: "Write an empty up/down migration pair",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := c.path
			if dir == "" {
				dir = defaultCreateDir
			}
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(dir, args[0], description)
			if err != nil {
				return err
			}
			c.log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	}
}

func (c *cli) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names, err := migration.ListMigrations(c.path)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				c.log.Info("No migrations found")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), "  -", name)
			}
			return nil
		},
	}
}

// openMigrator connects to the configured postgres database. The returned
// func closes both the migrator and the connection.
func (c *cli) openMigrator() (*migration.Migrator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != "postgres" {
		return nil, nil, fmt.Errorf("versioned migrations need postgres; %s schemas are created by the server", cfg.Database.Driver)
	}
	path := c.path
	if path == "" {
		path = cfg.Database.MigrationsPath
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := migration.New(db, path, c.log)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	c.log.Info("Connected", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.DBName))
	return m, func() {
		if err := m.Close(); err != nil {
			c.log.Warn("Failed to close migrator", zap.Error(err))
		}
	}, nil
}
