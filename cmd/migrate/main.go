package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/richxcame/invoice-insights/migrations"
	"github.com/richxcame/invoice-insights/pkg/config"
	"github.com/richxcame/invoice-insights/pkg/database"
	"github.com/richxcame/invoice-insights/pkg/logger"
)

const usage = "usage: migrate [up|down|version]"

func main() {
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load("migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	migrator, err := database.NewMigrator(migrations.FS, cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migrations", zap.Error(err))
	}
	defer migrator.Close()

	if err := run(migrator, command); err != nil {
		logger.Error("Migration command failed", zap.String("command", command), zap.Error(err))
		os.Exit(1)
	}
}

type schemaMigrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
}

func run(m schemaMigrator, command string) error {
	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		logger.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	default:
		return fmt.Errorf("unknown command %q, %s", command, usage)
	}
}
