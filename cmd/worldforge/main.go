package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"worldforge/internal/config"
	"worldforge/internal/logging"
)

var (
	// Global flags
	configPath string
	dbPath     string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "worldforge",
	Short: "worldforge - procedural world database generator",
	Long: `worldforge builds and maintains SQLite world databases for the game
runtime: cities, buildings, characters with derived combat stats, devices,
networks, the six item categories, and stocked shops.

The same binary also heals databases other tools have touched: "migrate"
reconciles the schema against the canonical registry and "audit" finds and
repairs dangling shop inventory references.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if dbPath != "" {
			cfg.Database.Path = dbPath
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		if err := logging.Initialize(wd); err != nil {
			logger.Warn("category logging disabled", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to worldforge.yaml (optional)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "world database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(worldsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
