package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/basketloom-cli/internal/archive"
	cfgpkg "github.com/KaramelBytes/basketloom-cli/internal/config"
	"github.com/KaramelBytes/basketloom-cli/internal/logging"
)

// version is overridden at build time with -ldflags "-X .../cmd.version=...".
var version = "dev"

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	log = logging.New("info", "text", os.Stderr)
)

var rootCmd = &cobra.Command{
	Use:     "basketloom",
	Short:   "BasketLoom CLI: find products that are bought together",
	Long:    `BasketLoom mines transaction tables (CSV, TSV, XLSX) for product pairs and triplets that co-occur, and reports support, confidence and lift for each association.`,
	Version: version,
	// Execute prints the error once with the ✗ prefix
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.basketloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it through ensureConfig
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log = logging.New(level, cfg.LogFormat, os.Stderr)
}

func ensureConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

// openArchive opens the configured store; a nil store means archiving is off.
func openArchive(c *cfgpkg.Global) (archive.Store, error) {
	st, err := archive.Open(c.ArchiveBackend, c.ArchivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return st, nil
}
