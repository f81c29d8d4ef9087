package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/basketloom-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set BasketLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "separator: %q\n", cfg.Separator)
		fmt.Fprintf(out, "min_products: %d\n", cfg.MinProducts)
		fmt.Fprintf(out, "min_support_percent: %d\n", cfg.MinSupportPercent)
		fmt.Fprintf(out, "top_triplets: %d\n", cfg.TopTriplets)
		fmt.Fprintf(out, "max_items_per_transaction: %d\n", cfg.MaxItems)
		fmt.Fprintf(out, "display_limit: %d\n", cfg.DisplayLimit)
		fmt.Fprintf(out, "frequency_top_n: %d\n", cfg.FrequencyTopN)
		fmt.Fprintf(out, "network_top_n: %d\n", cfg.NetworkTopN)
		fmt.Fprintf(out, "archive_backend: %s\n", cfg.ArchiveBackend)
		fmt.Fprintf(out, "archive_path: %s\n", cfg.ArchivePath)
		fmt.Fprintf(out, "server_addr: %s\n", cfg.ServerAddr)
		fmt.Fprintf(out, "server_environment: %s\n", cfg.ServerEnvironment)
		fmt.Fprintf(out, "allowed_origins: %s\n", strings.Join(cfg.AllowedOrigins, ","))
		fmt.Fprintf(out, "rate_limit_per_sec: %.2f\n", cfg.RateLimitPerSec)
		fmt.Fprintf(out, "rate_limit_burst: %d\n", cfg.RateLimitBurst)
		fmt.Fprintf(out, "request_timeout_sec: %d\n", cfg.RequestTimeoutSec)
		fmt.Fprintf(out, "parse_cache_size: %d\n", cfg.ParseCacheSize)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := c.AnalysisConfig().Validate(); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	ints := map[string]*int{
		"min_products":              &c.MinProducts,
		"min_support_percent":       &c.MinSupportPercent,
		"top_triplets":              &c.TopTriplets,
		"max_items_per_transaction": &c.MaxItems,
		"display_limit":             &c.DisplayLimit,
		"frequency_top_n":           &c.FrequencyTopN,
		"network_top_n":             &c.NetworkTopN,
		"rate_limit_burst":          &c.RateLimitBurst,
		"request_timeout_sec":       &c.RequestTimeoutSec,
		"parse_cache_size":          &c.ParseCacheSize,
	}
	if p, ok := ints[key]; ok {
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*p = i
		return nil
	}
	switch key {
	case "separator":
		c.Separator = val
	case "archive_backend":
		c.ArchiveBackend = strings.ToLower(val)
		// re-derived for the new backend on next load
		c.ArchivePath = ""
	case "archive_path":
		c.ArchivePath = val
	case "server_addr":
		c.ServerAddr = val
	case "server_environment":
		c.ServerEnvironment = val
	case "allowed_origins":
		c.AllowedOrigins = strings.Split(val, ",")
	case "rate_limit_per_sec":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid float for rate_limit_per_sec: %w", err)
		}
		c.RateLimitPerSec = f
	case "log_level":
		c.LogLevel = val
	case "log_format":
		c.LogFormat = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
