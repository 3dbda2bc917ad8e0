// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the merge-engine CLI. It manages
// address books and task lists in a local SQLite database and removes
// duplicate records on merge, import, and feed refresh.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/merge-engine/internal/logging"
	"github.com/pdiddy/merge-engine/internal/secrets"
	"github.com/pdiddy/merge-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// appCfg is decoded from viper before every command runs.
	appCfg types.AppConfig

	// logger writes structured logs to stderr.
	logger = logging.Nop()

	// loadedSecrets holds feed credentials loaded from the secrets directory.
	loadedSecrets map[string]string
)

// rootCmd is the base command for the merge-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "merge-engine",
	Short: "Merge and deduplicate contacts and tasks",
	Long: `merge-engine keeps address books and task lists in a local SQLite
database and removes duplicate records.

Records are compared with a deterministic rule over UID, display name,
email, and phone. Each signal can be switched on or off per run with
--use-uid, --use-name, --use-email, and --use-phone, or in the config file
under dedup.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&appCfg); err != nil {
			return fmt.Errorf("decoding config: %w", err)
		}

		l, err := logging.New(appCfg.Log.Mode, appCfg.Log.Level)
		if err != nil {
			return err
		}
		logger = l

		s, err := secrets.Load(appCfg.Feed.SecretsDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./merge-engine.yaml or ~/.config/merge-engine/merge-engine.yaml)")
	pf.String("data-dir", "data", "directory holding merge-engine.db and exports")
	pf.Bool("use-uid", true, "decide by UID when both records carry one")
	pf.Bool("use-name", true, "compare normalized display names")
	pf.Bool("use-email", true, "compare email addresses (contacts)")
	pf.Bool("use-phone", false, "compare phone numbers (contacts)")

	viper.BindPFlag("data_dir", pf.Lookup("data-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("merge-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "merge-engine"))
		}
	}

	setDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers defaults and environment bindings on v. Nested
// keys map to MERGE_ENGINE_<SECTION>_<KEY>, e.g. MERGE_ENGINE_DEDUP_USE_PHONE.
func setDefaults(v *viper.Viper) {
	v.SetEnvPrefix("MERGE_ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", "data")
	v.SetDefault("import.max_records", 5000)
	v.SetDefault("feed.timeout", 30*time.Second)
	v.SetDefault("feed.user_agent", "merge-engine/"+version)
	v.SetDefault("feed.max_retries", 5)
	v.SetDefault("feed.concurrency", 4)
	v.SetDefault("feed.secrets_dir", ".secrets")
	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "info")

	// The dedup keys have no default so that an unset key leaves the
	// per-kind default in place; BindEnv makes them visible to Unmarshal.
	for _, key := range []string{"dedup.use_uid", "dedup.use_name", "dedup.use_email", "dedup.use_phone"} {
		v.BindEnv(key)
	}
}

// detectionOptions returns the configured detection options with any
// explicitly set --use-* flag applied on top.
func detectionOptions(cmd *cobra.Command) types.DetectionOptions {
	opts := appCfg.Dedup
	flags := []struct {
		name string
		dst  **bool
	}{
		{"use-uid", &opts.UseUID},
		{"use-name", &opts.UseName},
		{"use-email", &opts.UseEmail},
		{"use-phone", &opts.UsePhone},
	}
	for _, f := range flags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cmd.Flags().GetBool(f.name)
		if err == nil {
			*f.dst = types.BoolPtr(v)
		}
	}
	return opts
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
