package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/labquest/internal/config"
	"github.com/abhisek/labquest/internal/store"
)

// cfg is loaded before any command runs.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "labquest",
	Short: "Interactive science lessons in the terminal",
	Long: `labquest walks you through hands-on lessons: predict an outcome, play with a
simulation, review what happened, then prove it on a short test.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, launch{})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LABQUEST_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/labquest/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug-level logs")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file and environment, then applies flags.
// An explicit --config must exist; the default location may not.
func loadConfig(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	required := path != ""
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	c, err := config.Load(path, required)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		c.Database.Path = p
	}
	cfg = c
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then LABQUEST_DB or the config file, then the default XDG path.
func resolveDBPath() (string, error) {
	if p := cfg.Database.Path; p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// openStore opens the configured database.
func openStore() (*store.Store, string, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, "", fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	return s, dbPath, nil
}
