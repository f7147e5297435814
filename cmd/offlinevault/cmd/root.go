package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"go-offline-vault/internal/config"
)

// cfgFile holds the path to the config file specified by the user
var cfgFile string

// Persistent flag values; applied over the config file when set.
var (
	savePathFlag  string
	dbPathFlag    string
	dbBackendFlag string
	indexPathFlag string
	logLevel      string
	logFormat     string
)

// globalConfig holds the loaded configuration
var globalConfig config.Config

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "offlinevault",
	Short: "An offline content vault for movies and episodes",
	Long: `Offline Vault downloads movies and TV episodes for offline playback,
resolving HLS playlists into complete local files and keeping a persistent
registry of everything it has fetched.`,
	PersistentPreRunE: loadGlobalConfig,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file path (default is ./config.toml)")
	rootCmd.PersistentFlags().StringVar(&savePathFlag, "save-path", "", "Directory to save downloads (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db-path", "", "Registry database path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&dbBackendFlag, "db-backend", "", "Registry database backend: sqlite or bitcask (overrides config)")
	rootCmd.PersistentFlags().StringVar(&indexPathFlag, "index-path", "", "Search index path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Logging level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Logging format (text, json)")
}

// loadGlobalConfig resolves the configuration and configures logging before
// any command runs.
func loadGlobalConfig(cmd *cobra.Command, args []string) error {
	flags := config.CliFlags{}
	if cmd.Flags().Changed("config") {
		flags.ConfigFilePath = &cfgFile
	}
	if cmd.Flags().Changed("save-path") {
		flags.SavePath = &savePathFlag
	}
	if cmd.Flags().Changed("db-path") {
		flags.DatabasePath = &dbPathFlag
	}
	if cmd.Flags().Changed("db-backend") {
		flags.DatabaseBackend = &dbBackendFlag
	}
	if cmd.Flags().Changed("index-path") {
		flags.IndexPath = &indexPathFlag
	}
	if cmd.Flags().Changed("log-level") {
		flags.LogLevel = &logLevel
	}
	if cmd.Flags().Changed("log-format") {
		flags.LogFormat = &logFormat
	}

	cfg, err := config.Initialize(flags)
	if err != nil {
		return err
	}
	globalConfig = cfg

	initLogging(cfg.LogLevel, cfg.LogFormat)
	return nil
}

func initLogging(level, format string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid log level '%s', falling back to info", level)
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)

	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// formatBytes renders a byte count for humans.
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
