package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nu-Pan/aynime-capture/internal/capture"
	"github.com/Nu-Pan/aynime-capture/internal/config"
	"github.com/Nu-Pan/aynime-capture/internal/logging"
)

var (
	cfgFile string

	logShipURL      string
	logShipDeviceID string
	logShipToken    string
	logShipLevel    string
)

var log = logging.L("main")

var rootCmd = &cobra.Command{
	Use:   "aynime-capture",
	Short: "aynime-capture CLI",
	Long:  `aynime-capture - Windows Graphics Capture desktop/window capture library, CLI host`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("aynime-capture v%s\n", capture.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the platform config dir)")
	rootCmd.PersistentFlags().StringVar(&logShipURL, "log-ship-url", "", "remote diagnostics collector URL (enables log shipping when set)")
	rootCmd.PersistentFlags().StringVar(&logShipDeviceID, "log-ship-device-id", "", "device ID reported to the log-shipping collector")
	rootCmd.PersistentFlags().StringVar(&logShipToken, "log-ship-token", "", "bearer token for the log-shipping collector")
	rootCmd.PersistentFlags().StringVar(&logShipLevel, "log-ship-level", "", "minimum level shipped remotely (debug/info/warn/error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(listMonitorsCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads cfg via internal/config, falling back to defaults on a
// missing file (there is no enrollment step to fail without, unlike the
// teacher's agentID gate), then applies any --log-ship-* flag overrides.
func loadConfig() *config.Config {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if logShipURL != "" {
		cfg.LogShipURL = logShipURL
	}
	if logShipDeviceID != "" {
		cfg.LogShipDeviceID = logShipDeviceID
	}
	if logShipToken != "" {
		cfg.LogShipToken = logShipToken
	}
	if logShipLevel != "" {
		cfg.LogShipMinLevel = logShipLevel
	}
	return cfg
}

// initLogging sets up structured logging from config, matching the
// teacher's rotating-file-plus-stdout tee, and starts the remote log
// shipper when cfg configures a destination. The returned func stops the
// shipper; callers defer it so a short-lived subcommand still flushes its
// buffered entries on exit.
func initLogging(cfg *config.Config) func() {
	var output io.Writer = os.Stdout
	if cfg.LogFile != "" {
		rw, err := logging.NewRotatingWriter(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v (logging to stdout)\n", cfg.LogFile, err)
		} else {
			output = logging.TeeWriter(os.Stdout, rw)
		}
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, output)
	log = logging.L("main")

	if !cfg.LogShippingEnabled() {
		return func() {}
	}
	logging.InitShipper(cfg.ToShipperConfig())
	return logging.StopShipper
}
