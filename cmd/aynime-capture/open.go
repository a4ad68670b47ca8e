package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Nu-Pan/aynime-capture/internal/capture"
)

var (
	openWindow  string
	openMonitor string
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a capture stream against a window or monitor and hold it until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stopShipping := initLogging(cfg)
		defer stopShipping()

		stream, err := openStreamFromFlags(cfg.ToCaptureOptions())
		if err != nil {
			return err
		}
		defer stream.Close()

		log.Info("capture stream open, waiting for Ctrl-C")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down")
		return nil
	},
}

func init() {
	openCmd.Flags().StringVar(&openWindow, "window", "", "window handle to capture (hex, e.g. 0x1a2b)")
	openCmd.Flags().StringVar(&openMonitor, "monitor", "", "monitor handle to capture (hex)")
}

// openStreamFromFlags resolves --window/--monitor into a capture.Target and
// opens it; shared by open and snapshot.
func openStreamFromFlags(opts capture.Options) (*capture.Stream, error) {
	switch {
	case openWindow != "":
		hwnd, err := parseHandle(openWindow)
		if err != nil {
			return nil, fmt.Errorf("--window: %w", err)
		}
		return capture.OpenWindow(hwnd, opts, log)
	case openMonitor != "":
		hmon, err := parseHandle(openMonitor)
		if err != nil {
			return nil, fmt.Errorf("--monitor: %w", err)
		}
		return capture.OpenMonitor(hmon, opts, log)
	default:
		return nil, fmt.Errorf("one of --window or --monitor is required")
	}
}

func parseHandle(s string) (uintptr, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, err
	}
	return uintptr(v), nil
}
