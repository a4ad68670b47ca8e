package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nu-Pan/aynime-capture/internal/previewsrv"
)

var (
	serveAddr    string
	serveFPS     float64
	serveQuality int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open a capture stream and serve a live JPEG preview over WebSocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stopShipping := initLogging(cfg)
		defer stopShipping()

		stream, err := openStreamFromFlags(cfg.ToCaptureOptions())
		if err != nil {
			return err
		}
		defer stream.Close()

		srv := previewsrv.New(stream, serveAddr, serveFPS, serveQuality)
		srv.Start()
		log.Info("preview server listening", "addr", serveAddr, "ws_path", "/ws")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down preview server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Stop(ctx)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&openWindow, "window", "", "window handle to capture (hex)")
	serveCmd.Flags().StringVar(&openMonitor, "monitor", "", "monitor handle to capture (hex)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8787", "address to serve the preview WebSocket on")
	serveCmd.Flags().Float64Var(&serveFPS, "fps", 15, "preview sample rate")
	serveCmd.Flags().IntVar(&serveQuality, "quality", 70, "JPEG quality (1-100)")
}
