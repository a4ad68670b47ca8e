package main

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/spf13/cobra"
)

var (
	snapshotOut   string
	snapshotCount int
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture one or more frames from a window/monitor and write them as PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		stopShipping := initLogging(cfg)
		defer stopShipping()

		stream, err := openStreamFromFlags(cfg.ToCaptureOptions())
		if err != nil {
			return err
		}
		defer stream.Close()

		if snapshotCount <= 1 {
			w, h, buf, ok, err := stream.GetFrameByTime(0)
			if err != nil {
				return fmt.Errorf("get frame: %w", err)
			}
			if !ok {
				return fmt.Errorf("no frame available yet, try again in a moment")
			}
			return writeBGRPNG(snapshotOut, w, h, buf)
		}

		session, err := stream.CreateSession(cfg.BufferSeconds, nil)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		defer session.Close()

		n := snapshotCount
		if session.Len() < n {
			n = session.Len()
		}
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}

		results := session.GetFrames(stream.Dev(), nil, indices)
		for _, r := range results {
			if r.Err != nil {
				log.Warn("frame readback failed", "index", r.Index, "error", r.Err)
				continue
			}
			path := fmt.Sprintf("%s.%03d.png", snapshotOut, r.Index)
			if err := writeBGRPNG(path, r.Width, r.Height, r.Buf); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&openWindow, "window", "", "window handle to capture (hex)")
	snapshotCmd.Flags().StringVar(&openMonitor, "monitor", "", "monitor handle to capture (hex)")
	snapshotCmd.Flags().StringVar(&snapshotOut, "out", "snapshot.png", "output PNG path (suffixed with frame index when -n > 1)")
	snapshotCmd.Flags().IntVarP(&snapshotCount, "count", "n", 1, "number of frames to pull from the held ring")
}

// writeBGRPNG converts Readback's packed BGR (3 bytes/pixel) buffer into a
// PNG on disk; image/png has no BGR source format so this goes through
// image.RGBA first.
func writeBGRPNG(path string, width, height int, bgr []byte) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	n := width * height
	for px := 0; px < n; px++ {
		srcOff := px * 3
		dstOff := px * 4
		img.Pix[dstOff+0] = bgr[srcOff+2]
		img.Pix[dstOff+1] = bgr[srcOff+1]
		img.Pix[dstOff+2] = bgr[srcOff+0]
		img.Pix[dstOff+3] = 0xFF
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	log.Info("wrote snapshot", "path", path, "width", width, "height", height)
	return nil
}
