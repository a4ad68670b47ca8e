package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nu-Pan/aynime-capture/internal/capture"
)

var listMonitorsCmd = &cobra.Command{
	Use:   "list-monitors",
	Short: "List displays available for capture",
	RunE: func(cmd *cobra.Command, args []string) error {
		monitors, err := capture.ListMonitors()
		if err != nil {
			return fmt.Errorf("list monitors: %w", err)
		}
		for _, m := range monitors {
			fmt.Printf("%d\t%s\t%dx%d\t(%d,%d)\n", m.Index, m.Name, m.Width, m.Height, m.X, m.Y)
		}

		windows, err := capture.ListWindows()
		if err != nil {
			return fmt.Errorf("list windows: %w", err)
		}
		for _, w := range windows {
			fmt.Printf("window\t0x%x\t%q\tpid=%d\t%dx%d\n", w.Handle, w.Title, w.ProcessID, w.Width, w.Height)
		}
		return nil
	},
}
