package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List difficulty tiers and images",
	Long:  `Shows the configured difficulty tiers and the image catalog.`,
	Args:  cobra.NoArgs,
	Run:   runList,
}

func runList(cmd *cobra.Command, _ []string) {
	a, err := setup("puzzle", true)
	if err != nil {
		fail("%v", err)
	}
	defer a.close()

	fmt.Println("Difficulties:")
	fmt.Println()
	fmt.Printf("  %-8s  %-5s  %s\n", "Level", "Tiles", "Label")
	fmt.Printf("  %-8s  %-5s  %s\n", "-----", "-----", "-----")
	for _, d := range a.engine.Difficulties {
		fmt.Printf("  %-8s  %-5d  %s\n", d.Level, d.TileCount, d.Label)
	}

	fmt.Println()
	fmt.Println("Images:")
	fmt.Println()

	// Calculate column widths
	maxRefLen := 3 // "Ref" header
	for _, ref := range a.engine.Images {
		if len(ref) > maxRefLen {
			maxRefLen = len(ref)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxRefLen, "Ref", "Size")
	fmt.Printf("  %-*s  %s\n", maxRefLen, "---", "----")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	for _, ref := range a.engine.Images {
		size := "unavailable"
		if info, err := a.assets.Load(ctx, ref); err == nil {
			size = fmt.Sprintf("%dx%d %s", info.Width, info.Height, info.Format)
		}
		fmt.Printf("  %-*s  %s\n", maxRefLen, ref, size)
	}

	fmt.Println()
	fmt.Println("Run 'puzzle play --difficulty <level>' to play.")
}
