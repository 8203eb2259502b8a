package main

import (
	"fmt"
	"image"
	"os"

	"github.com/spf13/cobra"

	"github.com/CHaerem/Glance-sub004/analyze"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Report how well an image fits the panel palette",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringP("input", "i", "", "Input image file")
	analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding input: %w", err)
	}

	report, err := analyze.Fit(img)
	if err != nil {
		return err
	}

	fmt.Println("Dominant colors:")
	for _, m := range report.Dominant {
		fmt.Printf("  %s  weight=%.3f  → %-6s ΔE=%.2f\n",
			m.Color.Hex(), m.Weight, m.Nearest.Name, m.DeltaE)
	}
	fmt.Println("Cluster centers:")
	for _, m := range report.Clusters {
		fmt.Printf("  %s  share=%.3f  → %-6s ΔE=%.2f\n",
			m.Color.Hex(), m.Weight, m.Nearest.Name, m.DeltaE)
	}
	fmt.Printf("Mean ΔE: %.2f  Max ΔE: %.2f\n", report.MeanDeltaE, report.MaxDeltaE)
	if report.SuggestedSaturation > 1.0 {
		fmt.Printf("Suggested saturation boost: %.2f\n", report.SuggestedSaturation)
	}
	return nil
}
