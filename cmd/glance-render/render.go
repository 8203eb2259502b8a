package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/spf13/cobra"

	glance "github.com/CHaerem/Glance-sub004"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Dither an image to the panel palette",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringP("input", "i", "", "Input image file (jpeg, png, gif, webp, bmp, tiff)")
	renderCmd.Flags().StringP("output", "o", "", "Output PNG preview file")
	renderCmd.Flags().String("packed", "", "Output file for the packed 4-bit transmit buffer")
	renderCmd.Flags().Int("width", 1200, "Target width in pixels")
	renderCmd.Flags().Int("height", 1600, "Target height in pixels")
	renderCmd.Flags().String("rotate", "auto", "Rotation (auto, 0, 90, 180, 270)")
	renderCmd.Flags().Float64("crop-x", 0, "Horizontal pan within the zoom window (0-100)")
	renderCmd.Flags().Float64("crop-y", 0, "Vertical pan within the zoom window (0-100)")
	renderCmd.Flags().Float64("zoom", 1.0, "Zoom factor (>= 1)")
	renderCmd.Flags().String("dither", "floyd-steinberg", "Dither algorithm (floyd-steinberg, atkinson, none)")
	renderCmd.Flags().Float64("saturation", 1.0, "Saturation boost (>= 1)")
	renderCmd.Flags().Bool("no-contrast", false, "Disable the contrast stretch")
	renderCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	packedPath, _ := cmd.Flags().GetString("packed")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	rotateStr, _ := cmd.Flags().GetString("rotate")
	cropX, _ := cmd.Flags().GetFloat64("crop-x")
	cropY, _ := cmd.Flags().GetFloat64("crop-y")
	zoom, _ := cmd.Flags().GetFloat64("zoom")
	ditherStr, _ := cmd.Flags().GetString("dither")
	saturation, _ := cmd.Flags().GetFloat64("saturation")
	noContrast, _ := cmd.Flags().GetBool("no-contrast")

	if outputPath == "" && packedPath == "" {
		return fmt.Errorf("at least one of --output and --packed is required")
	}

	rotation, err := glance.ParseRotation(rotateStr)
	if err != nil {
		return err
	}
	algorithm, err := glance.ParseAlgorithm(ditherStr)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	spec := glance.GeometrySpec{
		Rotation: rotation,
		CropX:    cropX,
		CropY:    cropY,
		Zoom:     zoom,
	}
	opts := glance.DitherOptions{
		Algorithm:       algorithm,
		SaturationBoost: saturation,
		EnhanceContrast: !noContrast,
	}

	out, err := glance.Render(data, spec, opts, width, height)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("writing preview: %w", err)
		}
		defer f.Close()
		if err := png.Encode(f, out.Image()); err != nil {
			return fmt.Errorf("encoding preview: %w", err)
		}
		fmt.Printf("Preview: %s (%dx%d)\n", outputPath, out.Width, out.Height)
	}

	if packedPath != "" {
		packed := out.PackTransmitIndexes()
		if err := os.WriteFile(packedPath, packed, 0644); err != nil {
			return fmt.Errorf("writing packed buffer: %w", err)
		}
		fmt.Printf("Packed:  %s (%d bytes)\n", packedPath, len(packed))
	}

	return nil
}
