package main

import (
	"fmt"

	cli "github.com/spf13/cobra"

	"gitlab.com/web-doodle/mavis/pkg/config"
	"gitlab.com/web-doodle/mavis/pkg/region"
	"gitlab.com/web-doodle/mavis/pkg/screen"
	"gitlab.com/web-doodle/mavis/pkg/vision"
)

// Target is what a template command searches for and where.
type Target struct {
	Path      string
	Template  *vision.Frame
	Area      region.Region
	Threshold float64
}

var fullScreen = screen.Full

func addTargetFlags(cmd *cli.Command) {
	cmd.Flags().StringP("template", "t", "", "Path to the template image to search for.")
	cmd.Flags().StringP("region", "r", "", "Search area as x,y,width,height. Defaults to the whole screen.")
	cmd.Flags().Float64("threshold", 0, "Minimum match confidence in [0,1]. Defaults to MAVIS_THRESHOLD.")
	cmd.Flags().StringP("window", "w", "", "Search inside the window of this process instead of the whole screen.")
	_ = cmd.MarkFlagRequired("template")
}

func targetFromFlags(cmd *cli.Command) (Target, error) {
	path, _ := cmd.Flags().GetString("template")
	if path == "" {
		return Target{}, fmt.Errorf("a template is required")
	}
	area, err := areaFromFlags(cmd)
	if err != nil {
		return Target{}, err
	}
	threshold := app.cfg.Threshold
	if cmd.Flags().Changed("threshold") {
		threshold, _ = cmd.Flags().GetFloat64("threshold")
	}
	tmpl, err := vision.LoadTemplate(path)
	if err != nil {
		return Target{}, err
	}
	return Target{Path: path, Template: tmpl, Area: area, Threshold: threshold}, nil
}

// areaFromFlags reads --region, then --window, then falls back to the whole
// screen.
func areaFromFlags(cmd *cli.Command) (region.Region, error) {
	value, _ := cmd.Flags().GetString("region")
	window, _ := cmd.Flags().GetString("window")
	if value == "" && window != "" {
		return app.Robot().WindowRegion(window)
	}
	return parseArea(value, fullScreen)
}

// parseArea reads "x,y,width,height"; an empty value means full().
func parseArea(value string, full func() region.Region) (region.Region, error) {
	if value == "" {
		return full(), nil
	}
	return config.ParseRegion(value)
}
