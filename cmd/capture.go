// Save a region of the screen to an image file, e.g. to cut new templates.

package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	cli "github.com/spf13/cobra"

	"gitlab.com/web-doodle/mavis/pkg/vision"
)

var (
	captureCmd = &cli.Command{
		Use:   "capture",
		Short: "Save a screen region to a file",
		RunE:  Capture,
	}
)

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().StringP("region", "r", "", "Area to save as x,y,width,height. Defaults to the whole screen.")
	captureCmd.Flags().StringP("window", "w", "", "Use the window of this process as the area.")
	captureCmd.Flags().StringP("output", "o", "./tmp/captures", "Output file, or a directory to write a timestamped png into.")
}

func Capture(cmd *cli.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	area, err := areaFromFlags(cmd)
	if err != nil {
		return err
	}
	outputFilePath := captureOutputPath(output, time.Now())
	if err := os.MkdirAll(filepath.Dir(outputFilePath), 0755); err != nil {
		return err
	}

	c, err := app.Capturer()
	if err != nil {
		return err
	}
	frame, err := c.Capture(area)
	if err != nil {
		return err
	}
	if err := vision.SaveFrame(frame, outputFilePath); err != nil {
		return err
	}
	app.logger.Info("region captured", "region", area, "path", outputFilePath)
	printf(cmd, "%s\n", outputFilePath)
	return nil
}

// captureOutputPath treats output without an image extension as a directory.
func captureOutputPath(output string, now time.Time) string {
	switch filepath.Ext(output) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff":
		return output
	}
	return path.Join(output, fmt.Sprintf("capture-%d.png", now.Unix()))
}
