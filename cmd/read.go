// Read the text inside a screen region with tesseract.

package main

import (
	"strings"

	cli "github.com/spf13/cobra"
)

var (
	readCmd = &cli.Command{
		Use:   "read",
		Short: "OCR a screen region",
		RunE:  Read,
	}
)

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().StringP("region", "r", "", "Area to read as x,y,width,height. Defaults to the whole screen.")
	readCmd.Flags().StringP("window", "w", "", "Use the window of this process as the area.")
	readCmd.Flags().String("engine", "", "OCR engine: cli or gosseract. Defaults to MAVIS_OCR_ENGINE.")
	readCmd.Flags().String("lang", "", "Tesseract languages, e.g. rus+eng.")
	readCmd.Flags().Bool("enhance", false, "Boost text contrast before OCR.")
	readCmd.Flags().Bool("grayscale", false, "Convert the area to grayscale before OCR.")
}

func Read(cmd *cli.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("engine") {
		app.cfg.OCREngine, _ = flags.GetString("engine")
	}
	if flags.Changed("lang") {
		app.cfg.TesseractLanguages, _ = flags.GetString("lang")
	}
	if flags.Changed("enhance") {
		app.cfg.OCREnhance, _ = flags.GetBool("enhance")
	}
	if flags.Changed("grayscale") {
		app.cfg.OCRGrayscale, _ = flags.GetBool("grayscale")
	}
	if err := app.cfg.Validate(); err != nil {
		return err
	}

	area, err := areaFromFlags(cmd)
	if err != nil {
		return err
	}
	d, err := app.Dispatcher()
	if err != nil {
		return err
	}
	text, err := d.ReadRegion(area)
	if err != nil {
		return err
	}
	printf(cmd, "%s\n", strings.TrimSpace(text))
	return nil
}
