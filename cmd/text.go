// Find a word or line of text on screen with tesseract and optionally click it.

package main

import (
	cli "github.com/spf13/cobra"
)

var (
	textCmd = &cli.Command{
		Use:   "text <text>",
		Short: "Find text on screen",
		Long:  "Run in-process tesseract over the area and print where the text is. Matching ignores case.",
		Args:  cli.ExactArgs(1),
		RunE:  Text,
	}
)

func init() {
	rootCmd.AddCommand(textCmd)

	textCmd.Flags().StringP("region", "r", "", "Area to search as x,y,width,height. Defaults to the whole screen.")
	textCmd.Flags().StringP("window", "w", "", "Search inside the window of this process.")
	textCmd.Flags().Bool("click", false, "Click the center of the text.")
}

func Text(cmd *cli.Command, args []string) error {
	click, _ := cmd.Flags().GetBool("click")

	// Only the in-process engine reports word boxes.
	app.cfg.OCREngine = "gosseract"
	area, err := areaFromFlags(cmd)
	if err != nil {
		return err
	}
	d, err := app.Dispatcher()
	if err != nil {
		return err
	}
	if click {
		p, err := d.ClickOnText(area, args[0])
		if err != nil {
			return err
		}
		printf(cmd, "clicked %s\n", p)
		return nil
	}
	found, err := d.LocateText(area, args[0])
	if err != nil {
		return err
	}
	printf(cmd, "%s center %s\n", found, found.Center())
	return nil
}
