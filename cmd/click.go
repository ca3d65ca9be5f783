// Click the center of a template on screen.

package main

import (
	cli "github.com/spf13/cobra"
)

var (
	clickCmd = &cli.Command{
		Use:   "click",
		Short: "Click on a template",
		Long:  "Locate a template and click its center. With --fallback the given point is clicked when the template is not found.",
		RunE:  Click,
	}
)

func init() {
	rootCmd.AddCommand(clickCmd)
	addTargetFlags(clickCmd)

	clickCmd.Flags().String("fallback", "", "Point x,y to click when the template is not found.")
	clickCmd.Flags().Duration("delay", 0, "How long the button is held down. Defaults to MAVIS_CLICK_DELAY.")
	clickCmd.Flags().String("button", "", "Mouse button: left, right or center.")
}

func Click(cmd *cli.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("fallback") {
		app.cfg.FallbackPoint, _ = flags.GetString("fallback")
	}
	if flags.Changed("delay") {
		app.cfg.ClickDelay, _ = flags.GetDuration("delay")
	}
	if flags.Changed("button") {
		app.cfg.Button, _ = flags.GetString("button")
	}
	if err := app.cfg.Validate(); err != nil {
		return err
	}

	target, err := targetFromFlags(cmd)
	if err != nil {
		return err
	}
	d, err := app.Dispatcher()
	if err != nil {
		return err
	}
	res, err := d.ClickOnTarget(target.Template, target.Area, target.Threshold)
	if err != nil {
		return err
	}
	if res.Fallback {
		printf(cmd, "clicked fallback %s\n", res.Point)
		return nil
	}
	printf(cmd, "clicked %s score %.3f\n", res.Point, res.Score)
	return nil
}
