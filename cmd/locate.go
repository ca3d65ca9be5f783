// Search the screen once for a template and print where it is.

package main

import (
	cli "github.com/spf13/cobra"
)

var (
	locateCmd = &cli.Command{
		Use:   "locate",
		Short: "Find a template on screen",
		Long:  "Capture the search area once and print the absolute region of the best match.",
		RunE:  Locate,
	}
)

func init() {
	rootCmd.AddCommand(locateCmd)
	addTargetFlags(locateCmd)
}

func Locate(cmd *cli.Command, args []string) error {
	target, err := targetFromFlags(cmd)
	if err != nil {
		return err
	}
	d, err := app.Dispatcher()
	if err != nil {
		return err
	}
	m, err := d.LocateTarget(target.Template, target.Area, target.Threshold)
	if err != nil {
		return err
	}
	printf(cmd, "%s center %s score %.3f scale %.1f\n", m.Region, m.Region.Center(), m.Score, m.Scale)
	return nil
}
