// Tap a key combination, optionally after focusing an application window.

package main

import (
	cli "github.com/spf13/cobra"
)

var (
	keyCmd = &cli.Command{
		Use:     "key <key>",
		Short:   "Tap a key with optional modifiers",
		Example: "  mavis key j --mod shift --mod control --window \"Snap Camera\"",
		Args:    cli.ExactArgs(1),
		RunE:    Key,
	}
)

func init() {
	rootCmd.AddCommand(keyCmd)

	keyCmd.Flags().StringArrayP("mod", "m", []string{}, "Modifier to hold: shift, control, alt or cmd. Repeatable.")
	keyCmd.Flags().String("window", "", "Bring the process with this name to the front first.")
}

func Key(cmd *cli.Command, args []string) error {
	mods, _ := cmd.Flags().GetStringArray("mod")
	window, _ := cmd.Flags().GetString("window")

	if window != "" {
		if err := app.Robot().Activate(window); err != nil {
			return err
		}
	}
	d, err := app.Dispatcher()
	if err != nil {
		return err
	}
	d.PressKey(args[0], mods...)
	return nil
}
