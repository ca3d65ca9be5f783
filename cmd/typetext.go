// Click into a field found by template and type text.

package main

import (
	cli "github.com/spf13/cobra"
)

var (
	typeCmd = &cli.Command{
		Use:   "type",
		Short: "Click a template and type text into it",
		RunE:  TypeText,
	}
)

func init() {
	rootCmd.AddCommand(typeCmd)
	addTargetFlags(typeCmd)

	typeCmd.Flags().String("text", "", "Text to type.")
	typeCmd.Flags().Bool("enter", false, "Press enter after typing.")

	_ = typeCmd.MarkFlagRequired("text")
}

func TypeText(cmd *cli.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	enter, _ := cmd.Flags().GetBool("enter")

	target, err := targetFromFlags(cmd)
	if err != nil {
		return err
	}
	d, err := app.Dispatcher()
	if err != nil {
		return err
	}
	if err := d.TypeIntoTarget(target.Template, target.Area, target.Threshold, text); err != nil {
		return err
	}
	if enter {
		d.PressKey("enter")
	}
	return nil
}
