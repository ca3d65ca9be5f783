// Run a YAML routine of waits, clicks, typing and reads.

package main

import (
	"fmt"
	"path/filepath"
	"sort"

	cli "github.com/spf13/cobra"

	"gitlab.com/web-doodle/mavis/pkg/routine"
)

var (
	runCmd = &cli.Command{
		Use:   "run <routine.yaml>",
		Short: "Run a routine file",
		Long:  "Execute the steps of a YAML routine in order, stopping at the first failure. Values saved with save_as are printed at the end.",
		Args:  cli.ExactArgs(1),
		RunE:  Run,
	}
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("check", false, "Only load and validate the routine.")
}

func Run(cmd *cli.Command, args []string) error {
	check, _ := cmd.Flags().GetBool("check")

	r, err := routine.Load(args[0])
	if err != nil {
		return err
	}
	if check {
		printf(cmd, "routine %q is valid: %d steps\n", r.Name, len(r.Steps))
		return nil
	}

	d, err := app.Dispatcher()
	if err != nil {
		return err
	}
	runner := routine.NewRunner(d,
		routine.WithDefaults(app.cfg.Threshold, fullScreen()),
		routine.WithLogger(app.logger),
	)

	name := r.Name
	if name == "" {
		name = filepath.Base(args[0])
	}
	s := app.Spinner(fmt.Sprintf("Running %s", name))
	out, err := runner.Run(r)
	s.Stop()

	printOutputs(cmd, out)
	if err != nil {
		app.Notify(fmt.Sprintf("Routine %s failed", name))
		return err
	}
	app.Notify(fmt.Sprintf("Routine %s is complete", name))
	return nil
}

func printOutputs(cmd *cli.Command, out map[string]string) {
	keys := make([]string, 0, len(out))
	for k := range out {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		printf(cmd, "%s: %s\n", k, out[k])
	}
}
