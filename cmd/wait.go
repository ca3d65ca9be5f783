// Wait until a template shows up on screen.

package main

import (
	"fmt"
	"path/filepath"

	cli "github.com/spf13/cobra"

	"gitlab.com/web-doodle/mavis/pkg/poll"
)

var (
	waitCmd = &cli.Command{
		Use:   "wait",
		Short: "Wait for a template to appear",
		Long:  "Re-capture the search area until the template is found or the timeout passes.",
		RunE:  Wait,
	}
)

func init() {
	rootCmd.AddCommand(waitCmd)
	addTargetFlags(waitCmd)

	waitCmd.Flags().Duration("timeout", 0, "Give up after this long. Defaults to MAVIS_MAX_WAIT.")
	waitCmd.Flags().Int("fps", 0, "Captures per second. Defaults to MAVIS_TICKS_PER_SECOND.")
	waitCmd.Flags().String("pacing", "", "Tick pacing: busy-yield or sleep.")
}

func Wait(cmd *cli.Command, args []string) error {
	opts, err := pollFlags(cmd)
	if err != nil {
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

	s := app.Spinner(fmt.Sprintf("Waiting for %s", filepath.Base(target.Path)))
	m, err := d.WaitForTarget(target.Template, target.Area, target.Threshold, opts...)
	s.Stop()
	if err != nil {
		app.Notify(fmt.Sprintf("%s did not appear: %v", filepath.Base(target.Path), err))
		return err
	}
	app.Notify(fmt.Sprintf("%s appeared", filepath.Base(target.Path)))
	printf(cmd, "%s center %s score %.3f\n", m.Region, m.Region.Center(), m.Score)
	return nil
}

// pollFlags turns --timeout, --fps and --pacing into poller overrides.
func pollFlags(cmd *cli.Command) ([]poll.Option, error) {
	var opts []poll.Option
	flags := cmd.Flags()
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		if timeout < 0 {
			return nil, fmt.Errorf("timeout must not be negative, got %s", timeout)
		}
		opts = append(opts, poll.WithMaxWait(timeout))
	}
	if flags.Changed("fps") {
		fps, _ := flags.GetInt("fps")
		if fps <= 0 {
			return nil, fmt.Errorf("fps must be positive, got %d", fps)
		}
		opts = append(opts, poll.WithTicksPerSecond(fps))
	}
	if flags.Changed("pacing") {
		value, _ := flags.GetString("pacing")
		pacing, ok := poll.ParsePacing(value)
		if !ok {
			return nil, fmt.Errorf("unknown pacing %q", value)
		}
		opts = append(opts, poll.WithPacing(pacing))
	}
	return opts, nil
}
