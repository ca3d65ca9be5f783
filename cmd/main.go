/**
 * mavis -- find a picture on the screen and act on it.
 *
 * Every command captures (part of) the display, searches it for a template
 * image and then clicks, waits, types or reads text at the match.
 * Settings come from MAVIS_* environment variables or a .env file; flags
 * override them.
 */

package main

import (
	"log"

	cli "github.com/spf13/cobra"
)

var (
	// The Root Cli Handler
	rootCmd = &cli.Command{
		Use:               "mavis",
		Short:             "Find templates on screen and act on them",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
	}
	app = &App{}
)

func init() {
	addRootFlags(rootCmd)
}

func addRootFlags(cmd *cli.Command) {
	cmd.PersistentFlags().String("env-file", "", "Path to a .env file. Defaults to ./.env when present.")
	cmd.PersistentFlags().String("log-level", "", "Console log level: debug, info, warn or error.")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file, rotated by size.")
	cmd.PersistentFlags().String("capture", "", "Screen capture backend: robotgo or screenshot.")
	cmd.PersistentFlags().String("matcher", "", "Template correlator: ncc or opencv.")
	cmd.PersistentFlags().Bool("notify", false, "Show a desktop notification when a wait or routine finishes.")
	cmd.PersistentFlags().BoolP("debug", "d", false, "Run in debug mode. Will output matched templates to the tmp folder.")
}

func main() {
	// Run the program
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln("ERROR:", err)
	}
}
