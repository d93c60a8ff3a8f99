package main

import (
	"github.com/spf13/cobra"

	"argsmat/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.js|directory]...",
	Short: "Report files that would be rewritten, without writing anything",
	Long: `Run the rewrite in memory and list every file that would change.
Exits with status 1 if any file would change or an error was reported.`,
	RunE: runCheck,
}

func init() {
	registerTransformFlags(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}
	opts := settings.driverOptions(cmd, driver.WriteNone)

	runs := make([]*driver.Run, 0, len(settings.targets))
	for _, target := range settings.targets {
		run, err := driver.Process(cmd.Context(), target, opts)
		if err != nil {
			return err
		}
		runs = append(runs, run)
	}
	return finish(cmd, settings, runs, true)
}
