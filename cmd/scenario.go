package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pintos-go/scenario"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Generate or inspect scenario files",
}

var scenarioInitCmd = &cobra.Command{
	Use:   "init [file]",
	Short: "Write the built-in default scenario to a file or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScenarioInit,
}

func init() {
	scenarioCmd.AddCommand(scenarioInitCmd)
	rootCmd.AddCommand(scenarioCmd)
}

func runScenarioInit(cmd *cobra.Command, args []string) error {
	scn := scenario.Default()
	if len(args) == 1 {
		return scn.Save(args[0])
	}
	data, err := json.MarshalIndent(scn, "", "  ")
	if err != nil {
		return fmt.Errorf("scenario init: %w", err)
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}
