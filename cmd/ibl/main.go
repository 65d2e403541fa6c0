// Command ibl is the memory-based classifier's CLI: train a model from
// CSV data, classify a test file against a saved model, or dump a
// model's option settings. Structured the way the teacher's golem.go
// lays out its cobra root and subcommands.
package main

import (
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{Use: "ibl", PersistentPreRunE: setupLogging}

	root.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Logging level: info, error or debug")
	root.PersistentFlags().StringVarP(&logFormat, "log-format", "", "pretty", "Logging format: pretty or json")

	root.AddCommand(trainCommand())
	root.AddCommand(classifyCommand())
	root.AddCommand(showOptionsCommand())

	if err := root.Execute(); err != nil {
		panic(err)
	}
}
