package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ibl/pkg/dataio"
)

func showOptionsCommand() *cobra.Command {
	var modelFile string

	cmd := &cobra.Command{
		Use:   "show-options -m modelFile",
		Short: "Prints a saved model's option settings",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(modelFile)
			if err != nil {
				return err
			}
			defer f.Close()
			c, err := dataio.LoadModel(f)
			if err != nil {
				return err
			}
			fmt.Print(c.Options.Show())
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "path to a saved model")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}
