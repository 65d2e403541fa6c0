package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ibl/pkg/dataio"
	"ibl/pkg/ibl"
)

func classifyCommand() *cobra.Command {
	var modelFile, inputFile, outputFile string
	var skipHeader bool
	var cacheSize int64

	cmd := &cobra.Command{
		Use:   "classify -m modelFile -i inputFile [-o outputFile]",
		Short: "Classifies every row of a CSV file against a saved model",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelR, err := os.Open(modelFile)
			if err != nil {
				return err
			}
			defer modelR.Close()
			c, err := dataio.LoadModel(modelR)
			if err != nil {
				return err
			}

			var cache *ibl.PredictionCache
			if cacheSize > 0 {
				cache, err = ibl.NewPredictionCache(cacheSize)
				if err != nil {
					return err
				}
				defer cache.Close()
			}

			var in io.Reader = os.Stdin
			if inputFile != "" {
				f, err := os.Open(inputFile)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			var out io.Writer = os.Stdout
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			reader := csv.NewReader(in)
			if skipHeader {
				if _, err := reader.Read(); err != nil {
					return err
				}
			}
			writer := csv.NewWriter(out)
			defer writer.Flush()
			if err := writer.Write([]string{"prediction", "confidence", "tie"}); err != nil {
				return err
			}

			for {
				record, err := reader.Read()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				query, err := c.BuildQuery(record)
				if err != nil {
					return err
				}
				var result *ibl.Result
				if cache != nil {
					result, err = c.ClassifyCached(query, cache)
				} else {
					result, err = c.Classify(query)
				}
				if err != nil {
					return err
				}
				conf := 0.0
				if result.Best != nil {
					conf = result.Distribution.Confidence(result.Best)
				}
				name := ""
				if result.Best != nil {
					name = c.Targets.Name(result.Best)
				}
				if err := writer.Write([]string{name, fmt.Sprintf("%.6f", conf), fmt.Sprint(result.IsTie)}); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelFile, "model", "m", "", "path to a saved model")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "CSV file of feature columns to classify (defaults to stdin)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "destination for predictions (defaults to stdout)")
	cmd.Flags().BoolVarP(&skipHeader, "skip-header", "", false, "skip the first line of input as a header")
	cmd.Flags().Int64VarP(&cacheSize, "cache-size", "", 0, "memoize up to this many predictions by query hash (0 disables caching)")

	_ = cmd.MarkFlagRequired("model")

	return cmd
}
