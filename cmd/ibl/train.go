package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"ibl/pkg/dataio"
	"ibl/pkg/eval"
	"ibl/pkg/ibl"
	"ibl/pkg/metric"
)

func trainCommand() *cobra.Command {
	var trainFile, testFile, outputFile, targetColumn string
	var numericColumns []string
	var k int
	var weightType, decayType, defaultMetric, numericMetric string
	var alpha, beta float64
	var namedForm bool

	cmd := &cobra.Command{
		Use:   "train -i trainFile -o outputFile -t targetColumn",
		Short: "Trains a memory-based classifier on CSV data and saves the resulting model",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := ibl.New()
			c.Options.Set("K", fmt.Sprint(k))
			c.Options.Set("WeightType", weightType)
			c.Options.Set("DecayType", decayType)
			c.Options.Set("Alpha", fmt.Sprint(alpha))
			c.Options.Set("Beta", fmt.Sprint(beta))

			params := dataio.DataParameters{
				DataFile:       trainFile,
				TargetColumn:   targetColumn,
				NumericColumns: dataio.NewSet(numericColumns...),
				DefaultMetric:  metricFromFlag(defaultMetric),
				NumericMetric:  metricFromFlag(numericMetric),
			}
			dataErrors, err := dataio.LoadData(params, c)
			if err != nil {
				return err
			}
			for _, de := range dataErrors {
				log.Warn().Int("line", de.Line).Str("error", de.Error).Msg("skipped malformed training row")
			}

			if err := c.Train(); err != nil {
				return err
			}

			out, err := os.Create(outputFile)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := dataio.SaveModel(c, out, namedForm); err != nil {
				return err
			}

			if testFile != "" {
				return runEvaluation(c, testFile, params)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&trainFile, "train-file", "i", "", "CSV file of training data")
	cmd.Flags().StringVarP(&testFile, "test-file", "", "", "optional CSV test file to evaluate after training")
	cmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "path to write the trained model")
	cmd.Flags().StringVarP(&targetColumn, "target-column", "t", "", "name of the CSV column holding the class label")
	cmd.Flags().StringSliceVarP(&numericColumns, "numeric-columns", "n", nil, "CSV columns to treat as numeric features")
	cmd.Flags().IntVarP(&k, "k", "k", 1, "number of nearest neighbors")
	cmd.Flags().StringVarP(&weightType, "weight-type", "w", "GainRatio", "feature weighting: Uniform, GainRatio, InfoGain, ChiSquare or SharedVariance")
	cmd.Flags().StringVarP(&decayType, "decay-type", "d", "Zero", "vote decay: Zero, InvDist, InvLinear or ExpDecay")
	cmd.Flags().StringVarP(&defaultMetric, "metric", "", "Overlap", "default symbolic-feature metric")
	cmd.Flags().StringVarP(&numericMetric, "numeric-metric", "", "Numeric", "metric applied to numeric-columns features")
	cmd.Flags().Float64VarP(&alpha, "alpha", "", 1.0, "ExpDecay alpha")
	cmd.Flags().Float64VarP(&beta, "beta", "", 1.0, "ExpDecay beta")
	cmd.Flags().BoolVarP(&namedForm, "named", "", false, "save the model in the plain-name form instead of the hashed form")

	_ = cmd.MarkFlagRequired("train-file")
	_ = cmd.MarkFlagRequired("output-file")
	_ = cmd.MarkFlagRequired("target-column")

	return cmd
}

func metricFromFlag(name string) metric.Type {
	switch name {
	case "Overlap":
		return metric.Overlap
	case "ValueDifference":
		return metric.ValueDifference
	case "Numeric":
		return metric.Numeric
	case "Cosine":
		return metric.Cosine
	case "DotProduct":
		return metric.DotProduct
	case "Jeffrey":
		return metric.Jeffrey
	case "JensenShannon":
		return metric.JensenShannon
	case "Dice":
		return metric.Dice
	case "Levenshtein":
		return metric.Levenshtein
	default:
		return metric.Overlap
	}
}

func runEvaluation(c *ibl.Classifier, testFile string, trainParams dataio.DataParameters) error {
	evalClassifier := ibl.New()
	params := trainParams
	params.DataFile = testFile
	dataErrors, err := dataio.LoadData(params, evalClassifier)
	if err != nil {
		return err
	}
	for _, de := range dataErrors {
		log.Warn().Int("line", de.Line).Str("error", de.Error).Msg("skipped malformed test row")
	}

	evaluator := eval.New()
	for _, inst := range evalClassifier.Instances() {
		values := make([]string, inst.Width())
		for i := 0; i < inst.Width(); i++ {
			v := inst.At(i)
			if v == nil {
				continue
			}
			if c.Features.Features[i].IsNumeric() {
				values[i] = fmt.Sprintf("%g", v.Numeric)
			} else {
				values[i] = evalClassifier.Features.Features[i].Name(v)
			}
		}
		query, err := c.BuildQuery(values)
		if err != nil {
			return err
		}
		result, err := c.Classify(query)
		if err != nil {
			return err
		}
		evaluator.Record(evalClassifier.Targets.Name(inst.Target), c.Targets.Name(result.Best))
	}

	log.Info().Msg("evaluation complete")
	fmt.Print(evaluator.Report())
	return nil
}
