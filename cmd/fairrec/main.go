// Copyright 2025 fairrec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/spf13/cobra"
	"github.com/zhenghaoz/fairrec/base/log"
	"github.com/zhenghaoz/fairrec/cmd/version"
	"github.com/zhenghaoz/fairrec/config"
	"github.com/zhenghaoz/fairrec/dataset"
	"github.com/zhenghaoz/fairrec/metric"
	"github.com/zhenghaoz/fairrec/report"
	"go.uber.org/zap"
)

var fairrecCommand = &cobra.Command{
	Use:   "fairrec",
	Short: "Fairness metrics for collaborative filtering recommenders.",
	Run: func(cmd *cobra.Command, args []string) {
		// Show version
		if showVersion, _ := cmd.PersistentFlags().GetBool("version"); showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		// setup logger
		debug, _ := cmd.PersistentFlags().GetBool("debug")
		log.SetLogger(cmd.PersistentFlags(), debug)

		// Load config
		configPath, _ := cmd.PersistentFlags().GetString("config")
		log.Logger().Info("load config", zap.String("config", configPath))
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		if err = conf.Validate(); err != nil {
			log.Logger().Fatal("invalid config", zap.Error(err))
		}
		opts, err := conf.EvaluateOptions()
		if err != nil {
			log.Logger().Fatal("invalid config", zap.Error(err))
		}

		// Evaluate runs. A broken input aborts only its own run.
		aggregator := report.NewAggregator()
		for _, run := range conf.Runs {
			result, err := evaluateRun(cmd.Context(), run, opts)
			if err != nil {
				log.Logger().Error("failed to evaluate run",
					zap.String("run", run.Name), zap.Error(err))
				continue
			}
			aggregator.Add(result)
		}
		aggregator.Render(os.Stdout)

		// Write CSV
		if output, _ := cmd.PersistentFlags().GetString("output"); output != "" {
			file, err := os.Create(output)
			if err != nil {
				log.Logger().Fatal("failed to create output file", zap.Error(err))
			}
			defer file.Close()
			if err = aggregator.WriteCSV(file); err != nil {
				log.Logger().Fatal("failed to write output file", zap.Error(err))
			}
			log.Logger().Info("write report", zap.String("output", output))
		}
	},
}

func init() {
	log.AddFlags(fairrecCommand.PersistentFlags())
	fairrecCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	fairrecCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	fairrecCommand.PersistentFlags().StringP("output", "o", "", "write the report as CSV to a file")
	fairrecCommand.PersistentFlags().BoolP("version", "v", false, "fairrec version")
}

// evaluateRun loads one run's files and computes the metric battery.
func evaluateRun(ctx context.Context, run config.RunConfig, opts metric.Options) (report.Run, error) {
	predictions, err := dataset.LoadPredictionsFromCSV(run.Predictions, run.Sep, run.Header, run.Format)
	if err != nil {
		return report.Run{}, errors.Trace(err)
	}
	var truth dataset.Ratings
	var demographics *dataset.Demographics
	if run.Dataset != "" {
		truth, demographics, err = dataset.LoadDataFromBuiltIn(run.Dataset)
		if err != nil {
			return report.Run{}, errors.Trace(err)
		}
	} else {
		if run.Ratings != "" {
			truth, err = dataset.LoadRatingsFromCSV(run.Ratings, run.Sep, run.Header, run.RatingsFormat)
			if err != nil {
				return report.Run{}, errors.Trace(err)
			}
		}
		demographics, err = dataset.LoadDemographicsFromCSV(run.Demographics, run.DemographicsSep, run.DemographicsHeader, run.DemographicsFmt)
		if err != nil {
			return report.Run{}, errors.Trace(err)
		}
	}
	table, dropped, err := dataset.Adapt(predictions, truth)
	if err != nil {
		return report.Run{}, errors.Trace(err)
	}
	// Static prediction files cannot be re-scored under a perturbed
	// attribute, so the counterfactual difference reports N/A here.
	result, err := metric.Evaluate(ctx, table, demographics, nil, opts)
	if err != nil {
		return report.Run{}, errors.Trace(err)
	}
	return report.Run{
		Model:      run.Name,
		Dataset:    datasetName(run),
		Metrics:    result,
		Records:    table.Len(),
		Dropped:    dropped,
		SampleSize: opts.SampleSize,
	}, nil
}

func datasetName(run config.RunConfig) string {
	if run.Dataset != "" {
		return run.Dataset
	}
	if run.Ratings != "" {
		return filepath.Base(run.Ratings)
	}
	return filepath.Base(run.Predictions)
}

func main() {
	if err := fairrecCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
