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

// Package config loads and validates the evaluator configuration.
package config

import (
	"strings"

	"github.com/juju/errors"
	"github.com/spf13/viper"
	"github.com/zhenghaoz/fairrec/metric"
)

// Config is the root of the TOML configuration.
type Config struct {
	Evaluate EvaluateConfig `mapstructure:"evaluate"`
	Scale    ScaleConfig    `mapstructure:"scale"`
	Runs     []RunConfig    `mapstructure:"runs"`
}

// EvaluateConfig holds the metric parameters shared by all runs.
type EvaluateConfig struct {
	SensitiveAttribute string  `mapstructure:"sensitive_attribute" validate:"oneof=gender"`
	PositiveThreshold  float64 `mapstructure:"positive_threshold"`
	NeighborhoodSize   int     `mapstructure:"neighborhood_size" validate:"min=1"`
	CalibrationBuckets int     `mapstructure:"calibration_buckets" validate:"min=1"`
	SampleSize         int     `mapstructure:"sample_size" validate:"min=0"`
	MinGroupSupport    int     `mapstructure:"min_group_support" validate:"min=1"`
	Similarity         string  `mapstructure:"similarity" validate:"oneof=cosine pearson msd"`
	Jobs               int     `mapstructure:"jobs" validate:"min=0"`
}

// ScaleConfig is the rating scale shared by all runs.
type ScaleConfig struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// RunConfig describes one (model, dataset) evaluation. A run either names a
// built-in dataset, which supplies ratings and demographics, or points to
// CSV files on disk.
type RunConfig struct {
	Name               string `mapstructure:"name" validate:"required"`
	Dataset            string `mapstructure:"dataset"`
	Predictions        string `mapstructure:"predictions" validate:"required"`
	Format             string `mapstructure:"format"`
	Sep                string `mapstructure:"sep"`
	Header             bool   `mapstructure:"header"`
	Ratings            string `mapstructure:"ratings"`
	RatingsFormat      string `mapstructure:"ratings_format"`
	Demographics       string `mapstructure:"demographics"`
	DemographicsSep    string `mapstructure:"demographics_sep"`
	DemographicsFmt    string `mapstructure:"demographics_format"`
	DemographicsHeader bool   `mapstructure:"demographics_header"`
}

func setDefault() {
	// [evaluate]
	viper.SetDefault("evaluate.sensitive_attribute", "gender")
	viper.SetDefault("evaluate.positive_threshold", 3.5)
	viper.SetDefault("evaluate.neighborhood_size", 25)
	viper.SetDefault("evaluate.calibration_buckets", 10)
	viper.SetDefault("evaluate.sample_size", 0)
	viper.SetDefault("evaluate.min_group_support", 1)
	viper.SetDefault("evaluate.similarity", "cosine")
	viper.SetDefault("evaluate.jobs", 0)
	// [scale]
	viper.SetDefault("scale.min", 1)
	viper.SetDefault("scale.max", 5)
}

// GetDefaultConfig returns the default configuration without any run.
func GetDefaultConfig() *Config {
	return &Config{
		Evaluate: EvaluateConfig{
			SensitiveAttribute: "gender",
			PositiveThreshold:  3.5,
			NeighborhoodSize:   25,
			CalibrationBuckets: 10,
			SampleSize:         0,
			MinGroupSupport:    1,
			Similarity:         "cosine",
			Jobs:               0,
		},
		Scale: ScaleConfig{Min: 1, Max: 5},
	}
}

// fillDefault completes the per-run file settings viper defaults cannot reach.
func (config *Config) fillDefault() {
	for i := range config.Runs {
		run := &config.Runs[i]
		if run.Sep == "" {
			run.Sep = "\t"
		}
		if run.Format == "" {
			run.Format = "uip"
		}
		if run.RatingsFormat == "" {
			run.RatingsFormat = "uir"
		}
		if run.DemographicsSep == "" {
			run.DemographicsSep = "|"
		}
		if run.DemographicsFmt == "" {
			run.DemographicsFmt = "ug"
		}
	}
}

// LoadConfig loads the configuration from a TOML file and fills defaults.
// The result is not validated yet.
func LoadConfig(path string) (*Config, error) {
	setDefault()
	viper.SetConfigType("toml")
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return nil, errors.Trace(err)
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.Trace(err)
	}
	config.fillDefault()
	return &config, nil
}

// EvaluateOptions converts the configuration into metric options.
func (config *Config) EvaluateOptions() (metric.Options, error) {
	similarity, err := metric.NewSimilarity(strings.ToLower(config.Evaluate.Similarity))
	if err != nil {
		return metric.Options{}, errors.Trace(err)
	}
	return metric.Options{
		PositiveThreshold:  config.Evaluate.PositiveThreshold,
		NeighborhoodSize:   config.Evaluate.NeighborhoodSize,
		CalibrationBuckets: config.Evaluate.CalibrationBuckets,
		SampleSize:         config.Evaluate.SampleSize,
		MinGroupSupport:    config.Evaluate.MinGroupSupport,
		Similarity:         similarity,
		ScaleMin:           config.Scale.Min,
		ScaleMax:           config.Scale.Max,
		Jobs:               config.Evaluate.Jobs,
	}, nil
}
