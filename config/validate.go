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

package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/zhenghaoz/fairrec/dataset"
)

// Validate checks the configuration before any computation starts. A
// configuration error aborts the whole batch, never a single run.
func (config *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return errors.Trace(err)
	}
	if config.Scale.Min >= config.Scale.Max {
		return errors.NotValidf("rating scale [%v, %v]", config.Scale.Min, config.Scale.Max)
	}
	if config.Evaluate.PositiveThreshold < config.Scale.Min ||
		config.Evaluate.PositiveThreshold > config.Scale.Max {
		return errors.NotValidf("positive threshold %v outside the rating scale [%v, %v]",
			config.Evaluate.PositiveThreshold, config.Scale.Min, config.Scale.Max)
	}
	if len(config.Runs) == 0 {
		return errors.NotValidf("configuration without runs")
	}
	for _, run := range config.Runs {
		if err := run.validate(); err != nil {
			return errors.Annotatef(err, "run %s", run.Name)
		}
	}
	return nil
}

func (run *RunConfig) validate() error {
	if run.Dataset != "" {
		if !dataset.IsBuiltIn(run.Dataset) {
			return errors.NotFoundf("built-in dataset %s", run.Dataset)
		}
	} else if run.Demographics == "" {
		return errors.NotValidf("run without a built-in dataset or a demographic file")
	}
	return nil
}
