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
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestUnmarshal(t *testing.T) {
	config, err := LoadConfig("config.toml.template")
	assert.NoError(t, err)
	// [evaluate]
	assert.Equal(t, "gender", config.Evaluate.SensitiveAttribute)
	assert.Equal(t, 3.5, config.Evaluate.PositiveThreshold)
	assert.Equal(t, 25, config.Evaluate.NeighborhoodSize)
	assert.Equal(t, 10, config.Evaluate.CalibrationBuckets)
	assert.Equal(t, 0, config.Evaluate.SampleSize)
	assert.Equal(t, 1, config.Evaluate.MinGroupSupport)
	assert.Equal(t, "cosine", config.Evaluate.Similarity)
	assert.Equal(t, 0, config.Evaluate.Jobs)
	// [scale]
	assert.Equal(t, 1.0, config.Scale.Min)
	assert.Equal(t, 5.0, config.Scale.Max)
	// [[runs]]
	assert.Len(t, config.Runs, 2)
	assert.Equal(t, "SVD", config.Runs[0].Name)
	assert.Equal(t, "ml-100k", config.Runs[0].Dataset)
	assert.Equal(t, "predictions/svd.tsv", config.Runs[0].Predictions)
	assert.Equal(t, "\t", config.Runs[0].Sep)
	assert.Equal(t, "uip", config.Runs[0].Format)
	assert.Equal(t, "ItemKNN", config.Runs[1].Name)
	assert.Equal(t, "uipr", config.Runs[1].Format)
	assert.Equal(t, ",", config.Runs[1].Sep)
	assert.True(t, config.Runs[1].Header)
	assert.Equal(t, "data/users.csv", config.Runs[1].Demographics)
	assert.Equal(t, ",", config.Runs[1].DemographicsSep)
	assert.Equal(t, "ug", config.Runs[1].DemographicsFmt)
	assert.True(t, config.Runs[1].DemographicsHeader)
	// a headered prediction file may pair with a headerless demographic file
	assert.True(t, config.Runs[1].Header)
	assert.False(t, config.Runs[0].DemographicsHeader)
	assert.NoError(t, config.Validate())
}

func TestSetDefault(t *testing.T) {
	setDefault()
	viper.SetConfigType("toml")
	err := viper.ReadConfig(strings.NewReader(""))
	assert.NoError(t, err)
	var config Config
	err = viper.Unmarshal(&config)
	assert.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), &config)
}

func TestEvaluateOptions(t *testing.T) {
	config := GetDefaultConfig()
	opts, err := config.EvaluateOptions()
	assert.NoError(t, err)
	assert.Equal(t, 3.5, opts.PositiveThreshold)
	assert.Equal(t, 25, opts.NeighborhoodSize)
	assert.Equal(t, 10, opts.CalibrationBuckets)
	assert.Equal(t, 1.0, opts.ScaleMin)
	assert.Equal(t, 5.0, opts.ScaleMax)
	assert.NotNil(t, opts.Similarity)

	config.Evaluate.Similarity = "euclidean"
	_, err = config.EvaluateOptions()
	assert.Error(t, err)
}
