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

// Package metric computes fairness and accuracy metrics over a table of
// predicted ratings joined with ground truth, partitioned by the gender of
// each record's user.
package metric

import (
	"fmt"
	"strconv"

	"github.com/juju/errors"
	"github.com/zhenghaoz/fairrec/dataset"
)

var (
	// ErrEmptyInput is returned when a metric is undefined on an empty input.
	// The metric must never default to zero instead.
	ErrEmptyInput = errors.New("empty interaction set")
	// ErrInvalidNeighborhoodSize is returned before any computation starts
	// when k is outside [1, n-1].
	ErrInvalidNeighborhoodSize = errors.New("neighborhood size must be in [1, n-1]")
)

// Metric names as they appear in reports.
const (
	RMSEName              = "RMSE"
	MAEName               = "MAE"
	CounterfactualName    = "Counterfactual Difference"
	ConsistencyName       = "Consistency"
	LocalFairnessName     = "Local Fairness"
	StatisticalParityName = "Statistical Parity"
	RawlsianMaximinName   = "Rawlsian Maximin"
	DisparateImpactName   = "Disparate Impact"
	DemographicParityName = "Demographic Parity"
	CalibrationErrorName  = "Calibration Error"
)

// GroupRMSEName is the report name of a per-group RMSE row.
func GroupRMSEName(gender dataset.Gender) string {
	return fmt.Sprintf("%s(%s)", RMSEName, gender)
}

// Names lists all metrics in report order.
func Names() []string {
	names := []string{RMSEName}
	for _, gender := range dataset.Genders() {
		names = append(names, GroupRMSEName(gender))
	}
	return append(names,
		MAEName,
		CounterfactualName,
		ConsistencyName,
		LocalFairnessName,
		StatisticalParityName,
		RawlsianMaximinName,
		DisparateImpactName,
		DemographicParityName,
		CalibrationErrorName,
	)
}

// Value is a computed metric: either a scalar or the explicit "not applicable"
// sentinel. Not applicable is never coerced to zero.
type Value struct {
	value      float64
	applicable bool
}

func Scalar(v float64) Value {
	return Value{value: v, applicable: true}
}

func NotApplicable() Value {
	return Value{}
}

func (v Value) Applicable() bool {
	return v.applicable
}

// Scalar returns the metric value. Only meaningful when the value is applicable.
func (v Value) Scalar() float64 {
	return v.value
}

func (v Value) String() string {
	if !v.applicable {
		return "N/A"
	}
	return strconv.FormatFloat(v.value, 'f', 4, 64)
}
