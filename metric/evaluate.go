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

package metric

import (
	"context"
	"runtime"
	"time"

	"github.com/juju/errors"
	"github.com/zhenghaoz/fairrec/base/log"
	"github.com/zhenghaoz/fairrec/dataset"
	"go.uber.org/zap"
)

// Options are the evaluation parameters. They are validated by the config
// layer before any computation starts.
type Options struct {
	PositiveThreshold  float64
	NeighborhoodSize   int
	CalibrationBuckets int
	SampleSize         int
	MinGroupSupport    int
	Similarity         Similarity
	ScaleMin           float64
	ScaleMax           float64
	Jobs               int
}

// Evaluate computes the whole metric battery for one prediction table. The
// scorer is optional: without a CounterfactualScorer the counterfactual
// difference reports not applicable. Undefined metrics resolve to not
// applicable; input errors abort the evaluation.
func Evaluate(ctx context.Context, table dataset.Table, demographics *dataset.Demographics,
	scorer Scorer, opts Options) (map[string]Value, error) {
	if table.Len() == 0 {
		return nil, errors.Trace(ErrEmptyInput)
	}
	// Thresholded metrics and calibration assume ratings stay on the
	// configured scale.
	if outsideScale(table, opts.ScaleMin, opts.ScaleMax) {
		log.Logger().Warn("ratings outside the configured scale",
			zap.Float64("rating_min", dataset.Min(table)),
			zap.Float64("rating_max", dataset.Max(table)),
			zap.Float64("scale_min", opts.ScaleMin),
			zap.Float64("scale_max", opts.ScaleMax))
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	start := time.Now()
	result := make(map[string]Value)
	partition := Partition(table, demographics)

	// accuracy
	rmse, err := RMSE(table)
	if err != nil {
		return nil, errors.Trace(err)
	}
	result[RMSEName] = Scalar(rmse)
	mae, err := MAE(table)
	if err != nil {
		return nil, errors.Trace(err)
	}
	result[MAEName] = Scalar(mae)
	for gender, value := range RMSEByGroup(partition, opts.MinGroupSupport) {
		result[GroupRMSEName(gender)] = value
	}

	// individual fairness
	result[CounterfactualName] = CounterfactualDifference(table, demographics, scorer)
	consistency, err := Consistency(ctx, table, opts.NeighborhoodSize, opts.Similarity, opts.SampleSize, jobs)
	if err != nil {
		return nil, errors.Trace(err)
	}
	result[ConsistencyName] = consistency
	localFairness, err := LocalFairness(ctx, table, opts.NeighborhoodSize, opts.Similarity, opts.SampleSize, jobs)
	if err != nil {
		return nil, errors.Trace(err)
	}
	result[LocalFairnessName] = localFairness

	// group fairness
	result[StatisticalParityName] = StatisticalParity(partition, opts.PositiveThreshold)
	result[RawlsianMaximinName] = RawlsianMaximin(partition, opts.PositiveThreshold)
	result[DisparateImpactName] = DisparateImpact(partition, opts.PositiveThreshold)
	result[DemographicParityName] = DemographicParity(partition, opts.PositiveThreshold)
	result[CalibrationErrorName] = CalibrationError(table, opts.CalibrationBuckets, opts.ScaleMin, opts.ScaleMax)

	log.Logger().Info("evaluation complete",
		zap.Int("n_records", table.Len()),
		zap.Int("n_groups", len(partition)),
		zap.Float64("rating_mean", dataset.Mean(table)),
		zap.Float64("rating_stddev", dataset.StdDev(table)),
		zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

// outsideScale reports whether any true rating escapes [scaleMin, scaleMax].
func outsideScale(table dataset.Table, scaleMin, scaleMax float64) bool {
	return dataset.Min(table) < scaleMin || dataset.Max(table) > scaleMax
}
