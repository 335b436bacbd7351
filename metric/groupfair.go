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
	"math"

	"github.com/samber/lo"
	"github.com/zhenghaoz/fairrec/dataset"
)

// exposure counts positive recommendations (prediction >= threshold) in one group.
type exposure struct {
	positives int
	total     int
}

func (e exposure) rate() float64 {
	return float64(e.positives) / float64(e.total)
}

// exposures computes per-group exposure. Groups without records are excluded
// rather than treated as zero.
func exposures(partition map[dataset.Gender]dataset.Table, threshold float64) map[dataset.Gender]exposure {
	result := make(map[dataset.Gender]exposure)
	for gender, group := range partition {
		if group.Len() == 0 {
			continue
		}
		e := exposure{total: group.Len()}
		group.ForEach(func(i int, record dataset.Interaction) {
			if record.Prediction >= threshold {
				e.positives++
			}
		})
		result[gender] = e
	}
	return result
}

// StatisticalParity is the maximum pairwise gap of positive-recommendation
// rates across groups. Undefined with fewer than two groups.
func StatisticalParity(partition map[dataset.Gender]dataset.Table, threshold float64) Value {
	rates := lo.MapToSlice(exposures(partition, threshold), func(_ dataset.Gender, e exposure) float64 {
		return e.rate()
	})
	if len(rates) < 2 {
		return NotApplicable()
	}
	return Scalar(lo.Max(rates) - lo.Min(rates))
}

// RawlsianMaximin is the worst-off group's positive-recommendation rate.
// Higher is better.
func RawlsianMaximin(partition map[dataset.Gender]dataset.Table, threshold float64) Value {
	rates := lo.MapToSlice(exposures(partition, threshold), func(_ dataset.Gender, e exposure) float64 {
		return e.rate()
	})
	if len(rates) == 0 {
		return NotApplicable()
	}
	return Scalar(lo.Min(rates))
}

// DisparateImpact is the ratio of the lowest to the highest group
// positive-recommendation rate. Undefined when the highest rate is zero.
func DisparateImpact(partition map[dataset.Gender]dataset.Table, threshold float64) Value {
	rates := lo.MapToSlice(exposures(partition, threshold), func(_ dataset.Gender, e exposure) float64 {
		return e.rate()
	})
	if len(rates) < 2 {
		return NotApplicable()
	}
	max := lo.Max(rates)
	if max == 0 {
		return NotApplicable()
	}
	return Scalar(lo.Min(rates) / max)
}

// DemographicParity is the maximum pairwise gap of raw positive-recommendation
// counts across groups. It is reported separately from the rate-based
// statistical parity.
func DemographicParity(partition map[dataset.Gender]dataset.Table, threshold float64) Value {
	counts := lo.MapToSlice(exposures(partition, threshold), func(_ dataset.Gender, e exposure) float64 {
		return float64(e.positives)
	})
	if len(counts) < 2 {
		return NotApplicable()
	}
	return Scalar(lo.Max(counts) - lo.Min(counts))
}

// CalibrationError partitions predictions into equal-width buckets over the
// rating scale and averages |mean predicted - mean actual| weighted by bucket
// size. Empty buckets are excluded from the average, not treated as zero error.
func CalibrationError(table dataset.Table, buckets int, scaleMin, scaleMax float64) Value {
	if table.Len() == 0 || buckets < 1 || scaleMin >= scaleMax {
		return NotApplicable()
	}
	width := (scaleMax - scaleMin) / float64(buckets)
	sumPredicted := make([]float64, buckets)
	sumActual := make([]float64, buckets)
	counts := make([]int, buckets)
	table.ForEach(func(i int, record dataset.Interaction) {
		bucket := int((record.Prediction - scaleMin) / width)
		// clamp out-of-scale predictions into the border buckets
		bucket = lo.Clamp(bucket, 0, buckets-1)
		sumPredicted[bucket] += record.Prediction
		sumActual[bucket] += record.Rating
		counts[bucket]++
	})
	totalError, totalCount := 0.0, 0
	for b := 0; b < buckets; b++ {
		if counts[b] == 0 {
			continue
		}
		meanPredicted := sumPredicted[b] / float64(counts[b])
		meanActual := sumActual[b] / float64(counts[b])
		totalError += math.Abs(meanPredicted-meanActual) * float64(counts[b])
		totalCount += counts[b]
	}
	return Scalar(totalError / float64(totalCount))
}
