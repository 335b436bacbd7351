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
	"math"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/zhenghaoz/fairrec/base/log"
	"github.com/zhenghaoz/fairrec/common/parallel"
	"github.com/zhenghaoz/fairrec/dataset"
	"go.uber.org/zap"
)

// Scorer predicts a rating for a (user, item) pair.
type Scorer interface {
	Predict(userId, itemId string) float64
}

// CounterfactualScorer additionally predicts under an explicitly supplied
// gender. Models that cannot re-score a perturbed attribute don't implement it
// and report not applicable instead.
type CounterfactualScorer interface {
	Scorer
	PredictWithGender(userId, itemId string, gender dataset.Gender) float64
}

// CounterfactualDifference is the mean absolute change of a model's
// predictions when each user's gender is hypothetically flipped. Users in the
// unknown group have no defined flip and are skipped; per-user item averages
// are averaged over evaluable users.
func CounterfactualDifference(table dataset.Table, demographics *dataset.Demographics, scorer Scorer) Value {
	cf, ok := scorer.(CounterfactualScorer)
	if !ok {
		return NotApplicable()
	}
	items := make(map[string][]string)
	table.ForEach(func(i int, record dataset.Interaction) {
		items[record.UserId] = append(items[record.UserId], record.ItemId)
	})
	sum, evaluable := 0.0, 0
	for userId, userItems := range items {
		flipped, ok := demographics.GenderOf(userId).Flip()
		if !ok {
			continue
		}
		diff := 0.0
		for _, itemId := range userItems {
			diff += math.Abs(cf.Predict(userId, itemId) - cf.PredictWithGender(userId, itemId, flipped))
		}
		sum += diff / float64(len(userItems))
		evaluable++
	}
	if evaluable == 0 {
		return NotApplicable()
	}
	log.Logger().Debug("computed counterfactual difference",
		zap.Int("n_evaluable_users", evaluable),
		zap.Int("n_users", len(items)))
	return Scalar(sum / float64(evaluable))
}

// Consistency is the mean absolute difference between a user's predictions and
// those of the k most similar users on shared items. Lower is more consistent.
func Consistency(ctx context.Context, table dataset.Table, k int, sim Similarity, sampleSize, nJobs int) (Value, error) {
	return neighborhoodDiff(ctx, userVectors(table), k, sim, sampleSize, nJobs)
}

// LocalFairness is the consistency search transposed to the item axis: similar
// items should receive similar predicted ratings from the same user.
func LocalFairness(ctx context.Context, table dataset.Table, k int, sim Similarity, sampleSize, nJobs int) (Value, error) {
	return neighborhoodDiff(ctx, itemVectors(table), k, sim, sampleSize, nJobs)
}

// vectors holds sparse rating and prediction vectors along one axis. The keys
// are sorted ascending so that neighbor ties and sampling are deterministic.
type vectors struct {
	keys    []string
	ratings map[string]map[string]float64
	preds   map[string]map[string]float64
	shared  map[string]mapset.Set[string]
}

func userVectors(table dataset.Table) *vectors {
	return newVectors(table, func(record dataset.Interaction) (string, string) {
		return record.UserId, record.ItemId
	})
}

func itemVectors(table dataset.Table) *vectors {
	return newVectors(table, func(record dataset.Interaction) (string, string) {
		return record.ItemId, record.UserId
	})
}

func newVectors(table dataset.Table, axis func(dataset.Interaction) (key, subKey string)) *vectors {
	v := &vectors{
		ratings: make(map[string]map[string]float64),
		preds:   make(map[string]map[string]float64),
		shared:  make(map[string]mapset.Set[string]),
	}
	table.ForEach(func(i int, record dataset.Interaction) {
		key, subKey := axis(record)
		if _, exist := v.ratings[key]; !exist {
			v.keys = append(v.keys, key)
			v.ratings[key] = make(map[string]float64)
			v.preds[key] = make(map[string]float64)
			v.shared[key] = mapset.NewThreadUnsafeSet[string]()
		}
		v.ratings[key][subKey] = record.Rating
		v.preds[key][subKey] = record.Prediction
		v.shared[key].Add(subKey)
	})
	sort.Strings(v.keys)
	return v
}

// neighborhoodDiff finds the k nearest neighbors of each sampled key by
// rating-vector similarity (ties broken by lowest key) and pools the absolute
// prediction differences on shared sub-keys. Keys whose neighborhood shares no
// predictions are skipped; if none remain the metric is not applicable.
func neighborhoodDiff(ctx context.Context, vecs *vectors, k int, sim Similarity, sampleSize, nJobs int) (Value, error) {
	n := len(vecs.keys)
	if k < 1 || k > n-1 {
		return Value{}, errors.Trace(ErrInvalidNeighborhoodSize)
	}
	sampled := vecs.keys
	if sampleSize > 0 && sampleSize < n {
		sampled = vecs.keys[:sampleSize]
	}
	scores := make([]float64, len(sampled))
	defined := make([]bool, len(sampled))
	err := parallel.Parallel(ctx, len(sampled), nJobs, func(workerId, jobId int) error {
		key := sampled[jobId]
		neighbors := nearestNeighbors(vecs, key, k, sim)
		sum, count := 0.0, 0
		for _, neighbor := range neighbors {
			for _, subKey := range vecs.shared[key].Intersect(vecs.shared[neighbor]).ToSlice() {
				sum += math.Abs(vecs.preds[key][subKey] - vecs.preds[neighbor][subKey])
				count++
			}
		}
		if count > 0 {
			scores[jobId] = sum / float64(count)
			defined[jobId] = true
		}
		return nil
	})
	if err != nil {
		return Value{}, errors.Trace(err)
	}
	sum, count := 0.0, 0
	for i, score := range scores {
		if defined[i] {
			sum += score
			count++
		}
	}
	if count == 0 {
		return NotApplicable(), nil
	}
	return Scalar(sum / float64(count)), nil
}

// nearestNeighbors ranks all other keys by similarity of true-rating vectors.
// Keys without shared ratings are not candidates.
func nearestNeighbors(vecs *vectors, key string, k int, sim Similarity) []string {
	type candidate struct {
		key        string
		similarity float64
	}
	candidates := make([]candidate, 0, len(vecs.keys)-1)
	for _, other := range vecs.keys {
		if other == key {
			continue
		}
		if vecs.shared[key].Intersect(vecs.shared[other]).Cardinality() == 0 {
			continue
		}
		candidates = append(candidates, candidate{
			key:        other,
			similarity: sim(vecs.ratings[key], vecs.ratings[other]),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].similarity != candidates[j].similarity {
			return candidates[i].similarity > candidates[j].similarity
		}
		return candidates[i].key < candidates[j].key
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	neighbors := make([]string, len(candidates))
	for i, c := range candidates {
		neighbors[i] = c.key
	}
	return neighbors
}
