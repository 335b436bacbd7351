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

	"github.com/juju/errors"
)

// Similarity measures how alike two sparse rating vectors are. Vectors map a
// key on the opposite axis (item id for users, user id for items) to a rating.
type Similarity func(a, b map[string]float64) float64

// NewSimilarity resolves a similarity by its configuration name.
func NewSimilarity(name string) (Similarity, error) {
	switch name {
	case "cosine":
		return Cosine, nil
	case "pearson":
		return Pearson, nil
	case "msd":
		return MSD, nil
	default:
		return nil, errors.NotValidf("similarity %q", name)
	}
}

// Cosine computes the cosine similarity between a pair of users (or items)
// over their shared keys. Pairs without shared keys score zero.
func Cosine(a, b map[string]float64) float64 {
	m, n, l := .0, .0, .0
	for key, ratingA := range a {
		if ratingB, shared := b[key]; shared {
			m += ratingA * ratingA
			n += ratingB * ratingB
			l += ratingA * ratingB
		}
	}
	if m == 0 || n == 0 {
		return 0
	}
	return l / (math.Sqrt(m) * math.Sqrt(n))
}

// MSD computes the Mean Squared Difference similarity between a pair of users
// (or items) over their shared keys.
func MSD(a, b map[string]float64) float64 {
	count, sum := .0, .0
	for key, ratingA := range a {
		if ratingB, shared := b[key]; shared {
			sum += (ratingA - ratingB) * (ratingA - ratingB)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return 1.0 / (sum/count + 1)
}

// Pearson computes the Pearson correlation coefficient between a pair of users
// (or items): cosine over shared keys after centering each vector by its own
// mean.
func Pearson(a, b map[string]float64) float64 {
	meanA := mean(a)
	meanB := mean(b)
	m, n, l := .0, .0, .0
	for key, ratingA := range a {
		if ratingB, shared := b[key]; shared {
			centeredA := ratingA - meanA
			centeredB := ratingB - meanB
			m += centeredA * centeredA
			n += centeredB * centeredB
			l += centeredA * centeredB
		}
	}
	if m == 0 || n == 0 {
		return 0
	}
	return l / (math.Sqrt(m) * math.Sqrt(n))
}

func mean(a map[string]float64) float64 {
	if len(a) == 0 {
		return 0
	}
	sum := 0.0
	for _, rating := range a {
		sum += rating
	}
	return sum / float64(len(a))
}
