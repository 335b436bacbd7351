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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	a := map[string]float64{"i1": 4, "i2": 5, "i3": 1}
	assert.InDelta(t, 1.0, Cosine(a, a), 1e-9)
	// proportional vectors over shared keys
	b := map[string]float64{"i1": 2, "i2": 2.5, "i3": 0.5}
	assert.InDelta(t, 1.0, Cosine(a, b), 1e-9)
	// no shared keys
	c := map[string]float64{"i9": 3}
	assert.Zero(t, Cosine(a, c))
}

func TestPearson(t *testing.T) {
	a := map[string]float64{"i1": 1, "i2": 2, "i3": 3}
	// perfect linear relation
	b := map[string]float64{"i1": 2, "i2": 4, "i3": 6}
	assert.InDelta(t, 1.0, Pearson(a, b), 1e-9)
	// perfect inverse relation
	c := map[string]float64{"i1": 3, "i2": 2, "i3": 1}
	assert.InDelta(t, -1.0, Pearson(a, c), 1e-9)
}

func TestMSD(t *testing.T) {
	a := map[string]float64{"i1": 4, "i2": 5}
	assert.InDelta(t, 1.0, MSD(a, a), 1e-9)
	b := map[string]float64{"i1": 3, "i2": 4}
	assert.InDelta(t, 0.5, MSD(a, b), 1e-9)
}

func TestNewSimilarity(t *testing.T) {
	for _, name := range []string{"cosine", "pearson", "msd"} {
		sim, err := NewSimilarity(name)
		assert.NoError(t, err)
		assert.NotNil(t, sim)
	}
	_, err := NewSimilarity("euclidean")
	assert.Error(t, err)
}
