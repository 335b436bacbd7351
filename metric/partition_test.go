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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/zhenghaoz/fairrec/dataset"
)

func TestPartition(t *testing.T) {
	demographics := dataset.NewDemographics()
	demographics.Add(dataset.Profile{UserId: "u1", Gender: dataset.GenderMale})
	demographics.Add(dataset.Profile{UserId: "u2", Gender: dataset.GenderFemale})
	table := dataset.NewDataTable(
		dataset.Interaction{UserId: "u1", ItemId: "i1", Rating: 4, Prediction: 3.8},
		dataset.Interaction{UserId: "u2", ItemId: "i1", Rating: 2, Prediction: 2.5},
		dataset.Interaction{UserId: "u1", ItemId: "i2", Rating: 5, Prediction: 4.4},
		// u3 is absent from the demographic table
		dataset.Interaction{UserId: "u3", ItemId: "i1", Rating: 3, Prediction: 3.1},
	)
	partition := Partition(table, demographics)
	assert.Equal(t, 2, partition[dataset.GenderMale].Len())
	assert.Equal(t, 1, partition[dataset.GenderFemale].Len())
	assert.Equal(t, 1, partition[dataset.GenderUnknown].Len())
	// counts sum to the input count and no record is duplicated
	total := 0
	seen := mapset.NewSet[string]()
	for _, group := range partition {
		total += group.Len()
		group.ForEach(func(i int, record dataset.Interaction) {
			seen.Add(record.UserId + "/" + record.ItemId)
		})
	}
	assert.Equal(t, table.Len(), total)
	assert.Equal(t, table.Len(), seen.Cardinality())
}
