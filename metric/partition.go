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
	"github.com/zhenghaoz/fairrec/dataset"
)

// Partition splits a table into disjoint views by the gender of each record's
// user. Every record lands in exactly one group; users absent from the
// demographic table land in the unknown group. Group sizes always sum to the
// input size.
func Partition(table dataset.Table, demographics *dataset.Demographics) map[dataset.Gender]dataset.Table {
	indices := make(map[dataset.Gender][]int)
	table.ForEach(func(i int, record dataset.Interaction) {
		gender := demographics.GenderOf(record.UserId)
		indices[gender] = append(indices[gender], i)
	})
	partition := make(map[dataset.Gender]dataset.Table, len(indices))
	for gender, index := range indices {
		partition[gender] = table.SubSet(index)
	}
	return partition
}
