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
	"github.com/zhenghaoz/fairrec/dataset"
)

// RMSE is root mean square error.
func RMSE(table dataset.Table) (float64, error) {
	if table.Len() == 0 {
		return 0, errors.Trace(ErrEmptyInput)
	}
	sum := 0.0
	table.ForEach(func(i int, record dataset.Interaction) {
		sum += (record.Prediction - record.Rating) * (record.Prediction - record.Rating)
	})
	return math.Sqrt(sum / float64(table.Len())), nil
}

// MAE is mean absolute error.
func MAE(table dataset.Table) (float64, error) {
	if table.Len() == 0 {
		return 0, errors.Trace(ErrEmptyInput)
	}
	sum := 0.0
	table.ForEach(func(i int, record dataset.Interaction) {
		sum += math.Abs(record.Prediction - record.Rating)
	})
	return sum / float64(table.Len()), nil
}

// RMSEByGroup applies RMSE to each group independently. Groups with fewer than
// minSupport records report not applicable rather than a noisy value.
func RMSEByGroup(partition map[dataset.Gender]dataset.Table, minSupport int) map[dataset.Gender]Value {
	result := make(map[dataset.Gender]Value)
	for _, gender := range dataset.Genders() {
		group, exist := partition[gender]
		if !exist || group.Len() < minSupport {
			result[gender] = NotApplicable()
			continue
		}
		rmse, err := RMSE(group)
		if err != nil {
			result[gender] = NotApplicable()
			continue
		}
		result[gender] = Scalar(rmse)
	}
	return result
}
