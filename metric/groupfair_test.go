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
	"github.com/zhenghaoz/fairrec/dataset"
)

func groupFairTestPartition() map[dataset.Gender]dataset.Table {
	demographics := dataset.NewDemographics()
	demographics.Add(dataset.Profile{UserId: "u1", Gender: dataset.GenderMale})
	demographics.Add(dataset.Profile{UserId: "u2", Gender: dataset.GenderFemale})
	table := dataset.NewDataTable(
		dataset.Interaction{UserId: "u1", ItemId: "i1", Rating: 4, Prediction: 3.8},
		dataset.Interaction{UserId: "u2", ItemId: "i1", Rating: 2, Prediction: 2.5},
	)
	return Partition(table, demographics)
}

func TestStatisticalParity(t *testing.T) {
	// male rate 1, female rate 0
	value := StatisticalParity(groupFairTestPartition(), 3.0)
	assert.True(t, value.Applicable())
	assert.InDelta(t, 1.0, value.Scalar(), 1e-9)
	// a single group makes the gap undefined
	demographics := dataset.NewDemographics()
	demographics.Add(dataset.Profile{UserId: "u1", Gender: dataset.GenderMale})
	table := dataset.NewDataTable(
		dataset.Interaction{UserId: "u1", ItemId: "i1", Rating: 4, Prediction: 3.8},
	)
	assert.False(t, StatisticalParity(Partition(table, demographics), 3.0).Applicable())
}

func TestRawlsianMaximin(t *testing.T) {
	value := RawlsianMaximin(groupFairTestPartition(), 3.0)
	assert.True(t, value.Applicable())
	assert.Zero(t, value.Scalar())
	// a lower threshold lifts the worst-off group
	value = RawlsianMaximin(groupFairTestPartition(), 2.0)
	assert.InDelta(t, 1.0, value.Scalar(), 1e-9)
}

func TestDisparateImpact(t *testing.T) {
	// min/max = 0/1
	value := DisparateImpact(groupFairTestPartition(), 3.0)
	assert.True(t, value.Applicable())
	assert.Zero(t, value.Scalar())
	// equal rates give the ideal ratio
	value = DisparateImpact(groupFairTestPartition(), 2.0)
	assert.InDelta(t, 1.0, value.Scalar(), 1e-9)
	// all rates zero: the ratio is undefined, not zero
	assert.False(t, DisparateImpact(groupFairTestPartition(), 5.0).Applicable())
}

func TestDemographicParity(t *testing.T) {
	value := DemographicParity(groupFairTestPartition(), 3.0)
	assert.True(t, value.Applicable())
	assert.InDelta(t, 1.0, value.Scalar(), 1e-9)
	value = DemographicParity(groupFairTestPartition(), 2.0)
	assert.Zero(t, value.Scalar())
}

func TestCalibrationError(t *testing.T) {
	// perfectly calibrated: predictions equal ratings in every bucket
	table := dataset.NewDataTable(
		dataset.Interaction{UserId: "u1", ItemId: "i1", Rating: 1.5, Prediction: 1.5},
		dataset.Interaction{UserId: "u2", ItemId: "i1", Rating: 4.5, Prediction: 4.5},
	)
	value := CalibrationError(table, 5, 1, 5)
	assert.True(t, value.Applicable())
	assert.Zero(t, value.Scalar())

	// one bucket holds both records: |(1.5+4.5)/2 - (1+5)/2| = 0
	table = dataset.NewDataTable(
		dataset.Interaction{UserId: "u1", ItemId: "i1", Rating: 1, Prediction: 1.5},
		dataset.Interaction{UserId: "u2", ItemId: "i1", Rating: 5, Prediction: 4.5},
	)
	value = CalibrationError(table, 1, 1, 5)
	assert.Zero(t, value.Scalar())
	// with two buckets the errors no longer cancel
	value = CalibrationError(table, 2, 1, 5)
	assert.InDelta(t, 0.5, value.Scalar(), 1e-9)
}

func TestCalibrationErrorClamp(t *testing.T) {
	// out-of-scale predictions fall into the border buckets
	table := dataset.NewDataTable(
		dataset.Interaction{UserId: "u1", ItemId: "i1", Rating: 1, Prediction: 0.5},
		dataset.Interaction{UserId: "u2", ItemId: "i1", Rating: 5, Prediction: 5.5},
	)
	value := CalibrationError(table, 4, 1, 5)
	assert.True(t, value.Applicable())
	assert.InDelta(t, 0.5, value.Scalar(), 1e-9)
}

func TestCalibrationErrorNotApplicable(t *testing.T) {
	table := dataset.NewDataTable(
		dataset.Interaction{UserId: "u1", ItemId: "i1", Rating: 4, Prediction: 3.8},
	)
	assert.False(t, CalibrationError(dataset.NewDataTable(), 5, 1, 5).Applicable())
	assert.False(t, CalibrationError(table, 0, 1, 5).Applicable())
	assert.False(t, CalibrationError(table, 5, 5, 1).Applicable())
}
