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

package dataset

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Interaction is one prediction joined with its ground truth. Immutable once adapted.
type Interaction struct {
	UserId     string
	ItemId     string
	Rating     float64
	Prediction float64
}

// Table is a read-only view over a set of interactions.
type Table interface {
	Len() int
	Get(i int) Interaction
	ForEach(f func(i int, record Interaction))
	SubSet(indices []int) Table
}

// DataTable is the canonical slice-backed interaction table.
type DataTable struct {
	records []Interaction
}

func NewDataTable(records ...Interaction) *DataTable {
	return &DataTable{records: records}
}

func (table *DataTable) Append(record Interaction) {
	table.records = append(table.records, record)
}

func (table *DataTable) Len() int {
	return len(table.records)
}

func (table *DataTable) Get(i int) Interaction {
	return table.records[i]
}

func (table *DataTable) ForEach(f func(i int, record Interaction)) {
	for i, record := range table.records {
		f(i, record)
	}
}

// SubSet returns a view backed by the same records.
func (table *DataTable) SubSet(indices []int) Table {
	return &VirtualTable{data: table, index: indices}
}

// VirtualTable is a virtual subset of a DataTable.
type VirtualTable struct {
	data  *DataTable
	index []int
}

func (table *VirtualTable) Len() int {
	return len(table.index)
}

func (table *VirtualTable) Get(i int) Interaction {
	return table.data.Get(table.index[i])
}

func (table *VirtualTable) ForEach(f func(i int, record Interaction)) {
	for i := range table.index {
		f(i, table.Get(i))
	}
}

func (table *VirtualTable) SubSet(indices []int) Table {
	rawIndices := make([]int, len(indices))
	for i, index := range indices {
		rawIndices[i] = table.index[index]
	}
	return &VirtualTable{data: table.data, index: rawIndices}
}

// RatingValues collects the true ratings of a table.
func RatingValues(table Table) []float64 {
	a := make([]float64, 0, table.Len())
	table.ForEach(func(i int, record Interaction) {
		a = append(a, record.Rating)
	})
	return a
}

// PredictionValues collects the predicted ratings of a table.
func PredictionValues(table Table) []float64 {
	a := make([]float64, 0, table.Len())
	table.ForEach(func(i int, record Interaction) {
		a = append(a, record.Prediction)
	})
	return a
}

func Mean(table Table) float64 {
	return stat.Mean(RatingValues(table), nil)
}

func StdDev(table Table) float64 {
	return stat.StdDev(RatingValues(table), nil)
}

func Min(table Table) float64 {
	return floats.Min(RatingValues(table))
}

func Max(table Table) float64 {
	return floats.Max(RatingValues(table))
}
