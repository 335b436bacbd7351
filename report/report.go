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

// Package report aggregates evaluation results into comparison tables.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/zhenghaoz/fairrec/metric"
)

// Run holds the evaluation result of one model on one dataset.
type Run struct {
	Model   string
	Dataset string
	Metrics map[string]metric.Value
	// Records is the number of joined records, Dropped the number of
	// prediction rows without a matching ground truth.
	Records int
	Dropped int
	// SampleSize is the neighborhood sampling size, zero for the full
	// population. Counterfactual records whether the scorer supported
	// attribute perturbation.
	SampleSize     int
	Counterfactual bool
}

// Aggregator collects runs and renders one metric-by-model grid per dataset.
type Aggregator struct {
	runs []Run
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

func (a *Aggregator) Add(run Run) {
	a.runs = append(a.runs, run)
}

// datasets lists dataset names in first-seen order.
func (a *Aggregator) datasets() []string {
	return lo.Uniq(lo.Map(a.runs, func(run Run, _ int) string {
		return run.Dataset
	}))
}

// metricNames lists the metrics present in at least one of the runs, known
// metrics first in report order, unknown metrics after them in lexical order.
func metricNames(runs []Run) []string {
	present := mapset.NewSet[string]()
	for _, run := range runs {
		for name := range run.Metrics {
			present.Add(name)
		}
	}
	names := lo.Filter(metric.Names(), func(name string, _ int) bool {
		return present.Contains(name)
	})
	extra := present.Difference(mapset.NewSet(metric.Names()...)).ToSlice()
	sort.Strings(extra)
	return append(names, extra...)
}

// Render writes one comparison table per dataset. A metric a run did not
// compute renders as an empty cell, a not applicable metric renders as N/A.
func (a *Aggregator) Render(w io.Writer) {
	for _, name := range a.datasets() {
		runs := lo.Filter(a.runs, func(run Run, _ int) bool {
			return run.Dataset == name
		})
		fmt.Fprintf(w, "Dataset: %s\n", name)
		table := tablewriter.NewWriter(w)
		header := []string{"Metric"}
		for _, run := range runs {
			header = append(header, run.Model)
		}
		table.SetHeader(header)
		for _, metricName := range metricNames(runs) {
			row := []string{metricName}
			for _, run := range runs {
				if value, ok := run.Metrics[metricName]; ok {
					row = append(row, value.String())
				} else {
					row = append(row, "")
				}
			}
			table.Append(row)
		}
		footer := []string{"Records"}
		for _, run := range runs {
			footer = append(footer, fmt.Sprintf("%d (-%d)", run.Records, run.Dropped))
		}
		table.SetFooter(footer)
		table.SetCaption(true, caption(runs))
		table.Render()
	}
}

func caption(runs []Run) string {
	samples := lo.Uniq(lo.Map(runs, func(run Run, _ int) string {
		if run.SampleSize > 0 {
			return fmt.Sprintf("sample size %d", run.SampleSize)
		}
		return "full population"
	}))
	counterfactual := "unsupported"
	if lo.SomeBy(runs, func(run Run) bool { return run.Counterfactual }) {
		counterfactual = "supported"
	}
	return fmt.Sprintf("neighborhood metrics: %s, counterfactual: %s.",
		strings.Join(samples, ", "), counterfactual)
}

// WriteCSV writes all runs in long form: dataset, model, metric, value.
func (a *Aggregator) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"dataset", "model", "metric", "value"}); err != nil {
		return errors.Trace(err)
	}
	for _, run := range a.runs {
		for _, name := range metricNames([]Run{run}) {
			if err := writer.Write([]string{run.Dataset, run.Model, name, run.Metrics[name].String()}); err != nil {
				return errors.Trace(err)
			}
		}
	}
	writer.Flush()
	return errors.Trace(writer.Error())
}
