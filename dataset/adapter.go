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
	"bufio"
	"os"
	"strings"

	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/zhenghaoz/fairrec/base/log"
	"github.com/zhenghaoz/fairrec/common/util"
	"go.uber.org/zap"
)

var (
	// ErrSchemaMismatch is returned when an input file lacks required columns.
	ErrSchemaMismatch = errors.New("input misses required columns")
	// ErrJoinGap is returned when no predicted pair matches the ground truth.
	ErrJoinGap = errors.New("no predicted pair matches the ground truth")
)

// RawPrediction is one row of raw model output before it is joined with the
// ground truth.
type RawPrediction struct {
	UserId     string
	ItemId     string
	Prediction float64
	Rating     float64
	HasRating  bool
}

// Ratings is a ground-truth rating table keyed by (user, item).
type Ratings map[lo.Tuple2[string, string]]float64

// Adapt joins raw model output with the ground truth into the canonical table.
// Predicted pairs without a ground-truth entry are dropped; the drop count is
// returned so that metric denominators stay observable. Rows that carry their
// own true rating join against themselves when truth is nil.
func Adapt(predictions []RawPrediction, truth Ratings) (*DataTable, int, error) {
	table := NewDataTable()
	dropped := 0
	for _, p := range predictions {
		rating, found := p.Rating, p.HasRating
		if truth != nil {
			rating, found = truth[lo.T2(p.UserId, p.ItemId)]
		}
		if !found {
			dropped++
			continue
		}
		table.Append(Interaction{
			UserId:     p.UserId,
			ItemId:     p.ItemId,
			Rating:     rating,
			Prediction: p.Prediction,
		})
	}
	if table.Len() == 0 && len(predictions) > 0 {
		return nil, dropped, errors.Trace(ErrJoinGap)
	}
	if dropped > 0 {
		log.Logger().Warn("dropped predictions without ground truth",
			zap.Int("n_dropped", dropped),
			zap.Int("n_joined", table.Len()))
	}
	return table, dropped, nil
}

// LoadPredictionsFromCSV loads raw model output. The format string assigns a
// meaning to each column:
//
//	u - user id
//	i - item id
//	p - predicted rating
//	r - true rating
//	_ - ignored
//
// A format without 'r' requires a separate ground-truth table at adaption.
func LoadPredictionsFromCSV(path, sep string, hasHeader bool, format string) ([]RawPrediction, error) {
	for _, c := range []rune{'u', 'i', 'p'} {
		if !strings.ContainsRune(format, c) {
			return nil, errors.Annotatef(ErrSchemaMismatch, "prediction format %q misses column %q", format, c)
		}
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	var predictions []RawPrediction
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if hasHeader {
			hasHeader = false
			continue
		}
		if text == "" {
			continue
		}
		fields := strings.Split(text, sep)
		if len(fields) < len(format) {
			return nil, errors.Annotatef(ErrSchemaMismatch,
				"%s:%d has %d columns, format %q needs %d", path, line, len(fields), format, len(format))
		}
		var p RawPrediction
		for i, c := range format {
			switch c {
			case 'u':
				p.UserId = fields[i]
			case 'i':
				p.ItemId = fields[i]
			case 'p':
				if p.Prediction, err = util.ParseFloat[float64](fields[i]); err != nil {
					return nil, errors.Annotatef(err, "%s:%d malformed prediction", path, line)
				}
			case 'r':
				if p.Rating, err = util.ParseFloat[float64](fields[i]); err != nil {
					return nil, errors.Annotatef(err, "%s:%d malformed rating", path, line)
				}
				p.HasRating = true
			case '_':
			default:
				return nil, errors.NotValidf("prediction format %q", format)
			}
		}
		predictions = append(predictions, p)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load prediction table",
		zap.String("path", path),
		zap.Int("n_predictions", len(predictions)))
	return predictions, nil
}

// LoadRatingsFromCSV loads a ground-truth rating table. The format string uses
// 'u', 'i', 'r' and '_' columns. MovieLens 100K `u.data` is "uir_".
func LoadRatingsFromCSV(path, sep string, hasHeader bool, format string) (Ratings, error) {
	for _, c := range []rune{'u', 'i', 'r'} {
		if !strings.ContainsRune(format, c) {
			return nil, errors.Annotatef(ErrSchemaMismatch, "rating format %q misses column %q", format, c)
		}
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	ratings := make(Ratings)
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if hasHeader {
			hasHeader = false
			continue
		}
		if text == "" {
			continue
		}
		fields := strings.Split(text, sep)
		if len(fields) < len(format) {
			return nil, errors.Annotatef(ErrSchemaMismatch,
				"%s:%d has %d columns, format %q needs %d", path, line, len(fields), format, len(format))
		}
		var userId, itemId string
		var rating float64
		for i, c := range format {
			switch c {
			case 'u':
				userId = fields[i]
			case 'i':
				itemId = fields[i]
			case 'r':
				if rating, err = util.ParseFloat[float64](fields[i]); err != nil {
					return nil, errors.Annotatef(err, "%s:%d malformed rating", path, line)
				}
			case '_':
			default:
				return nil, errors.NotValidf("rating format %q", format)
			}
		}
		ratings[lo.T2(userId, itemId)] = rating
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load rating table",
		zap.String("path", path),
		zap.Int("n_ratings", len(ratings)))
	return ratings, nil
}
