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
	"github.com/zhenghaoz/fairrec/base/log"
	"github.com/zhenghaoz/fairrec/common/util"
	"go.uber.org/zap"
)

// Gender is the sensitive attribute. Users without demographic data are Unknown,
// never dropped.
type Gender uint8

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

// Genders lists all groups in report order.
func Genders() []Gender {
	return []Gender{GenderMale, GenderFemale, GenderUnknown}
}

func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return GenderMale
	case "f", "female":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

// Flip returns the counterfactual gender. There is no defined flip for Unknown.
func (g Gender) Flip() (Gender, bool) {
	switch g {
	case GenderMale:
		return GenderFemale, true
	case GenderFemale:
		return GenderMale, true
	default:
		return GenderUnknown, false
	}
}

// Profile is one row of the demographic table.
type Profile struct {
	UserId     string
	Gender     Gender
	Age        int
	Occupation string
}

// Demographics maps users to their profiles. Read-only during evaluation.
type Demographics struct {
	profiles map[string]Profile
}

func NewDemographics() *Demographics {
	return &Demographics{profiles: make(map[string]Profile)}
}

func (d *Demographics) Add(profile Profile) {
	d.profiles[profile.UserId] = profile
}

func (d *Demographics) Len() int {
	return len(d.profiles)
}

// GenderOf resolves a user to a group. Users absent from the table are Unknown.
func (d *Demographics) GenderOf(userId string) Gender {
	if d == nil {
		return GenderUnknown
	}
	return d.profiles[userId].Gender
}

// LoadDemographicsFromCSV loads a demographic table. The format string assigns a
// meaning to each column:
//
//	u - user id
//	g - gender
//	a - age
//	o - occupation
//	_ - ignored
//
// MovieLens 100K `u.user` (id|age|gender|occupation|zip) is "uago_".
func LoadDemographicsFromCSV(path, sep string, hasHeader bool, format string) (*Demographics, error) {
	if !strings.ContainsRune(format, 'u') || !strings.ContainsRune(format, 'g') {
		return nil, errors.Annotatef(ErrSchemaMismatch, "demographic format %q misses user or gender column", format)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer file.Close()
	demographics := NewDemographics()
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
		var profile Profile
		for i, c := range format {
			switch c {
			case 'u':
				profile.UserId = fields[i]
			case 'g':
				profile.Gender = ParseGender(fields[i])
			case 'a':
				age, err := util.ParseUInt[uint](fields[i])
				if err != nil {
					return nil, errors.Annotatef(err, "%s:%d malformed age", path, line)
				}
				profile.Age = int(age)
			case 'o':
				profile.Occupation = fields[i]
			case '_':
			default:
				return nil, errors.NotValidf("demographic format %q", format)
			}
		}
		if profile.UserId == "" {
			return nil, errors.Annotatef(ErrSchemaMismatch, "%s:%d has empty user id", path, line)
		}
		demographics.Add(profile)
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	log.Logger().Info("load demographic table",
		zap.String("path", path),
		zap.Int("n_users", demographics.Len()))
	return demographics, nil
}
