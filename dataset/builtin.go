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
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/zhenghaoz/fairrec/base/log"
	"go.uber.org/zap"
)

type builtInDataSet struct {
	url          string
	ratings      string
	ratingSep    string
	ratingFormat string
	users        string
	userSep      string
	userFormat   string
}

var builtInDataSets = map[string]builtInDataSet{
	"ml-100k": {
		url:          "https://files.grouplens.org/datasets/movielens/ml-100k.zip",
		ratings:      "ml-100k/u.data",
		ratingSep:    "\t",
		ratingFormat: "uir_",
		users:        "ml-100k/u.user",
		userSep:      "|",
		userFormat:   "uago_",
	},
}

var (
	tempDir    string
	datasetDir string
)

func init() {
	usr, err := user.Current()
	if err != nil {
		log.Logger().Fatal("failed to get user directory", zap.Error(err))
	}
	datasetDir = filepath.Join(usr.HomeDir, ".fairrec", "dataset")
	tempDir = filepath.Join(usr.HomeDir, ".fairrec", "temp")
}

// IsBuiltIn reports whether a dataset name refers to a built-in dataset.
func IsBuiltIn(name string) bool {
	_, exist := builtInDataSets[name]
	return exist
}

// LoadDataFromBuiltIn downloads a built-in dataset on first use and loads its
// ground-truth ratings and demographic table. Now support:
//
//	ml-100k - MovieLens 100K
func LoadDataFromBuiltIn(name string) (Ratings, *Demographics, error) {
	dataSet, exist := builtInDataSets[name]
	if !exist {
		return nil, nil, errors.NotFoundf("built-in dataset %s", name)
	}
	ratingFile := filepath.Join(datasetDir, dataSet.ratings)
	if _, err := os.Stat(ratingFile); os.IsNotExist(err) {
		zipFileName, err := downloadFromUrl(dataSet.url, tempDir)
		if err != nil {
			return nil, nil, errors.Trace(err)
		}
		if _, err = unzip(zipFileName, datasetDir); err != nil {
			return nil, nil, errors.Trace(err)
		}
	}
	ratings, err := LoadRatingsFromCSV(ratingFile, dataSet.ratingSep, false, dataSet.ratingFormat)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	demographics, err := LoadDemographicsFromCSV(
		filepath.Join(datasetDir, dataSet.users), dataSet.userSep, false, dataSet.userFormat)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	return ratings, demographics, nil
}

// downloadFromUrl downloads file from URL.
func downloadFromUrl(src, dst string) (string, error) {
	log.Logger().Info("download dataset", zap.String("source", src), zap.String("destination", dst))
	// Extract file name
	tokens := strings.Split(src, "/")
	fileName := filepath.Join(dst, tokens[len(tokens)-1])
	// Create file
	if err := os.MkdirAll(filepath.Dir(fileName), os.ModePerm); err != nil {
		return fileName, errors.Trace(err)
	}
	output, err := os.Create(fileName)
	if err != nil {
		return fileName, errors.Trace(err)
	}
	defer output.Close()
	// Download file
	response, err := http.Get(src)
	if err != nil {
		return fileName, errors.Trace(err)
	}
	defer response.Body.Close()
	// Save file
	pbReader := progressbar.NewReader(response.Body, progressbar.DefaultBytes(
		response.ContentLength,
		"Downloading "+tokens[len(tokens)-1],
	))
	if _, err = io.Copy(output, &pbReader); err != nil {
		return fileName, errors.Trace(err)
	}
	return fileName, nil
}

// unzip zip file.
func unzip(src, dst string) ([]string, error) {
	var fileNames []string
	// Open zip file
	r, err := zip.OpenReader(src)
	if err != nil {
		return fileNames, errors.Trace(err)
	}
	defer r.Close()
	// Extract files
	for _, f := range r.File {
		// Open file
		rc, err := f.Open()
		if err != nil {
			return fileNames, errors.Trace(err)
		}
		// Store filename/path for returning and using later on
		filePath := filepath.Join(dst, f.Name)
		// Check for ZipSlip. More Info: http://bit.ly/2MsjAWE
		if !strings.HasPrefix(filePath, filepath.Clean(dst)+string(os.PathSeparator)) {
			return fileNames, fmt.Errorf("%s: illegal file path", filePath)
		}
		// Add filename
		fileNames = append(fileNames, filePath)
		if f.FileInfo().IsDir() {
			// Create folder
			if err = os.MkdirAll(filePath, os.ModePerm); err != nil {
				return fileNames, errors.Trace(err)
			}
		} else {
			// Create all folders
			if err = os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
				return fileNames, errors.Trace(err)
			}
			// Create file
			outFile, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
			if err != nil {
				return fileNames, errors.Trace(err)
			}
			// Save file
			_, err = io.Copy(outFile, rc)
			if err != nil {
				return nil, errors.Trace(err)
			}
			// Close the file without defer to close before next iteration of loop
			if err = outFile.Close(); err != nil {
				return nil, errors.Trace(err)
			}
		}
		// Close file
		if err = rc.Close(); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return fileNames, nil
}
