// Package dataset embeds the classic 150-sample iris dataset used to train
// the bundled classifier.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"strconv"
)

//go:embed iris.csv
var irisCSV []byte

// FeatureNames lists the measurements of each sample, in input order.
var FeatureNames = []string{
	"sepal length (cm)",
	"sepal width (cm)",
	"petal length (cm)",
	"petal width (cm)",
}

// ClassLabels lists the iris species, index-aligned with the label encoding
// returned by Load.
var ClassLabels = []string{"setosa", "versicolor", "virginica"}

// Load parses the embedded CSV into feature vectors and encoded labels.
func Load() (features [][]float64, labels []int, err error) {
	classIndex := make(map[string]int, len(ClassLabels))
	for i, name := range ClassLabels {
		classIndex[name] = i
	}

	reader := csv.NewReader(bytes.NewReader(irisCSV))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse iris data: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, fmt.Errorf("iris data is empty")
	}

	// Skip the header row.
	for line, record := range records[1:] {
		if len(record) != len(FeatureNames)+1 {
			return nil, nil, fmt.Errorf("row %d: expected %d columns, got %d",
				line+2, len(FeatureNames)+1, len(record))
		}

		vector := make([]float64, len(FeatureNames))
		for i := 0; i < len(FeatureNames); i++ {
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: column %d: %w", line+2, i, err)
			}
			vector[i] = v
		}

		label, ok := classIndex[record[len(FeatureNames)]]
		if !ok {
			return nil, nil, fmt.Errorf("row %d: unknown species %q", line+2, record[len(FeatureNames)])
		}

		features = append(features, vector)
		labels = append(labels, label)
	}

	return features, labels, nil
}
