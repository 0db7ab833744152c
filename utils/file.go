package utils

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"feednet/network"
)

// LoadSamples reads CSV records from r into training samples. Each record
// must hold exactly inputNum input fields followed by targetNum target
// fields; malformed records are an error, not skipped.
func LoadSamples(r io.Reader, inputNum, targetNum int) ([]network.Sample, error) {
	if inputNum < 1 || targetNum < 1 {
		return nil, fmt.Errorf("sample layout %d+%d fields: counts must be positive", inputNum, targetNum)
	}

	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = inputNum + targetNum

	var samples []network.Sample
	for row := 1; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", row, err)
		}

		values := make([]float64, len(record))
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("record %d field %d: %w", row, i, err)
			}
			values[i] = v
		}
		samples = append(samples, network.Sample{
			Inputs:  values[:inputNum],
			Targets: values[inputNum:],
		})
	}
	return samples, nil
}

// LoadSamplesFile opens path and loads it with LoadSamples.
func LoadSamplesFile(path string, inputNum, targetNum int) ([]network.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	samples, err := LoadSamples(f, inputNum, targetNum)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return samples, nil
}
