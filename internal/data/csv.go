package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// StreamingReader reads a CSV file in fixed-size batches of raw rows so
// large files never need a second in-memory copy of the parsed records.
type StreamingReader struct {
	file      *os.File
	reader    *csv.Reader
	headers   []string
	batchSize int
}

func OpenStream(filename string, batchSize int) (*StreamingReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}

	if batchSize <= 0 {
		batchSize = 1000
	}

	return &StreamingReader{
		file:      file,
		reader:    reader,
		headers:   headers,
		batchSize: batchSize,
	}, nil
}

// ReadBatch returns up to batchSize rows. Rows with empty cells are skipped.
// Returns io.EOF once the file is exhausted.
func (sr *StreamingReader) ReadBatch() ([][]string, error) {
	batch := make([][]string, 0, sr.batchSize)

	for len(batch) < sr.batchSize {
		record, err := sr.reader.Read()
		if err == io.EOF {
			if len(batch) == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}

		hasEmpty := false
		for _, val := range record {
			if strings.TrimSpace(val) == "" {
				hasEmpty = true
				break
			}
		}
		if hasEmpty {
			continue
		}

		batch = append(batch, record)
	}

	return batch, nil
}

func (sr *StreamingReader) Headers() []string {
	return sr.headers
}

func (sr *StreamingReader) Close() error {
	return sr.file.Close()
}

// LoadFrame reads a whole CSV file into a Frame through the streaming
// reader.
func LoadFrame(filename string) (*Frame, error) {
	reader, err := OpenStream(filename, 1000)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var rows [][]string
	for {
		batch, err := reader.ReadBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, batch...)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("insufficient data in file")
	}

	return NewFrame(reader.Headers(), rows)
}
