package fileio

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// Journal appends one JSON record per line to an LZ4 framed file
type Journal struct {
	mu      sync.Mutex
	file    *os.File
	writer  *lz4.Writer
	encoder *json.Encoder
}

// OpenJournal creates (or truncates) the journal file
func OpenJournal(filename string) (*Journal, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}
	writer := lz4.NewWriter(file)
	return &Journal{
		file:    file,
		writer:  writer,
		encoder: json.NewEncoder(writer),
	}, nil
}

// Record writes a record and flushes it so a killed process loses at most the frame trailer
func (j *Journal) Record(record interface{}) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.encoder.Encode(record); err != nil {
		return err
	}
	return j.writer.Flush()
}

// Close ends the LZ4 frame and closes the file
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.writer.Close()
	if ferr := j.file.Close(); err == nil {
		err = ferr
	}
	return err
}

// ReadJournal decodes all records of a journal stream.
// Records decoded before a truncated tail are returned along with the error.
func ReadJournal[T any](r io.Reader) ([]T, error) {
	decoder := json.NewDecoder(lz4.NewReader(r))
	var records []T
	for {
		var record T
		err := decoder.Decode(&record)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}
