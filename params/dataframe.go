package params

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrEmptyDataframe = errors.New("dataframe has no header row")

// ReadDataframe reads CSV rows as tasks. The first row names the
// arguments; every following row is one task.
func ReadDataframe(r io.Reader) ([]Task, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("params: %w", ErrEmptyDataframe)
	}
	if err != nil {
		return nil, fmt.Errorf("params: read dataframe header: %w", err)
	}
	seen := map[string]bool{}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("params: dataframe column %d has no name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("params: duplicate dataframe column %q", name)
		}
		seen[name] = true
		header[i] = name
	}

	var tasks []Task
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return tasks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("params: read dataframe: %w", err)
		}
		task := make(Task, len(header))
		for i, name := range header {
			task[name] = record[i]
		}
		tasks = append(tasks, task)
	}
}

// ReadDataframeFile opens path and reads it with ReadDataframe.
func ReadDataframeFile(path string) ([]Task, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("params: open dataframe: %w", err)
	}
	defer f.Close()
	tasks, err := ReadDataframe(f)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return tasks, nil
}
