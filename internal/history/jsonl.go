package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONL handles reading and appending runs to a JSONL file.
type JSONL struct {
	path string
}

// NewJSONL creates a new JSONL handler for the given file path.
func NewJSONL(path string) *JSONL {
	return &JSONL{path: path}
}

// Path returns the JSONL file path.
func (j *JSONL) Path() string {
	return j.path
}

// ReadAll reads all runs from the JSONL file, oldest first.
func (j *JSONL) ReadAll() ([]*Run, error) {
	file, err := os.Open(j.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open jsonl file: %w", err)
	}
	defer file.Close()

	var runs []*Run
	scanner := bufio.NewScanner(file)

	// Runs with long exclude lists can exceed the default token size
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r Run
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", lineNum, err)
		}
		runs = append(runs, &r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl file: %w", err)
	}

	return runs, nil
}

// Append adds a run to the end of the JSONL file.
func (j *JSONL) Append(r *Run) error {
	if err := os.MkdirAll(filepath.Dir(j.path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open file for append: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	return nil
}
