package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ammledger/internal/model"
)

// JsonlStorage appends records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutEventBatch appends a batch of event records as JSON lines.
func (s *JsonlStorage) PutEventBatch(events []model.EventRecord) error {
	if len(events) == 0 {
		return nil
	}
	lines := make([]interface{}, len(events))
	for i, event := range events {
		lines[i] = event
	}
	return s.appendLines(lines)
}

// PutRejectedBatch appends a batch of rejected operations as JSON lines.
func (s *JsonlStorage) PutRejectedBatch(rejected []model.RejectedOperation) error {
	if len(rejected) == 0 {
		return nil
	}
	lines := make([]interface{}, len(rejected))
	for i, record := range rejected {
		lines[i] = record
	}
	return s.appendLines(lines)
}

func (s *JsonlStorage) appendLines(records []interface{}) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
