package cypher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/nao1215/kgscrape/internal/model"
)

// ErrUnrecognizedFormat is returned for JSON that holds no records.
var ErrUnrecognizedFormat = errors.New("unrecognized record file format")

// envelope matches the three object shapes kgscrape writes: a RunSummary
// ("data"), a versioned report ("summary"), or a single record.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Summary   json.RawMessage `json:"summary"`
	SourceURL string          `json:"source_url"`
}

// ReadRecords reads records from JSON files in order. Each file may hold a
// record array, a single record, a run summary or a versioned report.
func ReadRecords(paths []string) ([]*model.KnowledgeRecord, error) {
	var all []*model.KnowledgeRecord
	for _, p := range paths {
		data, err := os.ReadFile(p) //nolint:gosec // paths come from the command line
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		records, err := ParseRecords(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		all = append(all, records...)
	}
	return all, nil
}

// ParseRecords decodes records from one JSON document.
func ParseRecords(data []byte) ([]*model.KnowledgeRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrUnrecognizedFormat
	}

	if data[0] == '[' {
		var records []*model.KnowledgeRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse record array: %w", err)
		}
		return records, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	switch {
	case len(env.Data) > 0:
		return ParseRecords(env.Data)
	case len(env.Summary) > 0:
		return ParseRecords(env.Summary)
	case env.SourceURL != "":
		var r model.KnowledgeRecord
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse record: %w", err)
		}
		return []*model.KnowledgeRecord{&r}, nil
	default:
		return nil, ErrUnrecognizedFormat
	}
}
