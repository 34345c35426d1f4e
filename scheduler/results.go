package scheduler

import (
	"encoding/json"
	"os"
)

// result is one timing record, appended as a JSON line and consumed by
// cmd/filterbench.
type result struct {
	Mode         string  `json:"mode"`
	Workers      int     `json:"workers"`
	TimeElapsed  float64 `json:"timeElapsed"`
	TimeParallel float64 `json:"timeParallel"`
	Dir          string  `json:"dir"`
}

// appendResult appends the record to the JSONL file at path, creating it
// if needed.
func appendResult(path string, rec result) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return err
}
