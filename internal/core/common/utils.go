// Package common holds helpers shared by the extraction pipeline.
package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractObject unmarshals the JSON object embedded in an LLM reply. Models
// wrap their output in markdown fences or prose more often than not, so
// everything before the first brace and after the last one is cut away.
func ExtractObject[T any](response string) (T, error) {
	var out T

	start := strings.IndexByte(response, '{')
	if start < 0 {
		return out, fmt.Errorf("response contains no JSON object")
	}
	end := strings.LastIndexByte(response, '}')
	if end < start {
		return out, fmt.Errorf("response contains an unterminated JSON object")
	}

	if err := json.Unmarshal([]byte(response[start:end+1]), &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal extraction payload: %w", err)
	}
	return out, nil
}
