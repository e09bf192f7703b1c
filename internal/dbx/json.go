package dbx

import (
	"encoding/json"
	"fmt"
)

// JSONText encodes v for a JSON/JSONB column. Nil slices encode as "null" so
// a round trip preserves the difference between nil and empty.
func JSONText(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return string(b), nil
}

// ScanJSON decodes a JSON/JSONB column value into dst. Empty input leaves
// dst untouched.
func ScanJSON(src []byte, dst any) error {
	if len(src) == 0 {
		return nil
	}
	if err := json.Unmarshal(src, dst); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}

// Scanner is implemented by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}
