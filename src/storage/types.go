package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ToolCall records one model tool invocation on a message. Result stays nil
// until the tool has executed.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Result    *string         `json:"result,omitempty"`
}

// ToolCallList stores a message's tool calls as a JSON array in a TEXT column.
type ToolCallList []ToolCall

// Scan implements the sql.Scanner interface for ToolCallList
func (t *ToolCallList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" || v == "[]" {
			*t = nil
			return nil
		}
		return json.Unmarshal([]byte(v), t)
	case []byte:
		if len(v) == 0 || string(v) == "[]" {
			*t = nil
			return nil
		}
		return json.Unmarshal(v, t)
	default:
		return fmt.Errorf("cannot scan type %T into ToolCallList", value)
	}
}

// Value implements the driver.Valuer interface for ToolCallList
func (t ToolCallList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
