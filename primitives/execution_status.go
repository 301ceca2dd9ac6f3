package primitives

import (
	"encoding/json"
	"fmt"
)

// ExecutionStatusKind enumerates the terminal states of a receipt execution.
type ExecutionStatusKind uint8

const (
	ExecutionStatusUnknown ExecutionStatusKind = iota
	ExecutionStatusFailure
	ExecutionStatusSuccessValue
	ExecutionStatusSuccessReceiptID
)

// ExecutionStatusView is the terminal status of a receipt execution. On the
// wire it is either a bare string ("Unknown", "Failure") or a single-key
// object such as {"SuccessValue": "..."} or {"SuccessReceiptId": "..."}.
type ExecutionStatusView struct {
	Kind ExecutionStatusKind
	// Value holds the variant payload: the base64 success value, the id of
	// the success receipt, or the raw failure object.
	Value json.RawMessage
}

// IsSuccess reports whether the status is one of the success variants.
func (s *ExecutionStatusView) IsSuccess() bool {
	return s.Kind == ExecutionStatusSuccessValue || s.Kind == ExecutionStatusSuccessReceiptID
}

// IsFailure reports whether the status is the terminal failure variant.
func (s *ExecutionStatusView) IsFailure() bool {
	return s.Kind == ExecutionStatusFailure
}

func (s *ExecutionStatusView) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		switch tag {
		case "Unknown":
			s.Kind = ExecutionStatusUnknown
		case "Failure":
			s.Kind = ExecutionStatusFailure
		default:
			return fmt.Errorf("decode execution status: unknown variant %q", tag)
		}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode execution status: %w", err)
	}
	if len(obj) != 1 {
		return fmt.Errorf("decode execution status: expected one variant key, got %d", len(obj))
	}
	for key, payload := range obj {
		switch key {
		case "SuccessValue":
			s.Kind = ExecutionStatusSuccessValue
		case "SuccessReceiptId":
			s.Kind = ExecutionStatusSuccessReceiptID
		case "Failure":
			s.Kind = ExecutionStatusFailure
		default:
			return fmt.Errorf("decode execution status: unknown variant %q", key)
		}
		s.Value = append(s.Value[:0], payload...)
	}
	return nil
}

func (s ExecutionStatusView) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case ExecutionStatusUnknown:
		return json.Marshal("Unknown")
	case ExecutionStatusFailure:
		if s.Value == nil {
			return json.Marshal("Failure")
		}
		return json.Marshal(map[string]json.RawMessage{"Failure": s.Value})
	case ExecutionStatusSuccessValue:
		return json.Marshal(map[string]json.RawMessage{"SuccessValue": s.Value})
	case ExecutionStatusSuccessReceiptID:
		return json.Marshal(map[string]json.RawMessage{"SuccessReceiptId": s.Value})
	}
	return nil, fmt.Errorf("encode execution status: unknown kind %d", s.Kind)
}
