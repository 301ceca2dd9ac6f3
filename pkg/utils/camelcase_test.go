package utils

import (
	"encoding/json"
	"testing"
)

// TestSnakeToCamel verifies key conversion, including pass-through of keys
// without underscores.
func TestSnakeToCamel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"block_height", "blockHeight"},
		{"receipt_id", "receiptId"},
		{"hash", "hash"},
		{"SuccessValue", "SuccessValue"},
		{"a_b_c", "aBC"},
		{"trailing_", "trailing"},
		{"double__under", "doubleUnder"},
	}
	for _, c := range cases {
		if got := SnakeToCamel(c.in); got != c.want {
			t.Fatalf("SnakeToCamel(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

// TestSerializeToCamelCaseJSON verifies recursive key rewriting through
// nested objects and arrays while leaving values alone.
func TestSerializeToCamelCaseJSON(t *testing.T) {
	type inner struct {
		ReceiptID string `json:"receipt_id"`
	}
	type outer struct {
		BlockHeight uint64  `json:"block_height"`
		Receipts    []inner `json:"receipt_execution_outcomes"`
	}
	out, err := SerializeToCamelCaseJSON(outer{
		BlockHeight: 42,
		Receipts:    []inner{{ReceiptID: "has_underscores_in_value"}},
	})
	if err != nil {
		t.Fatalf("SerializeToCamelCaseJSON failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if _, ok := decoded["blockHeight"]; !ok {
		t.Fatalf("missing camelCased key in %s", out)
	}
	receipts, ok := decoded["receiptExecutionOutcomes"].([]any)
	if !ok || len(receipts) != 1 {
		t.Fatalf("nested array keys not rewritten: %s", out)
	}
	entry := receipts[0].(map[string]any)
	if entry["receiptId"] != "has_underscores_in_value" {
		t.Fatalf("values must not be rewritten: %s", out)
	}
}
