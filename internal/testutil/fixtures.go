// Package testutil provides helpers shared by package tests.
package testutil

import (
	"encoding/json"
	"os"
	"testing"

	"queryapi/primitives"
)

// LoadStreamerMessage reads a block fixture from path, relative to the
// calling test's package directory.
func LoadStreamerMessage(t *testing.T, path string) *primitives.StreamerMessage {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read block fixture %s: %v", path, err)
	}
	var msg primitives.StreamerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode block fixture %s: %v", path, err)
	}
	return &msg
}
