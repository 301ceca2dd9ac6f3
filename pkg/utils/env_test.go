package utils

import "testing"

// TestEnvOrDefault covers the string lookup and its fallback.
func TestEnvOrDefault(t *testing.T) {
	const key = "UTIL_TEST_STRING"
	if got := EnvOrDefault(key, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv(key, "value")
	if got := EnvOrDefault(key, "fallback"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
}

func TestEnvOrDefaultInt(t *testing.T) {
	const key = "UTIL_TEST_INT"
	if got := EnvOrDefaultInt(key, 10); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	t.Setenv(key, "5")
	if got := EnvOrDefaultInt(key, 10); got != 5 {
		t.Fatalf("expected 5, got %d", got)
	}
	t.Setenv(key, "bad")
	if got := EnvOrDefaultInt(key, 7); got != 7 {
		t.Fatalf("expected fallback on parse error, got %d", got)
	}
}

func TestEnvOrDefaultUint64(t *testing.T) {
	const key = "UTIL_TEST_UINT64"
	if got := EnvOrDefaultUint64(key, 99); got != 99 {
		t.Fatalf("expected 99, got %d", got)
	}
	t.Setenv(key, "93085141")
	if got := EnvOrDefaultUint64(key, 99); got != 93085141 {
		t.Fatalf("expected 93085141, got %d", got)
	}
	t.Setenv(key, "bad")
	if got := EnvOrDefaultUint64(key, 77); got != 77 {
		t.Fatalf("expected fallback on parse error, got %d", got)
	}
}

// TestWrap verifies the nil pass-through and the added context.
func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Fatalf("Wrap(nil) must be nil")
	}
	err := Wrap(errSentinel, "load config")
	if err == nil || err.Error() != "load config: boom" {
		t.Fatalf("unexpected wrapped error %v", err)
	}
}

var errSentinel = errTest("boom")

type errTest string

func (e errTest) Error() string { return string(e) }
