package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("DRYAD_TEST_DUR", "45")
	if got := Duration("DRYAD_TEST_DUR", time.Second); got != 45*time.Second {
		t.Fatalf("bare seconds: got %v", got)
	}
	t.Setenv("DRYAD_TEST_DUR", "2m")
	if got := Duration("DRYAD_TEST_DUR", time.Second); got != 2*time.Minute {
		t.Fatalf("duration string: got %v", got)
	}
	t.Setenv("DRYAD_TEST_DUR", "soon")
	if got := Duration("DRYAD_TEST_DUR", time.Second); got != time.Second {
		t.Fatalf("fallback: got %v", got)
	}
}

func TestBoolAndInt(t *testing.T) {
	t.Setenv("DRYAD_TEST_BOOL", "off")
	if Bool("DRYAD_TEST_BOOL", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("DRYAD_TEST_INT", "x")
	if got := Int("DRYAD_TEST_INT", 7); got != 7 {
		t.Fatalf("expected default 7, got %d", got)
	}
}
