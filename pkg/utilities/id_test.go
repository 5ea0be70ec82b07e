package utilities

import (
	"strings"
	"testing"
)

func TestNextRevisionIncrementsGeneration(t *testing.T) {
	first := NextRevision("")
	if !strings.HasPrefix(first, "1-") {
		t.Fatalf("first revision = %q, want prefix 1-", first)
	}
	second := NextRevision(first)
	if RevisionGeneration(second) != 2 {
		t.Fatalf("second revision = %q, want generation 2", second)
	}
	if first == NextRevision("") {
		t.Fatal("revisions must be unique")
	}
}

func TestRevisionGenerationMalformed(t *testing.T) {
	for _, rev := range []string{"", "abc", "x-y", "-3-z"} {
		if got := RevisionGeneration(rev); got != 0 {
			t.Errorf("RevisionGeneration(%q) = %d, want 0", rev, got)
		}
	}
}

func TestNewSnowflakeIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewSnowflakeID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
