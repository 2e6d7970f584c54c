package lintcache

import (
	"testing"
	"time"

	"hlintls/internal/hlint"
)

func TestRoundTrip(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key("main = (foo)\n", "2.1.10", []string{"--hint=relaxed"})
	ideas := []hlint.Idea{
		{
			Severity:     "Warning",
			Hint:         "Redundant bracket",
			File:         "-",
			StartLine:    1,
			StartColumn:  8,
			EndLine:      1,
			EndColumn:    13,
			From:         "(foo)",
			To:           "foo",
			Refactorings: "[Replace {rtype = Expr}]",
		},
	}
	if err := c.Put(key, ideas); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].Hint != "Redundant bracket" || got[0].Refactorings != ideas[0].Refactorings {
		t.Fatalf("unexpected cached ideas: %+v", got)
	}
}

func TestMiss(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := c.Get(Key("nothing", "2.1.10", nil)); ok {
		t.Fatal("expected miss")
	}
}

func TestPrune(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	key := Key("text", "2.1.10", nil)
	if err := c.Put(key, nil); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Prune(time.Hour); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if _, ok := c.Get(key); !ok {
		t.Fatal("fresh entry must survive pruning")
	}
	// A negative max age makes every existing entry stale.
	if err := c.Prune(-time.Second); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if _, ok := c.Get(key); ok {
		t.Fatal("stale entry must be pruned")
	}
}

func TestKeyChangesWithInputs(t *testing.T) {
	base := Key("text", "2.1.10", []string{"-f"})
	if Key("text2", "2.1.10", []string{"-f"}) == base {
		t.Fatal("content must affect key")
	}
	if Key("text", "2.1.11", []string{"-f"}) == base {
		t.Fatal("tool version must affect key")
	}
	if Key("text", "2.1.10", []string{"-g"}) == base {
		t.Fatal("flags must affect key")
	}
}
