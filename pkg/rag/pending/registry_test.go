package pending

import (
	"testing"
	"time"

	"corrective-rag-be/pkg/rag/state"
)

func TestSaveGetPop(t *testing.T) {
	r := NewRegistry(time.Hour)
	s := state.New("질문", "s1")

	r.Save("s1", s)
	if !r.Has("s1") {
		t.Fatal("saved session not found")
	}

	got, found := r.Get("s1")
	if !found || got.Query != "질문" {
		t.Fatalf("Get() = %+v, %v", got, found)
	}
	// Get does not consume.
	if !r.Has("s1") {
		t.Error("Get consumed the entry")
	}

	popped, found := r.Pop("s1")
	if !found || popped.SessionID != "s1" {
		t.Fatalf("Pop() = %+v, %v", popped, found)
	}
	// Pop consumes; a second resume misses.
	if _, found := r.Pop("s1"); found {
		t.Error("second Pop should miss")
	}
}

func TestSaveReplaces(t *testing.T) {
	r := NewRegistry(time.Hour)
	r.Save("s1", state.New("첫번째", "s1"))
	r.Save("s1", state.New("두번째", "s1"))

	got, _ := r.Get("s1")
	if got.Query != "두번째" {
		t.Errorf("Query = %q, want last writer", got.Query)
	}
}

func TestTTLEviction(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)
	r.Save("s1", state.New("질문", "s1"))

	time.Sleep(30 * time.Millisecond)
	if r.Has("s1") {
		t.Error("entry survived its TTL")
	}
}

func TestDelete(t *testing.T) {
	r := NewRegistry(time.Hour)
	r.Save("s1", state.New("질문", "s1"))
	r.Delete("s1")
	if r.Has("s1") {
		t.Error("deleted entry still present")
	}
}
