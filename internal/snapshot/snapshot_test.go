package snapshot

import "testing"

func TestTakeBeforePublishIsNotOK(t *testing.T) {
	s := New()
	if _, ok := s.Take(); ok {
		t.Fatal("expected ok=false before any Publish")
	}
}

func TestTakeReturnsLatestPublish(t *testing.T) {
	s := New()
	s.Publish([]byte("first"))
	s.Publish([]byte("second"))
	got, ok := s.Take()
	if !ok || string(got) != "second" {
		t.Fatalf("Take() = %q, %v, want %q, true", got, ok, "second")
	}
}

func TestTakeIsRepeatableBetweenPublishes(t *testing.T) {
	s := New()
	s.Publish([]byte("x"))
	a, _ := s.Take()
	b, _ := s.Take()
	if string(a) != string(b) {
		t.Fatalf("repeated Take() diverged: %q vs %q", a, b)
	}
}
