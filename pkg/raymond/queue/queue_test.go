package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_PushGetIsFIFO(t *testing.T) {
	q := New()
	q.Push("a")
	q.Push("b")
	q.Push("c")

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, "a", q.Get())
	assert.Equal(t, "b", q.Get())
	assert.Equal(t, "c", q.Get())
	assert.True(t, q.Empty())
}

func TestQueue_HeadDoesNotRemove(t *testing.T) {
	q := New()
	q.Push("a")
	q.Push("b")

	head, ok := q.Head()
	if !ok {
		t.Fatalf("expected head to be present")
	}
	if head != "a" {
		t.Errorf("expected head %q, got %q", "a", head)
	}
	if q.Len() != 2 {
		t.Errorf("head should not remove, expected len 2, got %d", q.Len())
	}
}

func TestQueue_EmptyHead(t *testing.T) {
	q := New()
	if _, ok := q.Head(); ok {
		t.Errorf("expected no head on empty queue")
	}
	if !q.Empty() {
		t.Errorf("expected queue to be empty")
	}
}

func TestQueue_Contains(t *testing.T) {
	q := New()
	q.Push("self")
	q.Push("n1")

	if !q.Contains("self") {
		t.Errorf("expected queue to contain self")
	}
	if !q.Contains("n1") {
		t.Errorf("expected queue to contain n1")
	}
	if q.Contains("n2") {
		t.Errorf("expected queue to not contain n2")
	}
}

func TestQueue_GetOnEmptyPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected Get on empty queue to panic")
		}
	}()
	q := New()
	q.Get()
}

func TestQueue_SnapshotIsIndependentCopy(t *testing.T) {
	q := New()
	q.Push("a")
	snap := q.Snapshot()
	q.Push("b")

	assert.Equal(t, []string{"a"}, snap)
	assert.Equal(t, 2, q.Len())
}
