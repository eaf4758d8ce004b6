package service

import (
	"fmt"
	"sync"
	"testing"
)

func TestOutboxOrderAndIsolation(t *testing.T) {
	o := NewOutbox()
	o.Enqueue(1, "first")
	o.Enqueue(1, "second")
	o.Enqueue(2, "other")

	got := o.List(1)
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("List(1) = %v; want [first second]", got)
	}
	if got := o.List(2); len(got) != 1 || got[0] != "other" {
		t.Errorf("List(2) = %v; want [other]", got)
	}
	if got := o.List(3); len(got) != 0 {
		t.Errorf("List(3) = %v; want empty", got)
	}
}

func TestOutboxListReturnsCopy(t *testing.T) {
	o := NewOutbox()
	o.Enqueue(1, "first")

	got := o.List(1)
	got[0] = "mutated"

	if again := o.List(1); again[0] != "first" {
		t.Errorf("List(1)[0] = %q after caller mutation; want first", again[0])
	}
}

func TestOutboxConcurrentEnqueue(t *testing.T) {
	o := NewOutbox()
	const n = 100

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o.Enqueue(1, fmt.Sprintf("message %d", i))
		}(i)
	}
	wg.Wait()

	if got := len(o.List(1)); got != n {
		t.Errorf("len(List(1)) = %d; want %d", got, n)
	}
}
