package call

import (
	"context"
	"testing"
	"time"
)

func TestDeliverToRegisteredWaiter(t *testing.T) {
	tbl := NewTable[string, int]()

	ch, cancel := tbl.Register("OPEN_RES")
	defer cancel()

	if !tbl.Deliver("OPEN_RES", 42) {
		t.Fatal("delivery to registered waiter failed")
	}

	select {
	case got := <-ch:
		if got != 42 {
			t.Fatalf("got %d, want 42", got)
		}
	case <-time.After(time.Second):
		t.Fatal("message never arrived")
	}
}

func TestDeliverWithoutWaiter(t *testing.T) {
	tbl := NewTable[string, int]()
	if tbl.Deliver("CLOSE_RES", 1) {
		t.Fatal("delivery without waiter should report false")
	}
}

func TestDeliverConsumesRegistration(t *testing.T) {
	tbl := NewTable[string, int]()

	_, cancel := tbl.Register("RES")
	defer cancel()

	if !tbl.Deliver("RES", 1) {
		t.Fatal("first delivery failed")
	}
	if tbl.Deliver("RES", 2) {
		t.Fatal("second delivery should find no waiter")
	}
}

func TestCancelRemovesWaiter(t *testing.T) {
	tbl := NewTable[string, int]()

	_, cancel := tbl.Register("RES")
	cancel()

	if tbl.Deliver("RES", 1) {
		t.Fatal("delivery after cancel should find no waiter")
	}
	cancel() // idempotent
}

func TestReRegisterReplacesWaiter(t *testing.T) {
	tbl := NewTable[string, int]()

	old, cancelOld := tbl.Register("RES")
	fresh, cancelFresh := tbl.Register("RES")
	defer cancelFresh()

	if !tbl.Deliver("RES", 7) {
		t.Fatal("delivery failed")
	}
	select {
	case <-old:
		t.Fatal("replaced waiter must not receive")
	case got := <-fresh:
		if got != 7 {
			t.Fatalf("got %d, want 7", got)
		}
	case <-time.After(time.Second):
		t.Fatal("message never arrived")
	}

	// Cancelling the stale waiter must not clear the fresh registration.
	cancelOld()
	_, cancelAgain := tbl.Register("RES")
	cancelAgain()
}

func TestDistinctKeysPendSimultaneously(t *testing.T) {
	tbl := NewTable[string, int]()

	a, cancelA := tbl.Register("A")
	defer cancelA()
	b, cancelB := tbl.Register("B")
	defer cancelB()

	tbl.Deliver("B", 2)
	tbl.Deliver("A", 1)

	if got := <-a; got != 1 {
		t.Fatalf("a got %d", got)
	}
	if got := <-b; got != 2 {
		t.Fatalf("b got %d", got)
	}
}

func TestDispatchContext(t *testing.T) {
	ctx := context.Background()
	if InDispatch(ctx) {
		t.Fatal("plain context flagged as dispatch")
	}
	if !InDispatch(WithDispatch(ctx)) {
		t.Fatal("dispatch context not recognized")
	}
}
