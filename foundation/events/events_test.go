package events_test

import (
	"testing"

	"github.com/ardanlabs/powledger/foundation/events"
)

func TestEvents(t *testing.T) {
	evts := events.New()

	ch1 := evts.Acquire("1")
	ch2 := evts.Acquire("2")

	if evts.Acquire("1") != ch1 {
		t.Fatalf("Should get back the same channel for the same id.")
	}

	evts.Send("viewer: block mined")

	for _, ch := range []<-chan string{ch1, ch2} {
		if msg := <-ch; msg != "viewer: block mined" {
			t.Fatalf("Should receive the event: %s", msg)
		}
	}

	if err := evts.Release("1"); err != nil {
		t.Fatalf("Should be able to release a receiver: %s", err)
	}

	if _, open := <-ch1; open {
		t.Fatalf("Should close a released channel.")
	}

	if err := evts.Release("1"); err == nil {
		t.Fatalf("Should not release an unknown receiver.")
	}

	// Fill the buffer past its size, Send must never block.
	for range 200 {
		evts.Send("event")
	}

	evts.Shutdown()

	if n := evts.Receivers(); n != 0 {
		t.Fatalf("Should remove all receivers on shutdown: %d", n)
	}
}
