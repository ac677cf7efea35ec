package server

import (
	"context"
	"errors"
	"testing"
)

func TestProgressHubFanout(t *testing.T) {
	hub := NewProgressHub()
	a := hub.subscribe("doc-1")
	b := hub.subscribe("doc-1")
	other := hub.subscribe("doc-2")

	hub.Publish("doc-1", "extract", "")

	for name, ch := range map[string]chan ProgressEvent{"a": a, "b": b} {
		select {
		case ev := <-ch:
			if ev.SyllabusID != "doc-1" || ev.Stage != "extract" {
				t.Errorf("%s: event = %+v", name, ev)
			}
		default:
			t.Errorf("%s: no event delivered", name)
		}
	}
	select {
	case ev := <-other:
		t.Errorf("doc-2 subscriber got doc-1 event: %+v", ev)
	default:
	}

	hub.unsubscribe("doc-1", a)
	hub.unsubscribe("doc-1", b)
	hub.unsubscribe("doc-2", other)
}

func TestProgressHubSlowSubscriberDropped(t *testing.T) {
	hub := NewProgressHub()
	ch := hub.subscribe("doc-1")

	// Saturate the buffer and then some; Publish must never block.
	for i := 0; i < 40; i++ {
		hub.Publish("doc-1", "extract", "")
	}
	if n := len(ch); n != cap(ch) {
		t.Errorf("buffered = %d, want %d", n, cap(ch))
	}
	hub.unsubscribe("doc-1", ch)
}

func TestProgressHookMirrorsPhases(t *testing.T) {
	hub := NewProgressHub()
	ch := hub.subscribe("doc-1")
	hook := progressHook{hub: hub, syllabusID: "doc-1"}

	hook.Before(context.Background(), "extract", "prompt")
	hook.After(context.Background(), "extract", "text", nil)
	hook.After(context.Background(), "translate", "", errors.New("boom"))

	ev := <-ch
	if ev.Stage != "extract" {
		t.Errorf("first event = %+v", ev)
	}
	ev = <-ch
	if ev.Stage != "error" || ev.Detail == "" {
		t.Errorf("error event = %+v", ev)
	}
	hub.unsubscribe("doc-1", ch)
}
