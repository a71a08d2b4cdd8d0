package presence

import (
	"testing"
)

type fakeChannel struct {
	got    [][]byte
	refuse bool
}

func (f *fakeChannel) Send(payload []byte) bool {
	if f.refuse {
		return false
	}
	f.got = append(f.got, payload)
	return true
}

func TestRouter_Suite(t *testing.T) {
	t.Run("PushToAllBound", func(t *testing.T) {
		r := NewRouter()
		a, b := &fakeChannel{}, &fakeChannel{}
		r.Bind("alice", a)
		r.Bind("alice", b)
		r.Push("alice", []byte("hello"))
		if len(a.got) != 1 || len(b.got) != 1 {
			t.Fatalf("expected both channels to receive, got %d and %d", len(a.got), len(b.got))
		}
		if r.Channels("alice") != 2 {
			t.Fatalf("expected 2 bound channels, got %d", r.Channels("alice"))
		}
	})

	t.Run("BindIdempotent", func(t *testing.T) {
		r := NewRouter()
		ch := &fakeChannel{}
		r.Bind("alice", ch)
		r.Bind("alice", ch)
		if r.Channels("alice") != 1 {
			t.Fatalf("double bind should be a no-op, got %d channels", r.Channels("alice"))
		}
		r.Push("alice", []byte("x"))
		if len(ch.got) != 1 {
			t.Fatalf("expected exactly one delivery, got %d", len(ch.got))
		}
	})

	t.Run("UnbindStopsDelivery", func(t *testing.T) {
		r := NewRouter()
		ch := &fakeChannel{}
		r.Bind("alice", ch)
		r.Unbind("alice", ch)
		r.Push("alice", []byte("x"))
		if len(ch.got) != 0 {
			t.Fatalf("unbound channel received %d payloads", len(ch.got))
		}
		if r.Channels("alice") != 0 {
			t.Fatalf("expected 0 channels after unbind, got %d", r.Channels("alice"))
		}
	})

	t.Run("UnbindTolerant", func(t *testing.T) {
		r := NewRouter()
		ch := &fakeChannel{}
		r.Unbind("nobody", ch)
		r.Bind("alice", ch)
		r.Unbind("alice", ch)
		r.Unbind("alice", ch)
	})

	t.Run("OfflinePushIsNoop", func(t *testing.T) {
		r := NewRouter()
		r.Push("ghost", []byte("x"))
	})

	t.Run("DropDoesNotBlockOthers", func(t *testing.T) {
		r := NewRouter()
		stuck, ok := &fakeChannel{refuse: true}, &fakeChannel{}
		r.Bind("alice", stuck)
		r.Bind("alice", ok)
		r.Push("alice", []byte("x"))
		if len(ok.got) != 1 {
			t.Fatalf("healthy channel should still receive, got %d", len(ok.got))
		}
	})
}
