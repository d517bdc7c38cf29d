package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/youruser/galentine/internal/album"
	"github.com/youruser/galentine/internal/flow"
)

func readySession(t *testing.T) *Session {
	t.Helper()
	s := NewStore().Create()
	if _, err := s.Dispatch(flow.Advance{To: flow.StepCollage}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Dispatch(flow.AddImages{Uploads: []album.Upload{{Name: "a", Data: []byte{1}}}}); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStoreCreateGet(t *testing.T) {
	t.Parallel()

	st := NewStore()
	s := st.Create()
	got, err := st.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.Snapshot().Step != flow.StepHero {
		t.Fatal("new session not on hero step")
	}
	st.Delete(s.ID)
	if _, err := st.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDispatchKeepsStateOnError(t *testing.T) {
	t.Parallel()

	s := NewStore().Create()
	if _, err := s.Dispatch(flow.Advance{To: flow.StepFinal}); !errors.Is(err, flow.ErrInvalidTransition) {
		t.Fatalf("err = %v", err)
	}
	if s.Snapshot().Step != flow.StepHero {
		t.Fatal("state changed after rejected action")
	}
}

func TestBeginComposeExclusive(t *testing.T) {
	t.Parallel()

	s := readySession(t)
	var started atomic.Int32
	var wg sync.WaitGroup
	release := make(chan func(), 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, done, err := s.BeginCompose()
			if err == nil {
				started.Add(1)
				release <- done
				return
			}
			if !errors.Is(err, flow.ErrComposing) {
				t.Errorf("err = %v, want ErrComposing", err)
			}
		}()
	}
	wg.Wait()
	close(release)
	if started.Load() != 1 {
		t.Fatalf("%d compositions started concurrently", started.Load())
	}
	for done := range release {
		done()
		done()
	}
	if s.Snapshot().Composing {
		t.Fatal("composing flag stuck")
	}
	if _, done, err := s.BeginCompose(); err != nil {
		t.Fatalf("second compose: %v", err)
	} else {
		done()
	}
}

func TestStoreSweep(t *testing.T) {
	t.Parallel()

	st := NewStore()
	old, fresh := st.Create(), st.Create()
	now := time.Now()
	old.CreatedAt = now.Add(-3 * time.Hour)
	fresh.CreatedAt = now.Add(-time.Minute)

	if n := st.Sweep(now, 2*time.Hour); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if _, err := st.Get(old.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old session still present: %v", err)
	}
	if _, err := st.Get(fresh.ID); err != nil {
		t.Fatalf("fresh session dropped: %v", err)
	}
	// the caller's handle keeps working after eviction
	if _, err := old.Dispatch(flow.Advance{To: flow.StepCollage}); err != nil {
		t.Fatalf("dispatch on evicted session: %v", err)
	}
}

func TestStoreExpire(t *testing.T) {
	t.Parallel()

	st := NewStore()
	s := st.Create()
	s.CreatedAt = time.Now().Add(-time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Expire(ctx, time.Minute, time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for st.Len() != 0 {
		select {
		case <-deadline:
			t.Fatal("session never expired")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	<-done

	// disabled expiry returns at once
	st.Expire(context.Background(), 0, time.Millisecond, nil)
}
