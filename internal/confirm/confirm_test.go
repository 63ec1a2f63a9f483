package confirm

import (
	"context"
	"testing"
	"time"

	"github.com/voidworks/modsync/internal/domain"
)

func TestAsk_AnsweredByOtherGoroutine(t *testing.T) {
	b := NewBridge(0)

	// Surface side: approve updates, reject removals
	go func() {
		for req := range b.Requests() {
			req.Answer(req.Kind == KindUpdate)
		}
	}()

	change := domain.FileChange{RelativePath: "mods/a.jar"}

	if !b.Ask(context.Background(), KindUpdate, change) {
		t.Error("Expected update to be approved")
	}
	if b.Ask(context.Background(), KindRemoval, change) {
		t.Error("Expected removal to be rejected")
	}
}

func TestAsk_SequenceNumbersAreMonotonic(t *testing.T) {
	b := NewBridge(2)

	var seqs []uint64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 2; i++ {
			req := <-b.Requests()
			seqs = append(seqs, req.Seq)
			req.Answer(true)
		}
	}()

	b.Ask(context.Background(), KindUpdate, domain.FileChange{RelativePath: "a"})
	b.Ask(context.Background(), KindUpdate, domain.FileChange{RelativePath: "b"})
	<-done

	if len(seqs) != 2 || seqs[1] <= seqs[0] {
		t.Errorf("Expected strictly increasing sequence numbers, got %v", seqs)
	}
}

func TestAsk_CancelledContextIsNo(t *testing.T) {
	b := NewBridge(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Nobody is listening; cancellation must unblock with "no"
	if b.Ask(ctx, KindUpdate, domain.FileChange{RelativePath: "a"}) {
		t.Error("Cancelled Ask must return false")
	}
}

func TestAsk_CancelledWhileWaitingForAnswer(t *testing.T) {
	b := NewBridge(1)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-b.Requests() // take the question, never answer
		cancel()
	}()

	done := make(chan bool, 1)
	go func() {
		done <- b.Ask(ctx, KindRemoval, domain.FileChange{RelativePath: "a"})
	}()

	select {
	case allowed := <-done:
		if allowed {
			t.Error("Unanswered, cancelled Ask must return false")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Ask did not unblock after cancellation")
	}
}

func TestAnswer_SecondCallIsIgnored(t *testing.T) {
	b := NewBridge(1)

	go func() {
		req := <-b.Requests()
		req.Answer(true)
		req.Answer(false) // must not panic or override
	}()

	if !b.Ask(context.Background(), KindUpdate, domain.FileChange{RelativePath: "a"}) {
		t.Error("First answer should win")
	}
}

func TestFunc_AdaptsToCallbackShape(t *testing.T) {
	b := NewBridge(0)

	go func() {
		req := <-b.Requests()
		if req.Kind != KindRemoval {
			t.Errorf("Expected removal kind, got %s", req.Kind)
		}
		req.Answer(true)
	}()

	fn := b.Func(context.Background(), KindRemoval)
	if !fn(domain.FileChange{RelativePath: "old.jar"}) {
		t.Error("Expected approval through adapted func")
	}
}
