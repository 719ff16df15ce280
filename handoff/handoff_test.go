package handoff

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"trail/render"
	"trail/result"
)

var errNoFile = errors.New("no such file")

func TestChanHandsOffInOrder(t *testing.T) {
	ctx := context.Background()
	ch := New[int](3)
	for i := 1; i <= 3; i++ {
		if err := ch.Send(ctx, i); err != nil {
			t.Fatalf("Send(%d): %v", i, err)
		}
	}
	for i := 1; i <= 3; i++ {
		v, err := ch.Recv(ctx)
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		if v != i {
			t.Fatalf("order: want %d, got %d", i, v)
		}
	}
}

func TestTryVariants(t *testing.T) {
	ch := New[string](1)
	if _, ok := ch.TryRecv(); ok {
		t.Fatalf("TryRecv on empty channel succeeded")
	}
	if !ch.TrySend("a") {
		t.Fatalf("TrySend with free capacity failed")
	}
	if ch.TrySend("b") {
		t.Fatalf("TrySend past capacity succeeded")
	}
	v, ok := ch.TryRecv()
	if !ok || v != "a" {
		t.Fatalf("TryRecv: got (%q, %t)", v, ok)
	}
}

func TestRecvAfterClose(t *testing.T) {
	ctx := context.Background()
	ch := New[int](1)
	if !ch.TrySend(7) {
		t.Fatalf("TrySend failed")
	}
	ch.Close()
	ch.Close() // idempotent

	v, err := ch.Recv(ctx)
	if err != nil || v != 7 {
		t.Fatalf("buffered value after close: got (%d, %v)", v, err)
	}
	if _, err := ch.Recv(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("drained close: want ErrClosed, got %v", err)
	}
}

func TestSendHonorsContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	ch := New[int](0)
	if err := ch.Send(ctx, 1); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Send on full channel: want deadline error, got %v", err)
	}
}

func TestCellSingleUse(t *testing.T) {
	ctx := context.Background()
	cell := NewCell[int]()
	cell.Put(42)

	v, err := cell.Take(ctx)
	if err != nil || v != 42 {
		t.Fatalf("Take: got (%d, %v)", v, err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on second Put")
		}
	}()
	cell.Put(43)
}

func TestCellSecondTakePanics(t *testing.T) {
	ctx := context.Background()
	cell := NewCell[int]()
	cell.Put(1)
	if _, err := cell.Take(ctx); err != nil {
		t.Fatalf("Take: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on second Take")
		}
	}()
	_, _ = cell.Take(ctx)
}

func TestCellCancelledTakeStaysTakeable(t *testing.T) {
	cell := NewCell[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := cell.Take(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("empty Take: want deadline error, got %v", err)
	}
	cell.Put(5)
	v, err := cell.Take(context.Background())
	if err != nil || v != 5 {
		t.Fatalf("retried Take: got (%d, %v)", v, err)
	}
}

// A failure built on one goroutine and handed off keeps its first k trace
// entries byte for byte; hops recorded by the receiver follow in order.
func TestFailureCrossesGoroutinesIntact(t *testing.T) {
	ctx := context.Background()
	ch := New[result.Result[int]](0)
	tags := make(map[string]result.Location)

	var g errgroup.Group
	g.Go(func() error {
		open := func() result.Result[int] {
			tags["origin"] = result.Here().DownBy(1)
			return result.Wrap[int](errNoFile)
		}
		parse := func() result.Result[int] {
			tags["parse"] = result.Here().DownBy(1)
			v, fail := open().Propagate()
			if fail != nil {
				return result.Failed[int](fail)
			}
			return result.Ok(v)
		}
		return ch.Send(ctx, parse())
	})

	r, err := ch.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv: %v", err)
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("sender: %v", err)
	}

	tags["finish"] = result.Here().DownBy(1)
	_, fail := r.Propagate()
	if fail == nil {
		t.Fatalf("expected the hand-off to carry a failure")
	}
	final := result.Failed[string](fail)

	tr := final.Fail().Trace()
	want := []string{"origin", "parse", "finish"}
	if tr.Len() != len(want) {
		t.Fatalf("trace length: want %d, got %d (%v)", len(want), tr.Len(), tr.Strings())
	}
	for i, name := range want {
		if got := tr.At(i); got != tags[name] {
			t.Fatalf("entry %d: want %s (%q), got %s", i, tags[name], name, got)
		}
	}
}

// The readme scenario: a file is opened on a worker goroutine, the result
// crosses back over a channel, and the caller propagates it onward. The
// rendered trace lists the open site first and the cross-thread
// propagation site second.
func TestThreadedFileSummaryScenario(t *testing.T) {
	ctx := context.Background()

	openFile := func(path string) result.Result[*os.File] {
		return result.Of(os.Open(path))
	}

	fileSummary := func(path string) result.Result[string] {
		ch := New[result.Result[*os.File]](1)
		var g errgroup.Group
		g.Go(func() error {
			return ch.Send(ctx, openFile(path))
		})
		opened, err := ch.Recv(ctx)
		if err != nil {
			return result.Err[string](err)
		}
		if err := g.Wait(); err != nil {
			return result.Err[string](err)
		}

		f, fail := opened.Propagate()
		if fail != nil {
			return result.Failed[string](fail)
		}
		defer f.Close()
		return result.Ok(f.Name())
	}

	r := fileSummary(filepath.Join(t.TempDir(), "missing.txt"))
	_, fail := r.Get()
	if fail == nil {
		t.Fatalf("expected a failure for a missing file")
	}
	if !errors.Is(fail.Err(), fs.ErrNotExist) {
		t.Fatalf("domain error survived transfer: %v", fail.Err())
	}

	listing := render.Format(fail.Trace())
	lines := strings.Split(listing, "\n")
	if len(lines) != 2 {
		t.Fatalf("trace lines: want 2, got %d (%q)", len(lines), listing)
	}
	for i, line := range lines {
		prefix := "   " + string(rune('0'+i)) + ": "
		if !strings.HasPrefix(line, prefix) {
			t.Fatalf("line %d layout: %q", i, line)
		}
		if !strings.Contains(line, "handoff_test.go:") {
			t.Fatalf("line %d location: %q", i, line)
		}
	}
}
