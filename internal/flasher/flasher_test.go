package flasher

import (
	"context"
	"testing"

	"github.com/juju/errors"
)

func TestClassifyTimeout(t *testing.T) {
	if got := classify(context.DeadlineExceeded); got != FailureTimeout {
		t.Fatalf("expected FailureTimeout, got %v", got)
	}
	wrapped := errors.Annotate(context.DeadlineExceeded, "writing region")
	if got := classify(wrapped); got != FailureTimeout {
		t.Fatalf("expected FailureTimeout through errors.Cause, got %v", got)
	}
}

func TestClassifyDefaultsToProtocol(t *testing.T) {
	if got := classify(errors.New("bad response")); got != FailureProtocol {
		t.Fatalf("expected FailureProtocol, got %v", got)
	}
}

func TestJobErrorCause(t *testing.T) {
	inner := errors.New("short digest")
	je := &jobError{kind: FailureProtocol, err: inner}
	if je.Error() != inner.Error() {
		t.Fatalf("Error() = %q, want %q", je.Error(), inner.Error())
	}
	if errors.Cause(je) != inner {
		t.Fatalf("Cause() = %v, want %v", errors.Cause(je), inner)
	}
}

func TestHexEncode(t *testing.T) {
	got := hexEncode([]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0xff})
	want := "deadbeef00ff"
	if got != want {
		t.Fatalf("hexEncode = %q, want %q", got, want)
	}
}

func TestTryLockExcludesConcurrentFlash(t *testing.T) {
	e := New(nil, nil)
	lock := e.lockFor("board-1")
	if !tryLock(lock) {
		t.Fatal("expected first tryLock to succeed")
	}
	if tryLock(lock) {
		t.Fatal("expected second tryLock on held lock to fail immediately")
	}
	unlock(lock)
	if !tryLock(lock) {
		t.Fatal("expected tryLock to succeed again after unlock")
	}
	unlock(lock)
}

func TestLockForReturnsSameLockPerBoard(t *testing.T) {
	e := New(nil, nil)
	a := e.lockFor("board-1")
	b := e.lockFor("board-1")
	c := e.lockFor("board-2")
	if a != b {
		t.Fatal("expected the same lock channel for the same board id")
	}
	if a == c {
		t.Fatal("expected distinct lock channels for distinct board ids")
	}
}

func TestBlockSplitMathShortFinalBlock(t *testing.T) {
	data := make([]byte, flashBlockSize+100)
	numBlocks := (len(data) + flashBlockSize - 1) / flashBlockSize
	if numBlocks != 2 {
		t.Fatalf("expected 2 blocks for %d bytes, got %d", len(data), numBlocks)
	}
	start := 1 * flashBlockSize
	end := start + flashBlockSize
	if end > len(data) {
		end = len(data)
	}
	block := data[start:end]
	if len(block) != 100 {
		t.Fatalf("expected final block of 100 bytes, got %d", len(block))
	}
}

func TestBlockSplitMathRawDivisionZeroForEmptyRegion(t *testing.T) {
	numBlocks := (0 + flashBlockSize - 1) / flashBlockSize
	if numBlocks != 0 {
		t.Fatalf("raw division should be 0 for empty data, got %d", numBlocks)
	}
}
