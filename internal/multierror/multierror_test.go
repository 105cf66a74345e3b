package multierror

import (
	"errors"
	"testing"
)

func TestAppendCreatesNewError(t *testing.T) {
	err := Append(nil, errors.New("a"), errors.New("b"))
	me, ok := err.(*Error)
	if !ok || me.Len() != 2 {
		t.Fatalf("expected *Error with 2 entries, got %#v", err)
	}
}

func TestAppendWrapsPlainError(t *testing.T) {
	base := errors.New("base")
	err := Append(base, errors.New("extra"))
	me, ok := err.(*Error)
	if !ok || me.Len() != 2 {
		t.Fatalf("expected base wrapped alongside extra, got %#v", err)
	}
}

func TestAppendAccumulatesOnExistingMultierror(t *testing.T) {
	err := Append(nil, errors.New("a"))
	err = Append(err, errors.New("b"), errors.New("c"))
	me, ok := err.(*Error)
	if !ok || me.Len() != 3 {
		t.Fatalf("expected 3 accumulated entries, got %#v", err)
	}
}
