package log

import "testing"

func TestOrStd(t *testing.T) {
	if got := OrStd(nil); got != Std() {
		t.Errorf("OrStd(nil) = %v, want the global logger", got)
	}

	l := NewNopLogger()
	if got := OrStd(l); got != l {
		t.Errorf("OrStd(l) = %v, want the passed logger", got)
	}
}

func TestOrNop(t *testing.T) {
	if got := OrNop(nil); got == nil {
		t.Error("OrNop(nil) returned nil")
	}

	l := NewNopLogger()
	if got := OrNop(l); got != l {
		t.Errorf("OrNop(l) = %v, want the passed logger", got)
	}
}
