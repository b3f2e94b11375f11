package codec

import (
	"testing"

	"github.com/danmuck/stashctl/internal/testutil/testlog"
)

func TestExtract(t *testing.T) {
	testlog.Start(t)
	m := DefaultMarkers()
	if got := m.Extract("xx[start]hello[end]yy"); got != "hello" {
		t.Fatalf("extract got %q", got)
	}
	if got := m.Extract("no markers here"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := m.Extract("[start]missing end"); got != "" {
		t.Fatalf("expected empty without end marker, got %q", got)
	}
	if got := m.Extract("[end]x[start]y"); got != "" {
		t.Fatalf("expected empty when end precedes start, got %q", got)
	}
	if got := m.Extract("[start][end]"); got != "" {
		t.Fatalf("expected empty payload, got %q", got)
	}
}

func TestFrameAndComplete(t *testing.T) {
	testlog.Start(t)
	m := Markers{}.WithDefaults()
	framed := m.Frame("abc")
	if framed != "[start]abc[end]" {
		t.Fatalf("unexpected frame %q", framed)
	}
	if m.Complete("[start]abc[en") {
		t.Fatalf("partial end marker should not complete")
	}
	if !m.Complete(framed) {
		t.Fatalf("framed payload should complete")
	}
}

func TestCompletionOnGrowingPrefix(t *testing.T) {
	testlog.Start(t)
	m := DefaultMarkers()
	units := PackText(m.Frame("grow ✓"))
	for i := 1; i < len(units); i++ {
		if m.Complete(UnpackText(units[:i]...)) {
			t.Fatalf("completed early at %d/%d units", i, len(units))
		}
	}
	if got := m.Extract(UnpackText(units...)); got != "grow ✓" {
		t.Fatalf("extract got %q", got)
	}
}
