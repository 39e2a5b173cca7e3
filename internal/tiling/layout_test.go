package tiling

import (
	"reflect"
	"testing"
)

func assertPartition(t *testing.T, area Rect, rects []Rect) {
	t.Helper()
	total := 0
	for i, r := range rects {
		if r.Empty() {
			t.Fatalf("rect %d is empty: %+v", i, r)
		}
		if r.Intersect(area) != r {
			t.Fatalf("rect %d %+v escapes area %+v", i, r, area)
		}
		for j := i + 1; j < len(rects); j++ {
			if r.Overlaps(rects[j]) {
				t.Fatalf("rect %d %+v overlaps rect %d %+v", i, r, j, rects[j])
			}
		}
		total += r.Area()
	}
	if len(rects) > 0 && total != area.Area() {
		t.Fatalf("rects cover %d px, want %d", total, area.Area())
	}
}

func TestArrange_PartitionsUsableArea(t *testing.T) {
	areas := []Rect{
		{X: 0, Y: 0, Width: 1000, Height: 800},
		{X: 1920, Y: 18, Width: 1366, Height: 750},
		{X: 7, Y: 3, Width: 333, Height: 211},
	}
	layouts := []Layout{
		{Kind: KindMainStack, Ratio: 0.55},
		{Kind: KindMainStack, Ratio: 0.1},
		{Kind: KindMainStack, Ratio: 0.9},
		{Kind: KindColumn},
		{Kind: KindColumn, Columns: 3},
	}

	for _, area := range areas {
		for _, layout := range layouts {
			for n := 0; n <= 12; n++ {
				rects := layout.Arrange(area, n, 0)
				if len(rects) != n {
					t.Fatalf("%s n=%d: got %d rects", layout.Name(), n, len(rects))
				}
				assertPartition(t, area, rects)
			}
		}
	}
}

func TestSplit_StaysInsideTotal(t *testing.T) {
	tests := []struct {
		start, total, parts, gap int
	}{
		{5, 3, 5, 0},
		{0, 1, 4, 10},
		{100, 7, 12, 2},
		{0, 10, 10, 0},
	}
	for _, tt := range tests {
		spans := split(tt.start, tt.total, tt.parts, tt.gap)
		if len(spans) != tt.parts {
			t.Fatalf("split(%+v) = %d spans, want %d", tt, len(spans), tt.parts)
		}
		for i, s := range spans {
			if s.size < 1 || s.start < tt.start || s.start+s.size > tt.start+tt.total {
				t.Fatalf("split(%+v) span %d = %+v escapes [%d,%d)", tt, i, s, tt.start, tt.start+tt.total)
			}
		}
	}
}

func TestArrange_TinyAreaKeepsClientsInside(t *testing.T) {
	area := Rect{X: 10, Y: 10, Width: 3, Height: 2}
	for _, layout := range []Layout{{Kind: KindMainStack, Ratio: 0.5}, {Kind: KindColumn}, {Kind: KindColumn, Columns: 2}} {
		rects := layout.Arrange(area, 6, 4)
		if len(rects) != 6 {
			t.Fatalf("%s: got %d rects, want 6", layout.Name(), len(rects))
		}
		for i, r := range rects {
			if r.Empty() || r.Intersect(area) != r {
				t.Fatalf("%s: rect %d %+v escapes area %+v", layout.Name(), i, r, area)
			}
		}
	}
}

func TestArrange_IsIdempotent(t *testing.T) {
	area := Rect{X: 10, Y: 20, Width: 1277, Height: 713}
	for _, layout := range []Layout{{Kind: KindMainStack, Ratio: 0.61}, {Kind: KindColumn, Columns: 2}} {
		first := layout.Arrange(area, 7, 6)
		second := layout.Arrange(area, 7, 6)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%s: arrange not idempotent: %+v vs %+v", layout.Name(), first, second)
		}
	}
}

func TestArrange_MainStackScenario(t *testing.T) {
	layout := Layout{Kind: KindMainStack, Ratio: 0.6}
	rects := layout.Arrange(Rect{X: 0, Y: 0, Width: 1000, Height: 800}, 3, 0)

	want := []Rect{
		{X: 0, Y: 0, Width: 600, Height: 800},
		{X: 600, Y: 0, Width: 400, Height: 400},
		{X: 600, Y: 400, Width: 400, Height: 400},
	}
	if !reflect.DeepEqual(rects, want) {
		t.Fatalf("got %+v, want %+v", rects, want)
	}
}

func TestArrange_SingleClientFillsArea(t *testing.T) {
	area := Rect{X: 5, Y: 5, Width: 640, Height: 480}
	for _, layout := range []Layout{{Kind: KindMainStack, Ratio: 0.5}, {Kind: KindColumn}} {
		rects := layout.Arrange(area, 1, 10)
		if len(rects) != 1 || rects[0] != area {
			t.Fatalf("%s: got %+v, want [%+v]", layout.Name(), rects, area)
		}
	}
}

func TestArrange_FloatingPlacesNothing(t *testing.T) {
	rects := Layout{Kind: KindFloating}.Arrange(Rect{Width: 100, Height: 100}, 3, 0)
	if rects != nil {
		t.Fatalf("expected nil, got %+v", rects)
	}
}

func TestArrange_ColumnsAreEqualWidthLeftToRight(t *testing.T) {
	rects := Layout{Kind: KindColumn}.Arrange(Rect{Width: 1000, Height: 500}, 4, 0)
	for i, r := range rects {
		if r.Width != 250 || r.Height != 500 || r.X != i*250 {
			t.Fatalf("column %d = %+v", i, r)
		}
	}
}

func TestArrange_ColumnCountWrapsIntoRows(t *testing.T) {
	rects := Layout{Kind: KindColumn, Columns: 2}.Arrange(Rect{Width: 800, Height: 600}, 3, 0)
	want := []Rect{
		{X: 0, Y: 0, Width: 400, Height: 300},
		{X: 0, Y: 300, Width: 400, Height: 300},
		{X: 400, Y: 0, Width: 400, Height: 600},
	}
	if !reflect.DeepEqual(rects, want) {
		t.Fatalf("got %+v, want %+v", rects, want)
	}
}

func TestArrange_GapsSeparateClients(t *testing.T) {
	rects := Layout{Kind: KindMainStack, Ratio: 0.5}.Arrange(Rect{Width: 1000, Height: 810}, 3, 10)

	if rects[0].X+rects[0].Width+10 != rects[1].X {
		t.Fatalf("expected a 10px gap between master and stack: %+v", rects)
	}
	if rects[1].Y+rects[1].Height+10 != rects[2].Y {
		t.Fatalf("expected a 10px gap between stack rows: %+v", rects)
	}
	if rects[2].Y+rects[2].Height != 810 {
		t.Fatalf("stack does not reach the bottom edge: %+v", rects[2])
	}
}

func TestApplyBorder_OuterBoxIsExact(t *testing.T) {
	outer := Rect{X: 600, Y: 400, Width: 400, Height: 400}
	inner := ApplyBorder(outer, 2)
	if inner.Width != 396 || inner.Height != 396 || inner.X != 600 || inner.Y != 400 {
		t.Fatalf("unexpected inner rect: %+v", inner)
	}
	if WithBorder(inner, 2) != outer {
		t.Fatalf("border round trip drifted: %+v", WithBorder(inner, 2))
	}
}

func TestApplyBorder_ClampsToMinimumSize(t *testing.T) {
	inner := ApplyBorder(Rect{Width: 3, Height: 3}, 4)
	if inner.Width != 1 || inner.Height != 1 {
		t.Fatalf("expected 1x1, got %dx%d", inner.Width, inner.Height)
	}
}

func TestClampRatio(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.05, 0.1},
		{0.5, 0.5},
		{0.95, 0.9},
	}
	for _, tt := range tests {
		if got := ClampRatio(tt.in, 0.1, 0.9); got != tt.want {
			t.Errorf("ClampRatio(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLayoutNextCyclesKinds(t *testing.T) {
	l := Layout{Kind: KindMainStack, Ratio: 0.55}
	seen := []Kind{}
	for i := 0; i < 3; i++ {
		l = l.Next()
		seen = append(seen, l.Kind)
	}
	want := []Kind{KindColumn, KindFloating, KindMainStack}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("got %v, want %v", seen, want)
	}
	if l.Ratio != 0.55 {
		t.Fatalf("ratio not preserved: %v", l.Ratio)
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"main-stack", "column", "floating"} {
		k, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q) error: %v", name, err)
		}
		if k.String() != name {
			t.Fatalf("ParseKind(%q).String() = %q", name, k.String())
		}
	}
	if _, err := ParseKind("spiral"); err == nil {
		t.Fatalf("expected error for unknown layout")
	}
}

func TestTranslateKeepsOffsetAndClamps(t *testing.T) {
	from := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	to := Rect{X: 1920, Y: 0, Width: 1280, Height: 720}

	got := Translate(Rect{X: 100, Y: 50, Width: 300, Height: 200}, from, to)
	if got != (Rect{X: 2020, Y: 50, Width: 300, Height: 200}) {
		t.Fatalf("unexpected translate result: %+v", got)
	}

	got = Translate(Rect{X: 1800, Y: 900, Width: 300, Height: 200}, from, to)
	if got.X+got.Width > to.X+to.Width || got.Y+got.Height > to.Y+to.Height {
		t.Fatalf("translate did not clamp into target: %+v", got)
	}
}
