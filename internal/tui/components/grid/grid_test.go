package grid

import (
	"strings"
	"testing"

	"habitgrid/internal/calendar"
)

func layerFor(color string, dates ...string) Layer {
	set := map[string]struct{}{}
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return Layer{Color: color, Selected: func(date string) bool {
		_, ok := set[date]
		return ok
	}}
}

func TestViewHasHeaderAndOneRowPerMonth(t *testing.T) {
	m := New(2026, calendar.WeekStartMonday)
	m.ShowCursor = false

	lines := strings.Split(m.View(), "\n")
	if len(lines) != 13 {
		t.Fatalf("rows = %d, want 13 (header plus 12 months)", len(lines))
	}
	if !strings.Contains(lines[0], "M") {
		t.Errorf("header row missing weekday initials: %q", lines[0])
	}
	for i, label := range calendar.MonthNamesShort {
		if !strings.Contains(lines[i+1], label) {
			t.Errorf("row %d missing label %s: %q", i+1, label, lines[i+1])
		}
	}
}

func TestBlendSingleLayer(t *testing.T) {
	m := Model{Layers: []Layer{layerFor("#FF6B4A", "2026-01-05")}}

	color, count := m.blend("2026-01-05")
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if !strings.EqualFold(color, "#FF6B4A") {
		t.Errorf("color = %s, want #FF6B4A", color)
	}

	if _, count := m.blend("2026-01-06"); count != 0 {
		t.Errorf("unmarked date count = %d, want 0", count)
	}
}

func TestBlendMixesOverlappingLayers(t *testing.T) {
	m := Model{Layers: []Layer{
		layerFor("#FF0000", "2026-01-05"),
		layerFor("#0000FF", "2026-01-05"),
	}}

	color, count := m.blend("2026-01-05")
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
	if strings.EqualFold(color, "#FF0000") || strings.EqualFold(color, "#0000FF") {
		t.Errorf("blended color %s should differ from both inputs", color)
	}
}

func TestBlendBadHexFallsBack(t *testing.T) {
	m := Model{Layers: []Layer{layerFor("not-a-color", "2026-01-05")}}
	if _, count := m.blend("2026-01-05"); count != 1 {
		t.Errorf("count = %d, want 1 despite the bad hex", count)
	}
}
