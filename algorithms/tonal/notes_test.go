package tonal

import (
	"math"
	"testing"
)

func TestTableShape(t *testing.T) {
	notes := Notes()
	if len(notes) != 85 {
		t.Fatalf("len = %d, want 85", len(notes))
	}
	if notes[0].Label() != "C2" || notes[0].Frequency != 65.4064 {
		t.Errorf("first = %+v", notes[0])
	}
	if notes[84].Label() != "C8" || notes[84].Frequency != 4186.01 {
		t.Errorf("last = %+v", notes[84])
	}
	if notes[33].Label() != "A4" || notes[33].Frequency != 440 {
		t.Errorf("A4 = %+v", notes[33])
	}
	for i := 1; i < len(notes); i++ {
		if notes[i].Frequency <= notes[i-1].Frequency {
			t.Fatalf("table not ascending at %d", i)
		}
	}
}

func TestNotesReturnsCopy(t *testing.T) {
	notes := Notes()
	notes[0].Frequency = 1
	if Notes()[0].Frequency != 65.4064 {
		t.Error("Notes exposed the internal table")
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		name      string
		freq, tol float64
		want      string
		wantOK    bool
	}{
		{"exact", 440, 7, "A4", true},
		{"within tolerance", 441.43, 7, "A4", true},
		{"boundary inclusive", 447, 7, "A4", true},
		{"outside", 450, 7, "", false},
		{"zero", 0, 7, "", false},
		// 69.2957 and 73.4162 are both within 3 Hz of 71.3; the later entry wins
		{"last match wins", 71.3, 3, "D2", true},
		{"below table", 20, 7, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := Snap(tt.freq, tt.tol)
			if ok != tt.wantOK || n.Label() != tt.want {
				t.Errorf("Snap(%v, %v) = (%q, %v), want (%q, %v)", tt.freq, tt.tol, n.Label(), ok, tt.want, tt.wantOK)
			}
			if !ok && n.Frequency != 0 {
				t.Errorf("missing snap should report 0 Hz, got %v", n.Frequency)
			}
		})
	}
}

func TestNearest(t *testing.T) {
	n, cents, ok := Nearest(445)
	if !ok || n.Label() != "A4" {
		t.Fatalf("Nearest(445) = %q, %v", n.Label(), ok)
	}
	if want := 1200 * math.Log2(445.0/440); math.Abs(cents-want) > 1e-9 {
		t.Errorf("cents = %v, want %v", cents, want)
	}

	if n, _, _ := Nearest(10000); n.Label() != "C8" {
		t.Errorf("Nearest(10000) = %q, want C8", n.Label())
	}
	for _, f := range []float64{0, -5, math.NaN()} {
		if _, _, ok := Nearest(f); ok {
			t.Errorf("Nearest(%v) should not be ok", f)
		}
	}
}
