package tonal

import (
	"fmt"
	"math"
)

// Note is one entry of the equal-tempered note table
type Note struct {
	Name      string  `json:"name"`      // pitch class, e.g. "Ab"
	Octave    int     `json:"octave"`    // scientific octave number
	Frequency float64 `json:"frequency"` // Hz
}

// Label returns the note name with its octave, e.g. "A4".
// The zero Note has an empty label.
func (n Note) Label() string {
	if n.Name == "" {
		return ""
	}
	return fmt.Sprintf("%s%d", n.Name, n.Octave)
}

// IsZero reports whether n is the "no note" value
func (n Note) IsZero() bool {
	return n.Name == ""
}

var pitchClasses = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// C2 through C8
var frequencies = [...]float64{
	65.4064, 69.2957, 73.4162, 77.7817, 82.4069, 87.3071, 92.4986, 97.9989, 103.826, 110.000, 116.541, 123.471,
	130.813, 138.591, 146.832, 155.563, 164.814, 174.614, 184.997, 195.998, 207.652, 220.000, 233.082, 246.942,
	261.626, 277.183, 293.665, 311.127, 329.628, 349.228, 369.994, 391.995, 415.305, 440.000, 466.164, 493.883,
	523.251, 554.365, 587.330, 622.254, 659.255, 698.456, 739.989, 783.991, 830.609, 880.000, 932.328, 987.767,
	1046.50, 1108.73, 1174.66, 1244.51, 1318.51, 1396.91, 1479.98, 1567.98, 1661.22, 1760.00, 1864.66, 1975.53,
	2093.00, 2217.46, 2349.32, 2489.02, 2637.02, 2793.83, 2959.96, 3135.96, 3322.44, 3520.00, 3729.31, 3951.07,
	4186.01,
}

// NoteCount is the number of notes in the table
const NoteCount = len(frequencies)

var table = buildTable()

func buildTable() [NoteCount]Note {
	var notes [NoteCount]Note
	for i, f := range frequencies {
		notes[i] = Note{
			Name:      pitchClasses[i%12],
			Octave:    i/12 + 2,
			Frequency: f,
		}
	}
	return notes
}

// Notes returns a copy of the note table, lowest first
func Notes() []Note {
	out := make([]Note, NoteCount)
	copy(out, table[:])
	return out
}

// Snap returns the table note within tolerance Hz of freq.
// When several qualify the highest one wins. ok is false when none does.
func Snap(freq, tolerance float64) (Note, bool) {
	var (
		match Note
		found bool
	)
	for _, n := range table {
		if math.Abs(freq-n.Frequency) <= tolerance {
			match = n
			found = true
		}
	}
	return match, found
}

// Nearest returns the closest table note on a logarithmic scale and the
// offset of freq from it in cents. ok is false for non-positive input.
func Nearest(freq float64) (Note, float64, bool) {
	if !(freq > 0) || math.IsInf(freq, 1) {
		return Note{}, 0, false
	}

	best := 0
	bestCents := math.Inf(1)
	for i, n := range table {
		cents := 1200 * math.Log2(freq/n.Frequency)
		if math.Abs(cents) < math.Abs(bestCents) {
			best = i
			bestCents = cents
		}
	}
	return table[best], bestCents, true
}
