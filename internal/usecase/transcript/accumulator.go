package transcript

import "strings"

// Segment is one finalized piece of recognized speech.
type Segment struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
	AudioStart int     `json:"audio_start,omitempty"` // ms offset into the attempt
	AudioEnd   int     `json:"audio_end,omitempty"`   // ms offset into the attempt
}

// Event is one recognition update from the streaming provider. Finals are
// applied before the interim replacement. An event that finalizes speech
// without bringing a new interim clears the previous interim, since the
// finalized text subsumes it.
type Event struct {
	Finals  []Segment
	Interim *string
}

// Accumulator builds the live transcript of one recording attempt. Finalized
// segments are append-only; the interim hypothesis is replaced wholesale on
// every update. Not safe for concurrent use: the recording controller owns it
// and applies events from its own goroutine.
type Accumulator struct {
	finalized []Segment
	joined    strings.Builder
	interim   string
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Apply folds one recognition event into the transcript
func (a *Accumulator) Apply(ev Event) {
	for _, seg := range ev.Finals {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" {
			continue
		}
		if a.joined.Len() > 0 {
			a.joined.WriteByte(' ')
		}
		a.joined.WriteString(seg.Text)
		a.finalized = append(a.finalized, seg)
	}

	switch {
	case ev.Interim != nil:
		a.interim = strings.TrimSpace(*ev.Interim)
	case len(ev.Finals) > 0:
		// Finals without a fresh interim mean the hypothesis was consumed.
		a.interim = ""
	}
}

// FullText returns the finalized text with the current interim appended.
// The interim rides directly on the joined finals without a separator; it is
// a display hypothesis, not a committed segment.
func (a *Accumulator) FullText() string {
	if a.interim == "" {
		return a.joined.String()
	}
	return a.joined.String() + a.interim
}

// FinalizedText returns only the committed segments joined by single spaces
func (a *Accumulator) FinalizedText() string {
	return a.joined.String()
}

// FinalizedLen returns the length of the committed text, used for debounce
// thresholds
func (a *Accumulator) FinalizedLen() int {
	return a.joined.Len()
}

// Interim returns the current uncommitted hypothesis
func (a *Accumulator) Interim() string {
	return a.interim
}

// Segments returns a copy of the finalized segments
func (a *Accumulator) Segments() []Segment {
	out := make([]Segment, len(a.finalized))
	copy(out, a.finalized)
	return out
}
