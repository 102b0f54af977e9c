package calibration

import (
	"fmt"
	"strings"
	"sync"
)

// AnchorID selects one of the two calibration anchors.
type AnchorID int

const (
	AnchorA AnchorID = iota
	AnchorB
)

// String returns "A" or "B".
func (id AnchorID) String() string {
	if id == AnchorB {
		return "B"
	}
	return "A"
}

// ParseAnchorID accepts "A" or "B" in either case.
func ParseAnchorID(s string) (AnchorID, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return AnchorA, nil
	case "B":
		return AnchorB, nil
	default:
		return AnchorA, fmt.Errorf("unknown anchor %q: must be A or B", s)
	}
}

// State is the calibration of one image. Methods never modify the receiver.
type State struct {
	A *Anchor `json:"a"`
	B *Anchor `json:"b"`
}

func (s State) get(which AnchorID) *Anchor {
	if which == AnchorB {
		return s.B
	}
	return s.A
}

func (s State) with(which AnchorID, a *Anchor) State {
	if which == AnchorB {
		s.B = a
	} else {
		s.A = a
	}
	return s
}

// SetAnchor replaces one anchor's pixel location and value.
func (s State) SetAnchor(which AnchorID, pixel Point, value Value) State {
	return s.with(which, &Anchor{Pixel: pixel, Value: value})
}

// SetPixel moves one anchor, keeping any value already assigned to it.
func (s State) SetPixel(which AnchorID, pixel Point) State {
	next := Anchor{Pixel: pixel}
	if cur := s.get(which); cur != nil {
		next.Value = cur.Value
	}
	return s.with(which, &next)
}

// SetValue assigns one anchor's physical value, keeping its pixel location.
// An anchor that does not exist yet is created at pixel (0,0).
func (s State) SetValue(which AnchorID, value Value) State {
	var next Anchor
	if cur := s.get(which); cur != nil {
		next.Pixel = cur.Pixel
	}
	next.Value = value
	return s.with(which, &next)
}

// Reset clears both anchors.
func (s State) Reset() State {
	return State{}
}

// Pair returns the anchors as mapper input.
func (s State) Pair() Pair {
	return Pair{A: s.A, B: s.B}
}

// Complete reports whether the anchors can drive an affine calibration.
func (s State) Complete() bool {
	return s.Pair().Complete()
}

// Store keeps a calibration State per key (typically an image path).
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{states: make(map[string]State)}
}

// Get returns the state for key, or an empty State.
func (s *Store) Get(key string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[key]
}

// Update applies fn to the state for key under the write lock and stores the result.
func (s *Store) Update(key string, fn func(State) State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.states[key])
	s.states[key] = next
	return next
}

