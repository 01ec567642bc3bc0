package snippet

import "time"

// Defaults applied when a snippet carries out-of-range parameters.
const (
	DefaultMinDelay      = 10 * time.Millisecond
	DefaultMaxDelay      = 50 * time.Millisecond
	DefaultMinBackspaces = 1
	DefaultMaxBackspaces = 3
)

// Snippet is a named block of text plus its typing configuration.
// The name is the map key in the store file and is not repeated here.
type Snippet struct {
	Text                 string  `json:"text"`
	MinDelayMs           int     `json:"min_delay"`
	MaxDelayMs           int     `json:"max_delay"`
	BackspaceProbability float64 `json:"backspace_probability"`
	MinBackspaces        int     `json:"min_backspaces"`
	MaxBackspaces        int     `json:"max_backspaces"`
	Hotkey               string  `json:"hotkey"`
	Category             string  `json:"category"`
}

// Params holds the validated typing parameters for one execution.
type Params struct {
	MinDelay      time.Duration
	MaxDelay      time.Duration
	BackspaceProb float64
	MinBackspaces int
	MaxBackspaces int
}

// Clamp returns the snippet's typing parameters with out-of-range values
// replaced by fixed defaults. Invalid values never reject the run.
func (s Snippet) Clamp() Params {
	p := Params{
		MinDelay:      time.Duration(s.MinDelayMs) * time.Millisecond,
		MaxDelay:      time.Duration(s.MaxDelayMs) * time.Millisecond,
		BackspaceProb: s.BackspaceProbability,
		MinBackspaces: s.MinBackspaces,
		MaxBackspaces: s.MaxBackspaces,
	}
	if p.MinDelay < 0 || p.MinDelay > p.MaxDelay {
		p.MinDelay = DefaultMinDelay
		p.MaxDelay = DefaultMaxDelay
	}
	if p.BackspaceProb < 0 || p.BackspaceProb > 1 {
		p.BackspaceProb = 0
	}
	if p.MinBackspaces <= 0 || p.MinBackspaces > p.MaxBackspaces {
		p.MinBackspaces = DefaultMinBackspaces
		p.MaxBackspaces = DefaultMaxBackspaces
	}
	return p
}
