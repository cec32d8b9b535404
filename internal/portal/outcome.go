package portal

import (
	"errors"
	"fmt"
)

var ErrRowCountMismatch = errors.New("invoice rows on page two differ from records")

// Kind classifies how a step ended and whether the run may go on.
type Kind int

const (
	OK Kind = iota
	// Skipped steps failed but the run continues with the next step or record.
	Skipped
	// Fatal steps stop the progression.
	Fatal
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "ok"
	case Skipped:
		return "skipped"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the result of one step. Record is the zero-based record index,
// or -1 for steps that are not tied to a record.
type Outcome struct {
	Step   string
	Record int
	Kind   Kind
	Err    error
}

func (o Outcome) String() string {
	if o.Err == nil {
		return fmt.Sprintf("%s[%d]: %s", o.Step, o.Record, o.Kind)
	}
	return fmt.Sprintf("%s[%d]: %s: %v", o.Step, o.Record, o.Kind, o.Err)
}

type Report struct {
	Outcomes []Outcome
}

func (r *Report) add(o Outcome) Outcome {
	r.Outcomes = append(r.Outcomes, o)
	return o
}

// Aborted reports whether a fatal step ended the run early.
func (r Report) Aborted() bool {
	for _, o := range r.Outcomes {
		if o.Kind == Fatal {
			return true
		}
	}
	return false
}

// Failures returns every step that did not end OK.
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Kind != OK {
			out = append(out, o)
		}
	}
	return out
}

// Filled returns the indexes of records whose invoice details were typed in
// full. A record with any failed record step, such as an issue date that could
// not be picked, is left out: its form entry is incomplete.
func (r Report) Filled() []int {
	broken := make(map[int]bool)
	for _, o := range r.Outcomes {
		if o.Record >= 0 && o.Kind != OK {
			broken[o.Record] = true
		}
	}
	var out []int
	for _, o := range r.Outcomes {
		if o.Step == StepInvoice && o.Kind == OK && !broken[o.Record] {
			out = append(out, o.Record)
		}
	}
	return out
}
