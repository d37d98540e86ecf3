// Package metrics defines the named-scalar emission interface the trainer
// writes to, plus the sinks shipped with genovae: structured logging, JSONL
// files and an in-memory ring for the live monitor.
package metrics

import (
	"math"
	"time"

	json "github.com/goccy/go-json"
)

// Record is one emitted scalar. NaN/Inf values are recorded as-is: numerical
// instability must stay visible downstream.
type Record struct {
	Run   string    `json:"run"`
	Step  int       `json:"step"`
	Name  string    `json:"name"`
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
}

// MarshalJSON encodes non-finite values as the strings "NaN", "+Inf" and
// "-Inf". JSON has no representation for them and the encoder would
// otherwise reject the record, hiding exactly the steps that diverged.
func (r Record) MarshalJSON() ([]byte, error) {
	type alias struct {
		Run   string    `json:"run"`
		Step  int       `json:"step"`
		Name  string    `json:"name"`
		Value any       `json:"value"`
		Time  time.Time `json:"time"`
	}
	a := alias{Run: r.Run, Step: r.Step, Name: r.Name, Value: r.Value, Time: r.Time}
	switch {
	case math.IsNaN(r.Value):
		a.Value = "NaN"
	case math.IsInf(r.Value, 1):
		a.Value = "+Inf"
	case math.IsInf(r.Value, -1):
		a.Value = "-Inf"
	}
	return json.Marshal(a)
}

// Sink receives one scalar per metric per training step. Delivery and
// persistence are the sink's concern; the trainer never retries.
type Sink interface {
	Emit(name string, value float64, step int)
}

// Multi fans every emission out to all sinks in order.
type Multi []Sink

func (m Multi) Emit(name string, value float64, step int) {
	for _, s := range m {
		s.Emit(name, value, step)
	}
}

// Discard drops all emissions.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(string, float64, int) {}
