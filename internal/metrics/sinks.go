package metrics

import (
	"io"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/genotools/genovae/internal/logger"
)

// LogSink emits every metric as a debug record on the injected logger.
type LogSink struct {
	Log logger.Logger
}

func (s LogSink) Emit(name string, value float64, step int) {
	s.Log.Debug("metric", "name", name, "value", value, "step", step)
}

// JSONLSink appends one JSON object per emission to w. It is the durable
// sink: one line per metric, safe to tail and to load into analysis tools.
type JSONLSink struct {
	mu  sync.Mutex
	w   io.Writer
	enc *json.Encoder
	run string
}

// NewJSONLSink creates a sink writing records stamped with the given run ID.
func NewJSONLSink(w io.Writer, runID string) *JSONLSink {
	return &JSONLSink{w: w, enc: json.NewEncoder(w), run: runID}
}

func (s *JSONLSink) Emit(name string, value float64, step int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Encode errors are swallowed on purpose: metric persistence must never
	// abort a training step.
	_ = s.enc.Encode(Record{
		Run:   s.run,
		Step:  step,
		Name:  name,
		Value: value,
		Time:  time.Now().UTC(),
	})
}

// Ring is a fixed-capacity in-memory sink retaining the most recent records.
// The trainer is the only writer; the monitor reads concurrently.
type Ring struct {
	mu   sync.Mutex
	run  string
	buf  []Record
	next int
	full bool
}

// NewRing creates a ring retaining up to capacity records.
func NewRing(capacity int, runID string) *Ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &Ring{run: runID, buf: make([]Record, capacity)}
}

func (r *Ring) Emit(name string, value float64, step int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = Record{
		Run:   r.run,
		Step:  step,
		Name:  name,
		Value: value,
		Time:  time.Now().UTC(),
	}
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
}

// Latest returns up to n of the most recent records, oldest first.
func (r *Ring) Latest(n int) []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.full {
		size = len(r.buf)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]Record, 0, n)
	start := r.next - n
	if start < 0 {
		start += len(r.buf)
	}
	for i := 0; i < n; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Run returns the run ID this ring was created for.
func (r *Ring) Run() string { return r.run }
