package metrics

import (
	"bytes"
	"math"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestJSONLSinkWritesOneLinePerEmit(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONLSink(&buf, "run-1")

	sink.Emit("elbo", -42.5, 0)
	sink.Emit("likelihood", -40.0, 0)
	sink.Emit("elbo", -41.0, 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
	}

	var rec Record
	if err := json.Unmarshal([]byte(lines[2]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.Run != "run-1" || rec.Name != "elbo" || rec.Step != 1 || rec.Value != -41.0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestJSONLSinkPreservesNaN(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONLSink(&buf, "run-1")
	sink.Emit("elbo", math.NaN(), 3)
	out := buf.String()
	if !strings.Contains(out, `"name":"elbo"`) || !strings.Contains(out, `"NaN"`) {
		t.Fatalf("NaN emission must stay visible, got: %q", out)
	}
}

func TestRingLatest(t *testing.T) {
	r := NewRing(4, "run-2")
	for i := 0; i < 6; i++ {
		r.Emit("elbo", float64(i), i)
	}

	got := r.Latest(0)
	if len(got) != 4 {
		t.Fatalf("expected 4 retained records, got %d", len(got))
	}
	for i, rec := range got {
		if rec.Step != i+2 {
			t.Fatalf("record %d has step %d, want %d (oldest first)", i, rec.Step, i+2)
		}
	}

	got = r.Latest(2)
	if len(got) != 2 || got[0].Step != 4 || got[1].Step != 5 {
		t.Fatalf("Latest(2) returned %+v", got)
	}
}

func TestRingPartial(t *testing.T) {
	r := NewRing(8, "run-3")
	r.Emit("elbo", 1, 0)
	r.Emit("klU", 2, 0)

	got := r.Latest(0)
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Name != "elbo" || got[1].Name != "klU" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestMultiFansOut(t *testing.T) {
	a := NewRing(4, "r")
	b := NewRing(4, "r")
	Multi{a, b}.Emit("elbo", 1.5, 7)

	for _, ring := range []*Ring{a, b} {
		got := ring.Latest(0)
		if len(got) != 1 || got[0].Value != 1.5 || got[0].Step != 7 {
			t.Fatalf("fan-out missed a sink: %+v", got)
		}
	}
}
