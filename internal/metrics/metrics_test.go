package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/c3nav/maprender"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRender("svg", time.Second, nil)
	m.CacheHit(maprender.RenderDataCache)
	m.CacheMiss(maprender.ResponseCache)
	if err := m.WriteToTextfile(filepath.Join(t.TempDir(), "maprender.prom")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestObserveRender(t *testing.T) {
	m := New()
	m.ObserveRender("svg", 12*time.Millisecond, nil)
	m.ObserveRender("png", time.Second, &maprender.ExternalToolError{Tool: "rsvg-convert", Err: errors.New("exit status 1")})
	m.ObserveRender("svg", time.Millisecond, maprender.Preconditionf("altitudes out of order"))
	m.ObserveRender("gif", time.Millisecond, fmt.Errorf("%w: gif", maprender.ErrUnknownFormat))
	m.CacheHit(maprender.RenderDataCache)
	m.CacheMiss(maprender.ResponseCache)

	for _, tt := range []struct {
		labels []string
		want   float64
	}{
		{[]string{"svg", "ok"}, 1},
		{[]string{"png", "external_tool"}, 1},
		{[]string{"svg", "precondition"}, 1},
		{[]string{"gif", "not_found"}, 1},
		{[]string{"svg", "error"}, 0},
	} {
		if got := testutil.ToFloat64(m.renders.WithLabelValues(tt.labels...)); got != tt.want {
			t.Fatalf("expected renders_total%v = %v, got %v", tt.labels, tt.want, got)
		}
	}
	if got := testutil.ToFloat64(m.cacheRequests.WithLabelValues(maprender.RenderDataCache, "hit")); got != 1 {
		t.Fatalf("expected one render data hit, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheRequests.WithLabelValues(maprender.ResponseCache, "miss")); got != 1 {
		t.Fatalf("expected one response miss, got %v", got)
	}
	if got := testutil.CollectAndCount(m.renderDuration); got != 3 {
		t.Fatalf("expected duration series for 3 formats, got %d", got)
	}
}

func TestWriteToTextfile(t *testing.T) {
	m := New()
	m.ObserveRender("blend.py", time.Millisecond, errors.New("disk full"))

	filename := filepath.Join(t.TempDir(), "maprender.prom")
	if err := m.WriteToTextfile(filename); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := string(b)
	for _, want := range []string{
		`maprender_renders_total{format="blend.py",status="error"} 1`,
		`maprender_render_duration_seconds_count{format="blend.py"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in textfile, got %s", want, body)
		}
	}
}
