package telemetry

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
)

func TestLogLevel(t *testing.T) {
	tests := []struct {
		env  string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.env)
			if got := LogLevel(); got != tt.want {
				t.Errorf("LogLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetupLoggerFormats(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("LOG_LEVEL", "INFO")

	t.Run("json", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "")
		var buf bytes.Buffer
		WithScene(SetupLogger(&buf), "arena").Info("hello", "n", 1)

		var rec map[string]any
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
		}
		if rec["msg"] != "hello" || rec["scene"] != "arena" {
			t.Errorf("record = %v, want msg=hello scene=arena", rec)
		}
	})

	t.Run("text", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "text")
		var buf bytes.Buffer
		WithEntity(SetupLogger(&buf), 42).Info("hello")
		if out := buf.String(); !strings.Contains(out, "msg=hello") || !strings.Contains(out, "entity=42") {
			t.Errorf("text output = %q", out)
		}
	})

	t.Run("level filter", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "text")
		var buf bytes.Buffer
		SetupLogger(&buf).Debug("hidden")
		if buf.Len() != 0 {
			t.Errorf("debug record written at INFO level: %q", buf.String())
		}
	})
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	var obs graph.Observer = m
	obs.OnTransition(graph.TransitionEvent{Kind: graph.TransitionStarted})
	obs.OnTransition(graph.TransitionEvent{Kind: graph.TransitionStarted})
	obs.OnTransition(graph.TransitionEvent{Kind: graph.TransitionCompleted})
	m.ObserveUpdate(2*time.Millisecond, 5)
	m.ObserveUpdate(3*time.Millisecond, 7)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	got := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			for _, l := range metric.GetLabel() {
				key += "{" + l.GetValue() + "}"
			}
			switch {
			case metric.GetCounter() != nil:
				got[key] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				got[key] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				got[key] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}

	want := map[string]float64{
		"oxy_anim_frames_total":                 2,
		"oxy_anim_transitions_total{started}":   2,
		"oxy_anim_transitions_total{completed}": 1,
		"oxy_anim_scene_update_seconds":         2,
		"oxy_anim_entities":                     7,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveUpdate(time.Millisecond, 1)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "oxy_anim_frames_total 1") {
		t.Errorf("exposition missing frame counter:\n%s", body)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.OnTransition(graph.TransitionEvent{})
	m.ObserveUpdate(time.Second, 1)
}
