package logx

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriterJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := Component(NewWithWriter(Config{}, &buf), "coordinator")
	l.Info().Int("iteration", 2).Msg("coordinator.iteration_started")

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if event["component"] != "coordinator" {
		t.Fatalf("component = %v, want coordinator", event["component"])
	}
	if event["message"] != "coordinator.iteration_started" {
		t.Fatalf("message = %v", event["message"])
	}
	if event["iteration"] != float64(2) {
		t.Fatalf("iteration = %v, want 2", event["iteration"])
	}
}

func TestNewWithWriterDebugLevel(t *testing.T) {
	t.Parallel()

	var quiet bytes.Buffer
	NewWithWriter(Config{}, &quiet).Debug().Msg("hidden")
	if quiet.Len() != 0 {
		t.Fatalf("debug event written at info level: %s", quiet.String())
	}

	var loud bytes.Buffer
	NewWithWriter(Config{Debug: true}, &loud).Debug().Msg("shown")
	if loud.Len() == 0 {
		t.Fatal("debug event missing at debug level")
	}
}
