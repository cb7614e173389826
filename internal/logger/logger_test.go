package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tdewolff/test"
)

func TestParseLevel(t *testing.T) {
	var tts = []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"-1", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tts {
		t.Run(tt.level, func(t *testing.T) {
			test.T(t, ParseLevel(tt.level), tt.expected)
		})
	}
}

func TestNew(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	b := &bytes.Buffer{}
	log := New(b, "info")
	log.Debug().Msg("hidden")
	log.Info().Str("level_id", "0").Msg("rendered")

	var entry map[string]interface{}
	test.Error(t, json.Unmarshal(b.Bytes(), &entry))
	test.T(t, entry["message"], "rendered")
	test.T(t, entry["service"], "maprender")
	test.T(t, entry["level_id"], "0")
	_, ok := entry["time"]
	test.That(t, ok)
}
