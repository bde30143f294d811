// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("new should successfully create a logger", func(t *testing.T) {
		l := New(slog.LevelInfo)
		if l == nil {
			t.Fatal("expected logger to be non-nil")
		}
	})
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  []string
		skip  []string
	}{
		{"debug level logs everything", slog.LevelDebug, []string{"msg=d1", "msg=i1", "msg=w1", "msg=e1"}, nil},
		{"info level skips debug", slog.LevelInfo, []string{"msg=i1", "msg=w1", "msg=e1"}, []string{"msg=d1"}},
		{"warn level skips info", slog.LevelWarn, []string{"msg=w1", "msg=e1"}, []string{"msg=d1", "msg=i1"}},
		{"error level only logs errors", slog.LevelError, []string{"msg=e1"}, []string{"msg=d1", "msg=i1", "msg=w1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			l := NewLogger(tc.level, buf)
			l.Debug("d1")
			l.Info("i1")
			l.Warn("w1")
			l.Error("e1")

			for _, w := range tc.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("expected %q to be logged, got: %q", w, buf.String())
				}
			}
			for _, s := range tc.skip {
				if strings.Contains(buf.String(), s) {
					t.Errorf("did not expect %q to be logged, got: %q", s, buf.String())
				}
			}
		})
	}
}

func TestDiscard(t *testing.T) {
	t.Run("discard logger drops records", func(t *testing.T) {
		l := Discard()
		if l.Enabled(t.Context(), slog.LevelError) {
			t.Error("expected discard logger to be disabled for all levels")
		}
	})
}

func TestErr(t *testing.T) {
	t.Run("error attributes should be logged", func(t *testing.T) {
		buf := bytes.NewBuffer(nil)
		l := NewLogger(slog.LevelDebug, buf)
		want := "intentionally failing"
		l.Error("place lookup failed", Err(errors.New(want)))

		if !strings.Contains(buf.String(), `error="`+want+`"`) {
			t.Errorf("expected error message to contain %q, got: %q", want, buf.String())
		}
	})
}
