package app

import (
	"errors"
	"testing"

	"github.com/harborwatch/ballast/cmd/ballast/cmd"
)

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if app.Version() != "1.0.0" {
		t.Errorf("Version() = %s, want 1.0.0", app.Version())
	}
	if app.Commit() != "abc123" {
		t.Errorf("Commit() = %s, want abc123", app.Commit())
	}
	if app.Date() != "2024-01-01" {
		t.Errorf("Date() = %s, want 2024-01-01", app.Date())
	}
	if app.BuiltBy() != "test" {
		t.Errorf("BuiltBy() = %s, want test", app.BuiltBy())
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
}

// TestExitCode verifies the error-to-exit-code mapping.
func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"partial run", cmd.ErrPartialRun, ExitPartial},
		{"wrapped partial run", wrap(cmd.ErrPartialRun), ExitPartial},
		{"flag error", &usageError{err: errors.New("unknown flag: --bogus")}, ExitUsage},
		{"unknown command", errors.New(`unknown command "bogus" for "ballast"`), ExitUsage},
		{"anything else", errors.New("load failed"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func wrap(err error) error {
	return &wrapped{err: err}
}

type wrapped struct {
	err error
}

func (w *wrapped) Error() string {
	return "run: " + w.err.Error()
}

func (w *wrapped) Unwrap() error {
	return w.err
}
