package dispatcher

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// testLogger implements Logger for testing
type testLogger struct {
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	logger := &testLogger{}

	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	return d, logger
}

func TestDispatcher_Handler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var got Event
	d.Register("move", func(e Event) (any, error) {
		got = e
		return "moved", nil
	})

	result, err := d.Dispatch(Event{Command: "move", Args: []string{"front", "1,0,1"}})

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "moved" {
		t.Errorf("expected 'moved', got %v", result)
	}
	if len(got.Args) != 2 || got.Args[1] != "1,0,1" {
		t.Errorf("handler saw args %v", got.Args)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected dispatch to stamp the event")
	}
}

func TestDispatcher_KeepsTimestamp(t *testing.T) {
	d, _ := newTestDispatcher(t)

	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	var got time.Time
	d.Register("status", func(e Event) (any, error) {
		got = e.Timestamp
		return nil, nil
	})

	d.Dispatch(Event{Command: "status", Timestamp: ts})
	if !got.Equal(ts) {
		t.Errorf("expected %v, got %v", ts, got)
	}
}

func TestDispatcher_CaseInsensitive(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register("Coverage", func(e Event) (any, error) { return e.Command, nil })

	result, err := d.Dispatch(Event{Command: "COVERAGE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "coverage" {
		t.Errorf("expected lowered command, got %v", result)
	}
	if !d.HasHandler("coverage") {
		t.Error("expected handler under the lowered name")
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.Dispatch(Event{Command: "teleport"})

	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
	if err == nil || err.Error() != "unknown command: teleport" {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestDispatcher_HandlerError(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register("load", func(e Event) (any, error) {
		return nil, fmt.Errorf("layout not found: %s", e.Args[0])
	})

	_, err := d.Dispatch(Event{Command: "load", Args: []string{"city"}})
	if err == nil || err.Error() != "layout not found: city" {
		t.Errorf("expected handler error, got %v", err)
	}
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register("logged", func(e Event) (any, error) {
		return "ok", nil
	}, Logged())

	d.Dispatch(Event{Command: "logged", Args: []string{"a", "b"}})

	if len(logger.messages) != 2 {
		t.Fatalf("expected 2 log messages, got %d", len(logger.messages))
	}
	if !strings.HasPrefix(logger.messages[0], "DEBUG: handling command") {
		t.Errorf("unexpected first message %q", logger.messages[0])
	}
}

func TestDispatcher_LoggedHandlerError(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register("fail", func(e Event) (any, error) {
		return nil, fmt.Errorf("test error")
	}, Logged())

	d.Dispatch(Event{Command: "fail"})

	hasError := false
	for _, msg := range logger.messages {
		if strings.HasPrefix(msg, "ERROR") {
			hasError = true
			break
		}
	}

	if !hasError {
		t.Error("expected error log message")
	}
}

func TestDispatcher_UnloggedHandlerIsQuiet(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register("quiet", func(e Event) (any, error) { return nil, errors.New("boom") })
	d.Dispatch(Event{Command: "quiet"})

	if len(logger.messages) != 0 {
		t.Errorf("expected no log messages, got %v", logger.messages)
	}
}

func TestDispatcher_HasHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register("exists", func(e Event) (any, error) { return nil, nil })

	if !d.HasHandler("exists") {
		t.Error("expected handler to exist")
	}

	if d.HasHandler("missing") {
		t.Error("expected handler to not exist")
	}
}

func TestDispatcher_RegisterReplaces(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register("preset", func(e Event) (any, error) { return "first", nil })
	d.Register("preset", func(e Event) (any, error) { return "second", nil }, Usage("<id>"))

	result, _ := d.Dispatch(Event{Command: "preset"})
	if result != "second" {
		t.Errorf("expected replaced handler, got %v", result)
	}
	if len(d.Commands()) != 1 {
		t.Errorf("expected one command, got %v", d.Commands())
	}
}

func TestDispatcher_Commands(t *testing.T) {
	d, _ := newTestDispatcher(t)

	noop := func(e Event) (any, error) { return nil, nil }
	d.Register("preset", noop)
	d.Register("coverage", noop)
	d.Register("move", noop)

	got := d.Commands()
	want := []string{"coverage", "move", "preset"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDispatcher_Usage(t *testing.T) {
	d, _ := newTestDispatcher(t)

	noop := func(e Event) (any, error) { return nil, nil }
	d.Register("move", noop, Usage("<sensor> <x,y,z>"), Logged())
	d.Register("coverage", noop)

	tests := []struct {
		command string
		want    string
		ok      bool
	}{
		{"move", "move <sensor> <x,y,z>", true},
		{"MOVE", "move <sensor> <x,y,z>", true},
		{"coverage", "coverage", true},
		{"rotate", "", false},
	}
	for _, tt := range tests {
		got, ok := d.Usage(tt.command)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Usage(%q) = %q, %v; want %q, %v", tt.command, got, ok, tt.want, tt.ok)
		}
	}
}
