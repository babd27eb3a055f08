// Package dispatcher routes command lines to their handlers. Handlers run
// synchronously on the caller's goroutine, one at a time, so a handler may
// reduce the session state without locking.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrUnknownCommand is returned by Dispatch when no handler matches.
var ErrUnknownCommand = errors.New("unknown command")

// Event is one command line, split into the command word and its arguments.
type Event struct {
	Command   string
	Args      []string
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging. *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*entry)

type entry struct {
	handler HandlerFunc
	usage   string
	logged  bool
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(e *entry) {
		e.logged = true
	}
}

// Usage sets the argument synopsis shown by Usage, e.g. "<sensor> <x,y,z>".
func Usage(args string) Option {
	return func(e *entry) {
		e.usage = args
	}
}

// Dispatcher routes events to registered handlers. Command words are
// matched case-insensitively.
type Dispatcher struct {
	entries map[string]*entry
	logger  Logger

	processed metric.Int64Counter
	failed    metric.Int64Counter
	duration  metric.Float64Histogram
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		entries: make(map[string]*entry),
		logger:  logger,
	}

	m := meter()

	var err error
	d.processed, err = m.Int64Counter(
		"dispatcher.commands.processed",
		metric.WithDescription("Total commands processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"dispatcher.commands.failed",
		metric.WithDescription("Total commands whose handler returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	d.duration, err = m.Float64Histogram(
		"dispatcher.command.duration",
		metric.WithDescription("Command handling time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given command with optional configuration.
// Registering the same command twice replaces the earlier handler.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	command = strings.ToLower(command)
	e := &entry{}
	for _, opt := range opts {
		opt(e)
	}

	handler := d.withMetrics(command, h)
	if e.logged {
		handler = d.withLogging(command, handler)
	}
	e.handler = handler

	d.entries[command] = e
}

// Dispatch routes an event to its registered handler.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	e.Command = strings.ToLower(e.Command)
	ent, ok := d.entries[e.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, e.Command)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return ent.handler(e)
}

// Commands lists the registered commands in lexical order.
func (d *Dispatcher) Commands() []string {
	out := make([]string, 0, len(d.entries))
	for cmd := range d.entries {
		out = append(out, cmd)
	}
	slices.Sort(out)
	return out
}

// Usage returns "command args" for a registered command, or the bare
// command when no synopsis was given.
func (d *Dispatcher) Usage(command string) (string, bool) {
	command = strings.ToLower(command)
	ent, ok := d.entries[command]
	if !ok {
		return "", false
	}
	if ent.usage == "" {
		return command, true
	}
	return command + " " + ent.usage, true
}

// HasHandler returns true if a handler is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.entries[strings.ToLower(command)]
	return ok
}

func (d *Dispatcher) withMetrics(command string, h HandlerFunc) HandlerFunc {
	cmdAttr := metric.WithAttributes(attribute.String("command", command))
	return func(e Event) (any, error) {
		start := time.Now()
		result, err := h(e)

		ctx := context.Background()
		d.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, cmdAttr)
		d.processed.Add(ctx, 1, cmdAttr)
		if err != nil {
			d.failed.Add(ctx, 1, cmdAttr)
		}
		return result, err
	}
}

func (d *Dispatcher) withLogging(command string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling command", "command", command, "args", e.Args)

		result, err := h(e)

		if err != nil {
			d.logger.Error("command failed", "command", command, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("command complete", "command", command, "duration", time.Since(start))
		}

		return result, err
	}
}
