package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/rs/zerolog"
	"github.com/sensorplan/engine/internal/config"
	"github.com/sensorplan/engine/internal/dispatcher"
	"github.com/sensorplan/engine/internal/geo"
	"github.com/sensorplan/engine/internal/influx"
	"github.com/sensorplan/engine/internal/logging"
	"github.com/sensorplan/engine/internal/state"
	"github.com/sensorplan/engine/internal/util"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"

	AppName string = "sensorplan"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger = slog.Default()

	SessionStartTime time.Time = time.Now()
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	configDir := os.Getenv("SENSORPLAN_CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}
	configErr := config.Load(configDir)

	logFile, closeLogs := setupLogging()
	defer closeLogs()
	if configErr != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", configErr)
	} else {
		Logger.Info("Loaded config", "dir", configDir)
	}
	Logger.Info("Starting up...", "version", CurrentVersion, "build", BuildDate)

	// managers log through zerolog into the same file
	zlog := zerolog.New(logFile).With().Timestamp().Str("app", AppName).Logger()

	store, err := initStorage(zlog)
	if err != nil {
		fmt.Fprintf(stdout, "error: %v\n", err)
		return 1
	}
	defer store.Close()

	metrics := initMetrics(zlog)
	if metrics != nil {
		defer metrics.Close()
	}

	geoCfg := config.GetGeoConfig()
	a := &app{
		state: state.New(SessionStartTime),
		store: store,
		anchor: geo.Anchor{
			Longitude:  geoCfg.Longitude,
			Latitude:   geoCfg.Latitude,
			HeadingDeg: geoCfg.HeadingDeg,
		},
		now: time.Now,
	}
	if metrics != nil {
		a.metrics = metrics
	}
	a.applyAnalysisDefaults(config.GetAnalysisConfig())

	SlogManager.WithSession(func() logging.Session {
		return logging.Session{
			PresetID: a.state.Meta.PresetID,
			Layout:   a.layout,
			Sensors:  len(a.state.Sensors),
		}
	})
	Logger = SlogManager.Logger()

	d, err := dispatcher.New(Logger)
	if err != nil {
		fmt.Fprintf(stdout, "error: %v\n", err)
		return 1
	}
	a.register(d)

	if len(args) > 0 {
		if !execute(d, a, args, stdout) {
			return 1
		}
		return 0
	}

	failed := false
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		tokens, err := util.Tokenize(scanner.Text())
		if err != nil {
			fmt.Fprintf(stdout, "error: %v\n", err)
			failed = true
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		if strings.EqualFold(tokens[0], "quit") || strings.EqualFold(tokens[0], "exit") {
			break
		}
		if !execute(d, a, tokens, stdout) {
			failed = true
		}
	}
	if err := scanner.Err(); err != nil {
		Logger.Error("Failed to read commands", "error", err)
		return 1
	}
	if failed {
		return 1
	}
	return 0
}

// setupLogging opens the session log file and configures SlogManager. The
// returned writer is the log file, or stderr when it could not be opened.
func setupLogging() (io.Writer, func()) {
	SlogManager = logging.NewSlogManager()

	var graylog *gelf.Writer
	if config.GetBool("graylog.enabled") {
		w, err := logging.NewGraylogWriter(config.GetString("graylog.address"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to graylog: %v\n", err)
		} else {
			graylog = w
		}
	}

	logsDir := config.GetString("logsDir")
	if _, err := os.Stat(logsDir); os.IsNotExist(err) {
		os.MkdirAll(logsDir, 0755)
	}
	logPath := logging.LogFilePath(logsDir, AppName, SessionStartTime)

	// check if logPath exists
	// if it does, move it to logPath.old
	if _, err := os.Stat(logPath); err == nil {
		os.Rename(logPath, logPath+".old")
	}

	var out io.Writer = os.Stderr
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log file %s: %v\n", logPath, err)
		SlogManager.Setup(os.Stderr, config.GetString("logLevel"), graylog)
	} else {
		out = logFile
		SlogManager.Setup(logFile, config.GetString("logLevel"), graylog)
	}
	Logger = SlogManager.Logger()

	return out, func() {
		SlogManager.Close()
		if logFile != nil {
			logFile.Close()
		}
	}
}

// initMetrics connects the evaluation sink. It returns nil when the sink is
// disabled or could not be set up.
func initMetrics(log zerolog.Logger) *influx.Manager {
	m := influx.NewManager(log, config.GetInfluxConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Connect(ctx); err != nil {
		if !errors.Is(err, influx.ErrDisabled) {
			Logger.Error("Failed to set up metrics sink", "error", err)
		}
		return nil
	}
	return m
}

// execute dispatches one command and prints its result.
func execute(d *dispatcher.Dispatcher, a *app, tokens []string, out io.Writer) bool {
	e := dispatcher.Event{
		Command:   tokens[0],
		Args:      tokens[1:],
		Timestamp: time.Now(),
	}
	result, err := d.Dispatch(e)
	if err != nil {
		a.state = state.Reduce(a.state, state.SetError{Message: err.Error()})
		fmt.Fprintf(out, "error: %v\n", err)
		return false
	}
	if err := printResult(out, result); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return false
	}
	return true
}

func printResult(out io.Writer, result any) error {
	switch v := result.(type) {
	case nil:
		return nil
	case string:
		_, err := fmt.Fprintln(out, v)
		return err
	case []byte:
		_, err := fmt.Fprintln(out, string(v))
		return err
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
