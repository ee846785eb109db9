package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	LOG_LEVEL                  = "JOBSUBMIT_LOGLEVEL"
	LOG_PATH                   = "JOBSUBMIT_LOGPATH"
	LOG_FILENAME               = "jobsubmit.log"
	JOBSUBMIT_DEBUG_LOGGING    = 10
	JOBSUBMIT_INFO_LOGGING     = 20
	JOBSUBMIT_WARNING_LOGGING  = 30
	JOBSUBMIT_ERROR_LOGGING    = 40
	JOBSUBMIT_CRITICAL_LOGGING = 50
)

var (
	Log   = log.New(os.Stderr, "JOB-SUBMIT ", log.LstdFlags)
	level = JOBSUBMIT_INFO_LOGGING
	file  *os.File
)

// Setup configures the process-wide logger from the environment.
// It is called once at startup; Close releases the optional log file.
func Setup() error {
	level = parseLevel(os.Getenv(LOG_LEVEL))
	var wrt io.Writer = os.Stderr
	if logPath := os.Getenv(LOG_PATH); len(logPath) > 0 {
		if err := os.MkdirAll(logPath, 0o755); err != nil {
			return fmt.Errorf("logger: ensure log dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(logPath, LOG_FILENAME),
			os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("logger: open log file: %w", err)
		}
		file = f
		wrt = io.MultiWriter(os.Stderr, f)
	}
	Log = log.New(wrt, "JOB-SUBMIT ", log.LstdFlags)
	return nil
}

// SetOutput redirects the logger and sets its level. Used by tests.
func SetOutput(w io.Writer, lvl int) {
	Log = log.New(w, "JOB-SUBMIT ", 0)
	level = lvl
}

func Close() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// parseLevel accepts either the numeric level or its name.
func parseLevel(env string) int {
	if n, err := strconv.Atoi(env); err == nil {
		return n
	}
	switch strings.ToUpper(strings.TrimSpace(env)) {
	case "DEBUG":
		return JOBSUBMIT_DEBUG_LOGGING
	case "WARNING", "WARN":
		return JOBSUBMIT_WARNING_LOGGING
	case "ERROR":
		return JOBSUBMIT_ERROR_LOGGING
	case "CRITICAL":
		return JOBSUBMIT_CRITICAL_LOGGING
	default:
		return JOBSUBMIT_INFO_LOGGING
	}
}

func LogLevel() int {
	return level
}

func getLogLevel(level int) string {
	switch level := level; level {
	case JOBSUBMIT_DEBUG_LOGGING:
		return "DEBUG"
	case JOBSUBMIT_INFO_LOGGING:
		return "INFO"
	case JOBSUBMIT_WARNING_LOGGING:
		return "WARNING"
	case JOBSUBMIT_ERROR_LOGGING:
		return "ERROR"
	default:
		return "CRITICAL"
	}
}

func printObj(level int, name string, v interface{}) {
	if LogLevel() <= level {
		data, _ := json.MarshalIndent(v, "", " ")
		Log.Printf("%s %s:\n%s\n", getLogLevel(level), name, data)
	}
}

func printf(level int, format string, a ...interface{}) {
	if LogLevel() <= level {
		prefix := getLogLevel(level) + " "
		Log.Printf(prefix+format, a...)
	}
}

func DebugObj(name string, v interface{}) {
	printObj(JOBSUBMIT_DEBUG_LOGGING, name, v)
}

func DebugPrintf(format string, a ...interface{}) {
	printf(JOBSUBMIT_DEBUG_LOGGING, format, a...)
}

func InfoObj(name string, v interface{}) {
	printObj(JOBSUBMIT_INFO_LOGGING, name, v)
}

func InfoPrintf(format string, a ...interface{}) {
	printf(JOBSUBMIT_INFO_LOGGING, format, a...)
}

func WarningPrintf(format string, a ...interface{}) {
	printf(JOBSUBMIT_WARNING_LOGGING, format, a...)
}

func ErrorPrintf(format string, a ...interface{}) {
	printf(JOBSUBMIT_ERROR_LOGGING, format, a...)
}

func CriticalPrintf(format string, a ...interface{}) {
	printf(JOBSUBMIT_CRITICAL_LOGGING, format, a...)
}
