// Package logging provides the structured logger used throughout the planning core. It wraps
// go.uber.org/zap behind a narrow interface so that every component logs the same way regardless
// of which concrete sink is configured.
package logging

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Level is a log severity. It round-trips through JSON as its string form so it can sit directly
// in a Configuration struct decoded from a config file.
type Level int8

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (level Level) String() string {
	switch level {
	case DEBUG:
		return "Debug"
	case INFO:
		return "Info"
	case WARN:
		return "Warn"
	case ERROR:
		return "Error"
	default:
		return "Unknown"
	}
}

// LevelFromString parses a level name, accepting "warning" as an alias for WARN to match common
// operator usage.
func LevelFromString(levelStr string) (Level, error) {
	switch strings.ToLower(levelStr) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return 0, errors.Errorf("unknown log level %q", levelStr)
	}
}

func (level Level) zapLevel() zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// MarshalJSON implements json.Marshaler.
func (level Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(level.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (level *Level) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := LevelFromString(str)
	if err != nil {
		return err
	}
	*level = parsed
	return nil
}
