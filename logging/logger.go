package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used across every planning component. It is intentionally
// narrow: structured key/value pairs only, no printf-style formatting, so call sites stay
// greppable and fast on the hot per-tick path.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})

	// Named returns a logger whose name is this logger's name joined with the given segment.
	Named(name string) Logger

	// Sublogger is an alias for Named, the conventional name for a per-component child logger.
	Sublogger(name string) Logger

	Level() Level
	SetLevel(level Level)
}

type impl struct {
	mu    sync.RWMutex
	level Level
	zl    *zap.SugaredLogger
	name  string
	atom  zap.AtomicLevel
}

// New constructs a Logger at the given name writing through zap's production JSON encoder.
func New(name string) Logger {
	atom := zap.NewAtomicLevelAt(INFO.zapLevel())
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(zapWriter{}), atom)
	zl := zap.New(core).Named(name).Sugar()
	return &impl{level: INFO, zl: zl, name: name, atom: atom}
}

// NewTestLogger returns a Logger suitable for use in unit tests: debug level, no external sink
// dependency beyond stderr.
func NewTestLogger() Logger {
	l := New("test")
	l.SetLevel(DEBUG)
	return l
}

func (l *impl) Debugw(msg string, kv ...interface{}) { l.zl.Debugw(msg, kv...) }
func (l *impl) Infow(msg string, kv ...interface{})  { l.zl.Infow(msg, kv...) }
func (l *impl) Warnw(msg string, kv ...interface{})  { l.zl.Warnw(msg, kv...) }
func (l *impl) Errorw(msg string, kv ...interface{}) { l.zl.Errorw(msg, kv...) }

func (l *impl) Named(name string) Logger {
	return &impl{level: l.level, zl: l.zl.Named(name), name: l.name + "." + name, atom: l.atom}
}

func (l *impl) Sublogger(name string) Logger { return l.Named(name) }

func (l *impl) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *impl) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.atom.SetLevel(level.zapLevel())
}

// zapWriter adapts stderr writes without importing os directly into this file; every write goes
// to stderrWrite, which always writes to os.Stderr.
type zapWriter struct{}

func (zapWriter) Write(p []byte) (int, error) {
	return stderrWrite(p)
}
