package testutil

import (
	"testing"

	"github.com/escolaware/secretaria/core"
	"github.com/escolaware/secretaria/core/collection"
)

// Logger funnels application logs into the test output.
type Logger struct {
	t *testing.T
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger {
	return &Logger{t: t}
}

func (l Logger) log(level, msg string, args []interface{}) {
	l.t.Logf("%s: %s %v", level, msg, args)
}

func (l Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l Logger) Fatal(msg string, args ...interface{}) {
	l.log("FATAL", msg, args)
	l.t.FailNow()
}

// CreateRecord seeds a record through the service, failing the test on error.
func CreateRecord(t *testing.T, svc *collection.Service, payload collection.Record) collection.Record {
	rec, err := svc.Create(payload)
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return rec
}
