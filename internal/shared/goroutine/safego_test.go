package goroutine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vistream-inc/vistream/internal/shared/logger"
)

// recordingLogger captures log messages so tests can assert on them.
type recordingLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *recordingLogger) record(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func (l *recordingLogger) recorded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.messages...)
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record(msg) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record(msg) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record(msg) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record(msg) }

func (l *recordingLogger) With(args ...any) logger.Interface  { return l }
func (l *recordingLogger) Named(name string) logger.Interface { return l }

func (l *recordingLogger) Debugw(msg string, kv ...interface{}) { l.record(msg) }
func (l *recordingLogger) Infow(msg string, kv ...interface{})  { l.record(msg) }
func (l *recordingLogger) Warnw(msg string, kv ...interface{})  { l.record(msg) }
func (l *recordingLogger) Errorw(msg string, kv ...interface{}) { l.record(msg) }

func waitFor(t *testing.T, log *recordingLogger, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, m := range log.recorded() {
			if m == msg {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("log message %q never appeared, got %v", msg, log.recorded())
}

func TestSafeGo_RunsFunctionAndLogsCompletion(t *testing.T) {
	log := &recordingLogger{}
	done := make(chan struct{})

	SafeGo(log, "test-job", func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("goroutine never ran")
	}
	waitFor(t, log, "background job finished")
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	log := &recordingLogger{}

	require.NotPanics(t, func() {
		SafeGo(log, "test-job", func() { panic("boom") })
		waitFor(t, log, "background job panicked")
	})
	assert.NotContains(t, log.recorded(), "background job finished")
}
