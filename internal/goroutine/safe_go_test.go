package goroutine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
	done  chan struct{}
}

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
	l.mu.Unlock()
	close(l.done)
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	log := &recordingLogger{done: make(chan struct{})}
	rh := NewRecoveryHandler(log)

	rh.SafeGo("test", func() {
		panic("boom")
	})

	<-log.done
	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Len(t, log.lines, 1)
	assert.Contains(t, log.lines[0], "boom")
	assert.Contains(t, log.lines[0], "test")
}
