package berth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xraph/go-utils/log"
)

type logEntry struct {
	level  string
	msg    string
	fields map[string]any
}

// recordingLogger keeps every entry in memory.
type recordingLogger struct {
	entries []logEntry
	mu      sync.Mutex
}

func (l *recordingLogger) record(level, msg string, fields []log.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := logEntry{level: level, msg: msg, fields: make(map[string]any, len(fields))}
	for _, f := range fields {
		entry.fields[f.Key()] = f.Value()
	}
	l.entries = append(l.entries, entry)
}

func (l *recordingLogger) Debug(msg string, fields ...log.Field) { l.record("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields ...log.Field)  { l.record("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...log.Field)  { l.record("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...log.Field) { l.record("error", msg, fields) }

func (l *recordingLogger) find(msg string) []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []logEntry
	for _, e := range l.entries {
		if e.msg == msg {
			out = append(out, e)
		}
	}
	return out
}

func TestMiddleware_BeforeAfterResolve(t *testing.T) {
	c := New()
	var calls []string

	c.Use(&FuncMiddleware{
		BeforeResolveFunc: func(ctx context.Context, name string) error {
			calls = append(calls, "before:"+name)
			return nil
		},
		AfterResolveFunc: func(ctx context.Context, name string, service any, err error) error {
			calls = append(calls, "after:"+name)
			return nil
		},
	})

	require.NoError(t, RegisterValue(c, "test", "value"))

	_, err := Resolve[string](c, "test")
	require.NoError(t, err)

	assert.Equal(t, []string{"before:test", "after:test"}, calls)
}

func TestMiddleware_BeforeResolveError(t *testing.T) {
	c := New()
	expectedErr := errors.New("access denied")
	created := false

	c.Use(&FuncMiddleware{
		BeforeResolveFunc: func(ctx context.Context, name string) error {
			return expectedErr
		},
	})

	require.NoError(t, c.Register("test", func(c Container) (any, error) {
		created = true
		return "value", nil
	}))

	_, err := c.Resolve("test")
	assert.ErrorIs(t, err, expectedErr)
	assert.False(t, created)
}

func TestMiddleware_AfterResolveError(t *testing.T) {
	c := New()
	expectedErr := errors.New("post-resolve validation failed")

	c.Use(&FuncMiddleware{
		AfterResolveFunc: func(ctx context.Context, name string, service any, err error) error {
			return expectedErr
		},
	})

	require.NoError(t, RegisterValue(c, "test", "value"))

	_, err := c.Resolve("test")
	assert.ErrorIs(t, err, expectedErr)
}

func TestMiddleware_BeforeAfterStart(t *testing.T) {
	c := New()
	var calls []string

	c.Use(&FuncMiddleware{
		BeforeStartFunc: func(ctx context.Context, name string) error {
			calls = append(calls, "beforeStart:"+name)
			return nil
		},
		AfterStartFunc: func(ctx context.Context, name string, err error) error {
			calls = append(calls, "afterStart:"+name)
			return nil
		},
	})

	require.NoError(t, RegisterSingleton(c, "svc", func(c Container) (*mockService, error) {
		return &mockService{name: "svc"}, nil
	}))

	svc, err := Resolve[*mockService](c, "svc")
	require.NoError(t, err)
	assert.Equal(t, 1, svc.started)
	assert.Equal(t, []string{"beforeStart:svc", "afterStart:svc"}, calls)
}

func TestMiddleware_BeforeStartError(t *testing.T) {
	c := New()
	expectedErr := errors.New("start blocked")

	c.Use(&FuncMiddleware{
		BeforeStartFunc: func(ctx context.Context, name string) error {
			return expectedErr
		},
	})

	require.NoError(t, RegisterSingleton(c, "svc", func(c Container) (*mockService, error) {
		return &mockService{name: "svc"}, nil
	}))

	_, err := c.Resolve("svc")
	assert.ErrorIs(t, err, expectedErr)
	assert.False(t, c.IsStarted("svc"))
}

func TestMiddleware_Order(t *testing.T) {
	c := New()
	var calls []string

	for _, id := range []string{"first", "second"} {
		c.Use(&FuncMiddleware{
			BeforeResolveFunc: func(ctx context.Context, name string) error {
				calls = append(calls, id)
				return nil
			},
		})
	}

	require.NoError(t, RegisterValue(c, "test", 1))
	_, err := c.Resolve("test")
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestMiddleware_AfterFire(t *testing.T) {
	c := New()

	type fired struct {
		event     string
		observers int
		err       error
	}
	var got []fired

	c.Use(&FuncMiddleware{
		AfterFireFunc: func(ctx context.Context, eventType string, observers int, err error) {
			got = append(got, fired{eventType, observers, err})
		},
	})

	require.NoError(t, Observe[string](c, "a", func(ctx context.Context, s string) error { return nil }))
	require.NoError(t, Observe[string](c, "b", func(ctx context.Context, s string) error { return nil }))

	require.NoError(t, EventOf[string](c).Fire(context.Background(), "hi"))
	require.NoError(t, EventOf[int](c).Fire(context.Background(), 1))

	require.Len(t, got, 2)
	assert.Equal(t, fired{"string", 2, nil}, got[0])
	assert.Equal(t, fired{"int", 0, nil}, got[1])
}

func TestLoggingMiddleware_Resolve(t *testing.T) {
	logger := &recordingLogger{}
	c := New()
	c.Use(NewLoggingMiddleware(logger))

	require.NoError(t, RegisterValue(c, "test", &mockService{name: "test"}))
	_, err := c.Resolve("test")
	require.NoError(t, err)

	resolved := logger.find("resolved")
	require.Len(t, resolved, 1)
	assert.Equal(t, "debug", resolved[0].level)
	assert.Equal(t, "test", resolved[0].fields["service"])
	assert.Equal(t, "*berth.mockService", resolved[0].fields["type"])

	started := logger.find("service started")
	require.Len(t, started, 1)
	assert.Equal(t, "test", started[0].fields["service"])
}

func TestLoggingMiddleware_Failures(t *testing.T) {
	logger := &recordingLogger{}
	c := New()
	c.Use(NewLoggingMiddleware(logger))

	_, err := c.Resolve("missing")
	require.Error(t, err)

	failed := logger.find("resolve failed")
	require.Len(t, failed, 1)
	assert.Equal(t, "warn", failed[0].level)
	assert.Equal(t, "missing", failed[0].fields["service"])

	require.NoError(t, RegisterValue(c, "broken", &mockService{name: "broken", startErr: errors.New("boom")}))
	_, err = c.Resolve("broken")
	require.Error(t, err)

	startFailed := logger.find("service failed to start")
	require.Len(t, startFailed, 1)
	assert.Equal(t, "error", startFailed[0].level)
}

func TestLoggingMiddleware_Events(t *testing.T) {
	logger := &recordingLogger{}
	c := New()
	c.Use(NewLoggingMiddleware(logger))

	require.NoError(t, Observe[string](c, "failing", func(ctx context.Context, s string) error {
		return errors.New("rejected")
	}))

	err := EventOf[string](c).Fire(context.Background(), "news")
	require.Error(t, err)

	failed := logger.find("event delivery failed")
	require.Len(t, failed, 1)
	assert.Equal(t, "string", failed[0].fields["event"])
	assert.Empty(t, logger.find("event delivered"))
}
