package berth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engine interface {
	Power() int
}

type v8 struct{ power int }

func (e *v8) Power() int { return e.power }

type electric struct{}

func (e *electric) Power() int { return 300 }

type garage struct {
	engine engine
	c      Container
}

func newV8() *v8 { return &v8{power: 450} }

func newGarage(e engine, c Container) *garage { return &garage{engine: e, c: c} }

type chicken struct{ egg *egg }
type egg struct{ chicken *chicken }

func TestAnalyzeConstructor(t *testing.T) {
	info, err := analyzeConstructor(newGarage)
	require.NoError(t, err)
	require.Len(t, info.params, 2)
	assert.Equal(t, paramBean, info.params[0].kind)
	assert.Equal(t, paramContainer, info.params[1].kind)
	assert.False(t, info.hasError)

	info, err = analyzeConstructor(func(ev *Event[string]) (*garage, error) { return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, paramEvent, info.params[0].kind)
	assert.True(t, info.hasError)
}

func TestAnalyzeConstructor_Invalid(t *testing.T) {
	tests := []struct {
		name string
		fn   any
	}{
		{"nil", nil},
		{"not a function", 42},
		{"no results", func() {}},
		{"second result not error", func() (*v8, int) { return nil, 0 }},
		{"only error", func() error { return nil }},
		{"variadic", func(...int) *v8 { return nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := analyzeConstructor(tt.fn)
			assert.Error(t, err)
		})
	}
}

func TestProvideConstructor_ResolvesByType(t *testing.T) {
	c := New()

	require.NoError(t, ProvideConstructor(c, newV8, As(new(engine)), AsSingleton()))
	require.NoError(t, ProvideConstructor(c, newGarage))

	g, err := Select[*garage](c).Get()
	require.NoError(t, err)
	assert.Equal(t, 450, g.engine.Power())
	assert.Same(t, c, g.c)

	e, err := Select[*v8](c).Get()
	require.NoError(t, err)
	assert.Same(t, e, g.engine)
}

func TestProvideConstructor_ConstructorError(t *testing.T) {
	c := New()
	boom := errors.New("no fuel")

	require.NoError(t, ProvideConstructor(c, func() (*v8, error) { return nil, boom }))

	_, err := Select[*v8](c).Get()
	assert.ErrorIs(t, err, boom)
}

func TestProvideConstructor_NotImplemented(t *testing.T) {
	c := New()

	err := ProvideConstructor(c, func() *garage { return &garage{} }, As(new(engine)))
	assert.Error(t, err)
	assert.False(t, c.Has("*berth.garage"))
}

func TestProvideConstructor_DuplicateBean(t *testing.T) {
	c := New()

	require.NoError(t, ProvideConstructor(c, newV8))
	err := ProvideConstructor(c, newV8)
	assert.ErrorIs(t, err, ErrServiceAlreadyExistsSentinel)

	// a qualifier makes it a distinct bean
	assert.NoError(t, ProvideConstructor(c, newV8, WithName("spare")))
}

func TestProvideConstructor_Circular(t *testing.T) {
	c := New()

	require.NoError(t, ProvideConstructor(c, func(e *egg) *chicken { return &chicken{egg: e} }))
	require.NoError(t, ProvideConstructor(c, func(ch *chicken) *egg { return &egg{chicken: ch} }))

	_, err := Select[*chicken](c).Get()
	assert.ErrorIs(t, err, ErrCircularDependencySentinel)
	assert.ErrorContains(t, err, "*berth.chicken")
	assert.ErrorContains(t, err, "*berth.egg")
}

// loop selects itself from its own factory.
type loop struct{}

func TestProvide_SelfSelect(t *testing.T) {
	tests := []struct {
		name string
		opt  BeanOption
	}{
		{"singleton", AsSingleton()},
		{"transient", AsTransient()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()

			require.NoError(t, Provide(c, func(c Container) (*loop, error) {
				return Select[*loop](c).Get()
			}, tt.opt))

			done := make(chan error, 1)
			go func() {
				_, err := Select[*loop](c).Get()
				done <- err
			}()

			select {
			case err := <-done:
				assert.ErrorIs(t, err, ErrCircularDependencySentinel)
			case <-time.After(2 * time.Second):
				t.Fatal("self-selecting factory blocked")
			}
		})
	}
}

// slow and user model two independent lookups of the same transient bean.
type slow struct{}
type user struct{ slow *slow }

func TestProvideConstructor_ConcurrentSharedDependency(t *testing.T) {
	c := New()
	entered := make(chan struct{}, 2)
	release := make(chan struct{})

	require.NoError(t, ProvideConstructor(c, func() *slow {
		entered <- struct{}{}
		<-release
		return &slow{}
	}))
	require.NoError(t, ProvideConstructor(c, func(s *slow) *user { return &user{slow: s} }))

	errs := make(chan error, 2)
	go func() {
		_, err := Select[*slow](c).Get()
		errs <- err
	}()
	go func() {
		_, err := Select[*user](c).Get()
		errs <- err
	}()

	// both lookups are inside the slow constructor at the same time
	for i := 0; i < 2; i++ {
		select {
		case <-entered:
		case err := <-errs:
			t.Fatalf("lookup finished before release: %v", err)
		case <-time.After(2 * time.Second):
			t.Fatal("constructor was not entered by both lookups")
		}
	}
	close(release)

	for i := 0; i < 2; i++ {
		require.NoError(t, <-errs)
	}
}

func TestProvideConstructor_AsNil(t *testing.T) {
	c := New()

	var err error
	require.NotPanics(t, func() {
		err = ProvideConstructor(c, newV8, As(nil))
	})
	require.Error(t, err)
	assert.False(t, c.Has("*berth.v8"))

	require.NotPanics(t, func() {
		err = Provide(c, func(Container) (*v8, error) { return newV8(), nil }, As(nil))
	})
	require.Error(t, err)
	assert.False(t, c.Has("*berth.v8"))
}

func TestProvideConstructor_EventParameter(t *testing.T) {
	c := New()
	var got []string

	type announcer struct{ ev *Event[string] }

	require.NoError(t, ProvideConstructor(c, func(ev *Event[string]) *announcer {
		return &announcer{ev: ev}
	}))
	require.NoError(t, Observe[string](c, "recorder", func(ctx context.Context, s string) error {
		got = append(got, s)
		return nil
	}))

	a, err := Select[*announcer](c).Get()
	require.NoError(t, err)
	require.NoError(t, a.ev.Fire(context.Background(), "hello"))

	assert.Equal(t, []string{"hello"}, got)
}

func TestProvide_Factory(t *testing.T) {
	c := New()

	require.NoError(t, Provide(c, func(Container) (*electric, error) {
		return &electric{}, nil
	}, As(new(engine)), InGroup("engines"), WithBeanMetadata("fuel", "none")))

	e, err := Select[engine](c).Get()
	require.NoError(t, err)
	assert.Equal(t, 300, e.Power())

	info := c.Inspect("*berth.electric")
	assert.Equal(t, LifecycleTransient, info.Lifecycle)
	assert.Equal(t, []string{"engines"}, info.Groups)
	assert.Equal(t, "none", info.Metadata["fuel"])
	assert.Equal(t, "*berth.electric", info.Metadata["bean.type"])
}

func TestProvide_NilFactory(t *testing.T) {
	c := New()

	err := Provide[*electric](c, nil)
	assert.ErrorIs(t, err, ErrInvalidFactory)
}
