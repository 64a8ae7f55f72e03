package berth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_Unsatisfied(t *testing.T) {
	c := New()

	inst := Select[engine](c)
	assert.True(t, inst.IsUnsatisfied())
	assert.False(t, inst.IsAmbiguous())

	_, err := inst.Get()
	assert.ErrorIs(t, err, ErrUnsatisfiedSentinel)
	assert.ErrorContains(t, err, "berth.engine")
}

func TestSelect_Ambiguous(t *testing.T) {
	c := New()

	require.NoError(t, ProvideConstructor(c, newV8, As(new(engine))))
	require.NoError(t, Provide(c, func(Container) (*electric, error) {
		return &electric{}, nil
	}, As(new(engine))))

	inst := Select[engine](c)
	assert.True(t, inst.IsAmbiguous())
	assert.Equal(t, []string{"*berth.v8", "*berth.electric"}, inst.Candidates())

	_, err := inst.Get()
	assert.ErrorIs(t, err, ErrAmbiguousSentinel)

	// each concrete type still resolves on its own
	e, err := Select[*electric](c).Get()
	require.NoError(t, err)
	assert.Equal(t, 300, e.Power())
}

func TestSelect_Named(t *testing.T) {
	c := New()

	require.NoError(t, ProvideConstructor(c, newV8, As(new(engine))))
	require.NoError(t, ProvideConstructor(c, func() *v8 { return &v8{power: 120} },
		WithName("spare"), As(new(engine))))

	def, err := Select[engine](c).Get()
	require.NoError(t, err)
	assert.Equal(t, 450, def.Power())

	spare, err := Select[engine](c, Named("spare")).Get()
	require.NoError(t, err)
	assert.Equal(t, 120, spare.Power())

	_, err = Select[engine](c, Named("missing")).Get()
	assert.ErrorIs(t, err, ErrUnsatisfiedSentinel)
	assert.ErrorContains(t, err, "named(missing)")
}

func TestSelect_AnyAll(t *testing.T) {
	c := New()

	require.NoError(t, ProvideConstructor(c, newV8, As(new(engine))))
	require.NoError(t, ProvideConstructor(c, func() *v8 { return &v8{power: 120} },
		WithName("spare"), As(new(engine))))

	all, err := Select[engine](c, AnyQualifier()).All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 450, all[0].Power())
	assert.Equal(t, 120, all[1].Power())

	none, err := Select[*electric](c).All()
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSelect_SingletonSharedAcrossTypes(t *testing.T) {
	c := New()

	require.NoError(t, ProvideConstructor(c, newV8, As(new(engine)), AsSingleton()))

	byIface := Select[engine](c).MustGet()
	byType := Select[*v8](c).MustGet()

	assert.Same(t, byType, byIface)
}

func TestSelect_TransientIsFresh(t *testing.T) {
	c := New()

	require.NoError(t, ProvideConstructor(c, newV8, As(new(engine))))

	byIface := Select[engine](c).MustGet()
	byType := Select[*v8](c).MustGet()

	assert.NotSame(t, byType, byIface)
}

func TestSelect_MustGetPanics(t *testing.T) {
	c := New()

	assert.Panics(t, func() { Select[engine](c).MustGet() })
}

func TestSelectScope(t *testing.T) {
	c := New()

	require.NoError(t, ProvideConstructor(c, newV8, AsScoped()))

	_, err := Select[*v8](c).Get()
	assert.Error(t, err)

	scope := c.BeginScope()
	defer func() { _ = scope.End() }()

	first, err := SelectScope[*v8](scope).Get()
	require.NoError(t, err)
	second, err := SelectScope[*v8](scope).Get()
	require.NoError(t, err)
	assert.Same(t, first, second)

	other := c.BeginScope()
	defer func() { _ = other.End() }()

	third := SelectScope[*v8](other).MustGet()
	assert.NotSame(t, first, third)
}

func TestSelect_ForeignContainer(t *testing.T) {
	var c Container = struct{ Container }{}

	_, err := Select[engine](c).Get()
	assert.Error(t, err)
}
