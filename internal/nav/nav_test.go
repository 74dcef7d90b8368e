package nav

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestFollow_NavigatesAfterDelay(t *testing.T) {
	var got Route
	start := time.Now()
	err := Follow(context.Background(), Outcome{Route: RouteOnboarding, Delay: 20 * time.Millisecond},
		NavigatorFunc(func(r Route) { got = r }))

	require.NoError(t, err)
	assert.Equal(t, RouteOnboarding, got)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestFollow_CancelledBeforeDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Follow(ctx, Outcome{Route: RouteDashboard, Delay: time.Hour},
		NavigatorFunc(func(Route) { called = true }))

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestFollow_NoRoute(t *testing.T) {
	called := false
	err := Follow(context.Background(), Outcome{Message: "done"}, NavigatorFunc(func(Route) { called = true }))
	require.NoError(t, err)
	assert.False(t, called)
}
