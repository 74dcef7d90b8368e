// Package nav describes where the client goes after a successful call and
// runs the delayed move there.
package nav

import (
	"context"
	"time"
)

// Route is a client screen.
type Route string

const (
	RouteAuth       Route = "/auth"
	RouteOnboarding Route = "/onboarding"
	RouteDashboard  Route = "/dashboard"
)

// Outcome is what a successful login, registration or submission tells the
// caller: a message to show now and a route to open after Delay.
type Outcome struct {
	Message string
	Route   Route
	Delay   time.Duration
}

// Navigator opens a route.
type Navigator interface {
	Navigate(r Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(r Route)

// Navigate calls f(r).
func (f NavigatorFunc) Navigate(r Route) { f(r) }

// Follow waits for the outcome's delay and then navigates. It returns early,
// without navigating, when ctx is cancelled.
func Follow(ctx context.Context, o Outcome, n Navigator) error {
	if o.Route == "" {
		return nil
	}
	if o.Delay > 0 {
		t := time.NewTimer(o.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	n.Navigate(o.Route)
	return nil
}
