// Package navigation binds the router and the consent control to the
// telemetry pipeline.
package navigation

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tiendaluna/telemetry/analytics"
)

// RouteChange is one screen transition as observed by the router, captured
// at the moment of change.
type RouteChange struct {
	Path     string
	Title    string
	Referrer string
}

// Tracker is the slice of the pipeline the adapter drives.
type Tracker interface {
	TrackPageView(pv analytics.PageView)
	SetConsent(granted bool)
	InitializeIfNeeded()
}

// Adapter turns route changes into page-view events and routes consent
// toggles into the pipeline. Re-deliveries of the same path+referrer pair
// (re-renders, not navigations) produce no duplicate page view.
type Adapter struct {
	tracker Tracker
	routes  <-chan RouteChange
	consent <-chan bool

	lastPath     string
	lastReferrer string
	seen         bool
}

func NewAdapter(tracker Tracker, routes <-chan RouteChange, consent <-chan bool) *Adapter {
	return &Adapter{
		tracker: tracker,
		routes:  routes,
		consent: consent,
	}
}

// Run consumes both signals until the context is cancelled. It resumes
// provider initialization on start, so a session that begins with stored
// consent starts dispatching without waiting for a toggle.
func (a *Adapter) Run(ctx context.Context) {
	a.tracker.InitializeIfNeeded()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Navigation adapter stopped")
			return
		case rc, ok := <-a.routes:
			if !ok {
				a.routes = nil
				continue
			}
			a.handleRoute(rc)
		case granted, ok := <-a.consent:
			if !ok {
				a.consent = nil
				continue
			}
			// Written through to durable storage on every toggle.
			a.tracker.SetConsent(granted)
		}
	}
}

func (a *Adapter) handleRoute(rc RouteChange) {
	if a.seen && rc.Path == a.lastPath && rc.Referrer == a.lastReferrer {
		return
	}
	a.seen = true
	a.lastPath = rc.Path
	a.lastReferrer = rc.Referrer

	a.tracker.TrackPageView(analytics.PageView{
		Path:     rc.Path,
		Title:    rc.Title,
		Referrer: rc.Referrer,
	})
}
