// Package navigation turns region selections into locality navigation or a notice.
package navigation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/observability"
)

// Navigator moves the user to the weather view for a locality.
type Navigator interface {
	Navigate(ctx context.Context, locality string) error
}

// Notifier shows a dismissible message without leaving the current view.
type Notifier interface {
	Notice(ctx context.Context, message string) error
}

// State is the selection state of one session.
type State int

const (
	Idle State = iota
	Navigating
)

func (s State) String() string {
	switch s {
	case Navigating:
		return "navigating"
	default:
		return "idle"
	}
}

// Controller resolves selections against the locality table. It is shared by
// all sessions and holds no per-user state.
type Controller struct {
	bindings domain.LocalityBindings
	events   domain.EventPublisher
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewController creates a controller over bindings.
func NewController(bindings domain.LocalityBindings, events domain.EventPublisher, metrics *observability.Metrics, logger *slog.Logger) *Controller {
	return &Controller{
		bindings: bindings,
		events:   events,
		metrics:  metrics,
		logger:   logger,
	}
}

// Bindings exposes the locality table.
func (c *Controller) Bindings() domain.LocalityBindings { return c.bindings }

// Session binds the controller to one user's navigator and notifier.
func (c *Controller) Session(nav Navigator, notifier Notifier) *Session {
	return &Session{controller: c, nav: nav, notifier: notifier}
}

// Session tracks one user's selection state. A bound click moves it to
// Navigating; an unbound click leaves it Idle with a notice.
type Session struct {
	controller *Controller
	nav        Navigator
	notifier   Notifier

	mu       sync.Mutex
	state    State
	locality string
	notice   string
}

// HandleSelection resolves the clicked region and performs exactly one of:
// a navigation to the bound locality, or a notice that no data exists.
func (s *Session) HandleSelection(ctx context.Context, sel domain.Selection) error {
	c := s.controller
	locality, ok := c.bindings.Resolve(sel.Region)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		msg := domain.UnsupportedNotice(sel.Region)
		s.state = Idle
		s.locality = ""
		s.notice = msg

		c.metrics.RegionSelections.WithLabelValues("unsupported").Inc()
		c.events.Publish(ctx, domain.NewMapEvent(domain.EventRegionUnsupported, sel.Region, ""))
		c.logger.Info("region has no locality", "region", sel.Region)

		if err := s.notifier.Notice(ctx, msg); err != nil {
			return fmt.Errorf("notice for %q: %w", sel.Region, err)
		}
		return nil
	}

	s.state = Navigating
	s.locality = locality
	s.notice = ""

	c.metrics.RegionSelections.WithLabelValues("navigated").Inc()
	c.events.Publish(ctx, domain.NewMapEvent(domain.EventRegionSelected, sel.Region, locality))
	c.logger.Debug("region selected", "region", sel.Region, "locality", locality)

	if err := s.nav.Navigate(ctx, locality); err != nil {
		return fmt.Errorf("navigate to %q: %w", locality, err)
	}
	return nil
}

// State reports the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Locality is the navigation target when Navigating.
func (s *Session) Locality() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locality
}

// Notice is the last notice shown, if any.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// DismissNotice clears the notice.
func (s *Session) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = ""
}
