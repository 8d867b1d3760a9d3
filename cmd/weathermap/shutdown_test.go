package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/weather-map-service/internal/domain"
	"github.com/couchcryptid/weather-map-service/internal/events"
	"github.com/couchcryptid/weather-map-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

type recordingLoader struct {
	mu  sync.Mutex
	ids []string
}

func (l *recordingLoader) LoadBatch(_ context.Context, evts []domain.MapEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range evts {
		l.ids = append(l.ids, e.ID)
	}
	return nil
}

func (l *recordingLoader) loaded() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.ids...)
}

// drainingServer publishes from Shutdown, the way a request finishing during
// the HTTP drain would.
type drainingServer struct {
	publish func()
	err     error
}

func (s drainingServer) Shutdown(context.Context) error {
	s.publish()
	return s.err
}

func TestShutdown_FlushesEventsPublishedDuringHTTPDrain(t *testing.T) {
	ldr := &recordingLoader{}
	d := events.NewDispatcher(ldr, 10, time.Hour, clockwork.NewFakeClock(), slog.Default(), observability.NewMetricsForTesting())

	dispatchCtx, stopDispatcher := context.WithCancel(context.Background())
	defer stopDispatcher()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(dispatchCtx)
	}()

	srv := drainingServer{publish: func() {
		d.Publish(context.Background(), domain.MapEvent{ID: "late", Type: domain.EventRegionSelected, Region: "Texas"})
	}}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	shutdown(ctx, srv, stopDispatcher, done, slog.Default())

	assert.Equal(t, []string{"late"}, ldr.loaded())
	assert.NoError(t, ctx.Err())
}

func TestShutdown_StopsDispatcherWhenHTTPShutdownFails(t *testing.T) {
	stopped := false
	done := make(chan struct{})
	srv := drainingServer{publish: func() {}, err: errors.New("listener stuck")}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	shutdown(ctx, srv, func() { stopped = true; close(done) }, done, slog.Default())

	assert.True(t, stopped)
}
