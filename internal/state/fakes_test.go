package state

import (
	"context"
	"errors"
	"sync"

	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
)

func init() {
	logger.IsTest = true
}

type fetchCall struct {
	lat, lng float64
	release  chan struct{}
	events   []types.Event
	err      error
}

// fakeSource answers with the scripted result for each call in order. When
// a call carries a release channel the answer waits for it.
type fakeSource struct {
	mu      sync.Mutex
	calls   []*fetchCall
	next    int
	started chan struct{}
}

func (f *fakeSource) script(calls ...*fetchCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, calls...)
}

func (f *fakeSource) SearchEvents(ctx context.Context, lat, lng float64) ([]types.Event, error) {
	f.mu.Lock()
	if f.next >= len(f.calls) {
		f.mu.Unlock()
		return nil, errors.New("unexpected fetch")
	}
	call := f.calls[f.next]
	f.next++
	f.mu.Unlock()

	call.lat, call.lng = lat, lng
	if f.started != nil {
		f.started <- struct{}{}
	}
	if call.release != nil {
		select {
		case <-call.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return call.events, call.err
}

type memFavs struct {
	mu      sync.Mutex
	ids     []string
	loadErr error
	saveErr error
	saves   [][]string
}

func (m *memFavs) Load(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return []string{}, m.loadErr
	}
	return append([]string{}, m.ids...), nil
}

func (m *memFavs) Save(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.ids = append([]string{}, ids...)
	m.saves = append(m.saves, m.ids)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	favs   *memFavs
	events []types.Event
	// persistedAtNotify captures what storage held when the notifier ran.
	persistedAtNotify [][]string
}

func (r *recordingNotifier) FavoriteSaved(_ context.Context, e types.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.favs != nil {
		r.favs.mu.Lock()
		r.persistedAtNotify = append(r.persistedAtNotify, append([]string{}, r.favs.ids...))
		r.favs.mu.Unlock()
	}
}

type fakePositioner struct {
	coords types.Coordinates
	err    error
}

func (f fakePositioner) Locate(context.Context) (types.Coordinates, error) {
	return f.coords, f.err
}

type fakeGeocoder struct {
	coords types.Coordinates
	found  bool
	err    error
	calls  int
}

func (f *fakeGeocoder) Geocode(context.Context, string) (types.Coordinates, bool, error) {
	f.calls++
	return f.coords, f.found, f.err
}

type recordingAlerter struct {
	messages []string
}

func (r *recordingAlerter) Alert(_ context.Context, msg string) {
	r.messages = append(r.messages, msg)
}
