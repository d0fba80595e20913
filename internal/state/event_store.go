package state

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	apperrors "github.com/NomadCrew/neoevents/errors"
	"github.com/NomadCrew/neoevents/internal/observable"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/store"
	"github.com/NomadCrew/neoevents/types"
	"go.uber.org/zap"
)

// EventSource returns the events around a position.
type EventSource interface {
	SearchEvents(ctx context.Context, lat, lng float64) ([]types.Event, error)
}

// FavoritesPersister loads and saves the favorites id list.
type FavoritesPersister interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, ids []string) error
}

// FavoriteNotifier is told about newly saved favorites. It decides on its own
// whether the channel is available and permitted, and must not block.
type FavoriteNotifier interface {
	FavoriteSaved(ctx context.Context, event types.Event)
}

// EventState is an immutable view of the EventStore. Slices must not be modified.
type EventState struct {
	Events    []types.Event
	Selected  *types.Event
	Favorites []string
}

// FavoriteSet returns the favorites as a lookup set.
func (s EventState) FavoriteSet() map[string]bool {
	set := make(map[string]bool, len(s.Favorites))
	for _, id := range s.Favorites {
		set[id] = true
	}
	return set
}

// EventStore holds the fetched event list, the selected event and the
// favorites set. Mutations are serialized; subscribers are called after each
// one and must not call back into mutating methods.
type EventStore struct {
	mu       sync.Mutex
	state    *observable.Value[EventState]
	source   EventSource
	favs     FavoritesPersister
	notifier FavoriteNotifier

	// favsLoaded is false until a read of the persisted set succeeded or
	// found it corrupted. Toggling before that would overwrite stored ids.
	favsLoaded bool

	issued  uint64
	applied uint64
	pending sync.WaitGroup

	metrics *fetchMetrics
	log     *zap.SugaredLogger
}

func NewEventStore(source EventSource, favs FavoritesPersister, notifier FavoriteNotifier) *EventStore {
	return &EventStore{
		state:    observable.New(EventState{Events: []types.Event{}, Favorites: []string{}}),
		source:   source,
		favs:     favs,
		notifier: notifier,
		metrics:  newFetchMetrics(),
		log:      logger.GetLogger().Named("event-store"),
	}
}

// State returns the current state.
func (s *EventStore) State() EventState {
	return s.state.Get()
}

// Subscribe calls fn after every change.
func (s *EventStore) Subscribe(fn func(EventState)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

// FetchEvents queries the event source and replaces the list on success. On
// failure the list is left untouched and the error returned. A response that
// arrives after a newer fetch has been applied is discarded.
func (s *EventStore) FetchEvents(ctx context.Context, lat, lng float64) error {
	return s.fetch(ctx, s.nextSeq(), lat, lng)
}

// FetchEventsAsync starts a fetch in the background. Its sequence number is
// taken before returning, so calls order by invocation, not by completion.
func (s *EventStore) FetchEventsAsync(ctx context.Context, lat, lng float64) {
	seq := s.nextSeq()
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		_ = s.fetch(ctx, seq, lat, lng)
	}()
}

// WaitForFetches blocks until background fetches finish or ctx is done.
func (s *EventStore) WaitForFetches(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *EventStore) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

func (s *EventStore) fetch(ctx context.Context, seq uint64, lat, lng float64) error {
	start := time.Now()
	events, err := s.source.SearchEvents(ctx, lat, lng)
	s.metrics.duration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.fetches.WithLabelValues(fetchResultError).Inc()
		s.log.Errorw("Event fetch failed, keeping current list", "lat", lat, "lng", lng, "seq", seq, "error", err)
		return err
	}
	if events == nil {
		events = []types.Event{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.applied {
		s.metrics.fetches.WithLabelValues(fetchResultStale).Inc()
		s.metrics.stale.Inc()
		s.log.Infow("Discarding stale event fetch", "seq", seq, "applied", s.applied)
		return nil
	}
	s.applied = seq

	s.state.Update(func(cur EventState) (EventState, bool) {
		next := cur
		next.Events = events
		if cur.Selected != nil {
			if e, ok := types.FindEvent(events, cur.Selected.ID); ok {
				next.Selected = &e
			} else {
				next.Selected = nil
			}
		}
		return next, true
	})

	s.metrics.fetches.WithLabelValues(fetchResultSuccess).Inc()
	s.metrics.eventsLoaded.Set(float64(len(events)))
	s.log.Infow("Event list replaced", "count", len(events), "seq", seq)
	return nil
}

// SelectEvent focuses the event with id. Ids outside the current list are
// rejected with NOT_FOUND and leave the selection unchanged.
func (s *EventStore) SelectEvent(id string) (types.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := types.FindEvent(s.state.Get().Events, id)
	if !ok {
		return types.Event{}, apperrors.NotFound("Event", id)
	}
	s.state.Update(func(cur EventState) (EventState, bool) {
		cur.Selected = &e
		return cur, true
	})
	return e, nil
}

// ClearSelection drops the focused event.
func (s *EventStore) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Update(func(cur EventState) (EventState, bool) {
		if cur.Selected == nil {
			return cur, false
		}
		cur.Selected = nil
		return cur, true
	})
}

// LoadFavorites reads the persisted favorites. Missing or corrupted data
// yields an empty set. When the backend cannot be read the set stays
// unloaded and the next ToggleFavorite retries the read.
func (s *EventStore) LoadFavorites(ctx context.Context) {
	ids, err := s.favs.Load(ctx)
	if err != nil && !errors.Is(err, store.ErrCorruptedValue) {
		s.log.Errorw("Could not read favorites, retrying on next change", "error", err)
		return
	}
	if err != nil {
		s.log.Warnw("Stored favorites are corrupted, starting empty", "error", err)
		ids = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyFavorites(ids)
}

// applyFavorites must be called with s.mu held.
func (s *EventStore) applyFavorites(ids []string) {
	ids = dedupe(ids)
	s.state.Update(func(cur EventState) (EventState, bool) {
		if slices.Equal(cur.Favorites, ids) {
			return cur, false
		}
		cur.Favorites = ids
		return cur, true
	})
	s.favsLoaded = true
	s.metrics.favorites.Set(float64(len(ids)))
	s.log.Infow("Favorites loaded", "count", len(ids))
}

// ToggleFavorite removes id from the favorites when present and adds it
// otherwise. The new set is persisted before it is applied; a failed write
// leaves the set unchanged and returns a STORAGE_ERROR. Adding notifies the
// FavoriteNotifier after the write succeeded. If the persisted set was never
// read it is read first, and a failed read is a STORAGE_ERROR.
func (s *EventStore) ToggleFavorite(ctx context.Context, id string) (added bool, err error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, apperrors.ValidationFailed("invalid event id", "event id must not be empty")
	}

	s.mu.Lock()
	if !s.favsLoaded {
		ids, err := s.favs.Load(ctx)
		if err != nil && !errors.Is(err, store.ErrCorruptedValue) {
			s.mu.Unlock()
			s.log.Errorw("Failed to read favorites before toggle", "eventID", id, "error", err)
			return false, apperrors.NewStorageError(err)
		}
		if err != nil {
			ids = nil
		}
		s.applyFavorites(ids)
	}

	cur := s.state.Get()
	next, added := toggled(cur.Favorites, id)

	if err := s.favs.Save(ctx, next); err != nil {
		s.mu.Unlock()
		s.log.Errorw("Failed to persist favorites", "eventID", id, "error", err)
		return false, apperrors.NewStorageError(err)
	}

	s.state.Update(func(st EventState) (EventState, bool) {
		st.Favorites = next
		return st, true
	})
	s.metrics.favorites.Set(float64(len(next)))

	event, ok := types.FindEvent(cur.Events, id)
	if !ok {
		event = types.Event{ID: id, Title: id}
	}
	s.mu.Unlock()

	if added && s.notifier != nil {
		s.notifier.FavoriteSaved(ctx, event)
	}
	return added, nil
}

// IsFavorite reports whether id is in the favorites set.
func (s *EventStore) IsFavorite(id string) bool {
	for _, f := range s.state.Get().Favorites {
		if f == id {
			return true
		}
	}
	return false
}

func toggled(favs []string, id string) ([]string, bool) {
	next := make([]string, 0, len(favs)+1)
	found := false
	for _, f := range favs {
		if f == id {
			found = true
			continue
		}
		next = append(next, f)
	}
	if !found {
		next = append(next, id)
	}
	return next, !found
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
