package services

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/NomadCrew/neoevents/errors"
	"github.com/NomadCrew/neoevents/internal/filter"
	"github.com/NomadCrew/neoevents/internal/state"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/pkg/valueobjects"
	"github.com/NomadCrew/neoevents/types"
	"go.uber.org/zap"
)

const directionsBaseURL = "https://www.google.com/maps/dir/"

// SnapshotPublisher receives every recomputed map snapshot.
type SnapshotPublisher interface {
	BroadcastSnapshot(types.Snapshot)
}

// Coordinator connects the location and event stores and exposes the user
// facing discovery actions. Every location change triggers exactly one
// background fetch; every state change republishes the map snapshot.
type Coordinator struct {
	locations *state.LocationStore
	events    *state.EventStore
	publisher SnapshotPublisher
	loc       *time.Location
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	mode   types.FilterMode
	unsubs []func()
	log    *zap.SugaredLogger
}

// CoordinatorOption customizes a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithClock replaces the wall clock used for "today".
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithPublisher sets where snapshots are pushed.
func WithPublisher(p SnapshotPublisher) CoordinatorOption {
	return func(c *Coordinator) {
		c.publisher = p
	}
}

// NewCoordinator wires the stores together. loc is the timezone in which
// event dates and "today" are compared; nil means time.Local.
func NewCoordinator(locations *state.LocationStore, events *state.EventStore, loc *time.Location, opts ...CoordinatorOption) *Coordinator {
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		locations: locations,
		events:    events,
		loc:       loc,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		mode:      types.FilterAll,
		log:       logger.GetLogger().Named("coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.unsubs = append(c.unsubs,
		locations.Subscribe(c.onLocationChanged),
		events.Subscribe(func(state.EventState) { c.publish() }),
	)
	return c
}

func (c *Coordinator) onLocationChanged(coords types.Coordinates) {
	c.log.Infow("Location changed, fetching events", "lat", coords.Lat, "lng", coords.Lng)
	c.events.FetchEventsAsync(c.ctx, coords.Lat, coords.Lng)
	c.publish()
}

// Start loads persisted favorites and, when acquireDevice is set, tries to
// obtain the device location. A failed acquisition is logged and alerted but
// does not fail startup.
func (c *Coordinator) Start(ctx context.Context, acquireDevice bool) {
	c.events.LoadFavorites(ctx)
	if !acquireDevice {
		return
	}
	if _, err := c.locations.AcquireDeviceLocation(ctx); err != nil {
		c.log.Warnw("Startup device location unavailable", "error", err)
	}
}

// Close detaches the store subscriptions and cancels in-flight fetches.
func (c *Coordinator) Close() {
	c.mu.Lock()
	unsubs := c.unsubs
	c.unsubs = nil
	c.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	c.cancel()
}

// Search resolves place and, if found, moves the user there and resets the
// filter to all. A miss changes nothing.
func (c *Coordinator) Search(ctx context.Context, place string) (types.Coordinates, bool) {
	coords, ok := c.locations.SearchByName(ctx, place)
	if !ok {
		return types.Coordinates{}, false
	}
	c.setMode(types.FilterAll)
	c.locations.Set(coords)
	return coords, true
}

// ResetToDeviceLocation re-acquires the device position and resets the filter
// to all. On failure nothing changes and the GEOLOCATION_ERROR is returned.
func (c *Coordinator) ResetToDeviceLocation(ctx context.Context) (types.Coordinates, error) {
	coords, err := c.locations.AcquireDeviceLocation(ctx)
	if err != nil {
		return types.Coordinates{}, err
	}
	c.SetFilter(types.FilterAll)
	return coords, nil
}

// SetLocation applies a position fix pushed by a client. Only non-finite
// values are rejected.
func (c *Coordinator) SetLocation(coords types.Coordinates) error {
	if err := valueobjects.ValidateFinite(coords.Lat, coords.Lng); err != nil {
		return err
	}
	c.locations.Set(coords)
	return nil
}

// SetFilter changes the active mode. It never fetches.
func (c *Coordinator) SetFilter(mode types.FilterMode) {
	c.setMode(mode)
	c.publish()
}

func (c *Coordinator) setMode(mode types.FilterMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

// Filter returns the active mode.
func (c *Coordinator) Filter() types.FilterMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SelectEvent focuses an event of the current list.
func (c *Coordinator) SelectEvent(id string) (types.Event, error) {
	return c.events.SelectEvent(id)
}

// ToggleFavorite flips id in the favorites set.
func (c *Coordinator) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	return c.events.ToggleFavorite(ctx, id)
}

// Favorites returns the favorited ids in insertion order.
func (c *Coordinator) Favorites() []string {
	return c.events.State().Favorites
}

// FavoriteEvents returns the fetched events that are favorited.
func (c *Coordinator) FavoriteEvents() []types.Event {
	st := c.events.State()
	return filter.Apply(st.Events, types.FilterFavorites, st.FavoriteSet(), c.today())
}

// NavigateTo builds driving directions from the user to the event. ok is
// false when the user location is unknown; an id outside the current list is
// NOT_FOUND.
func (c *Coordinator) NavigateTo(id string) (string, bool, error) {
	event, found := types.FindEvent(c.events.State().Events, id)
	if !found {
		return "", false, apperrors.NotFound("Event", id)
	}
	origin, ok := c.locations.Current()
	if !ok {
		return "", false, nil
	}
	return DirectionsURL(origin, event.Coordinates()), true, nil
}

// DirectionsURL returns the Google Maps driving directions URL between two
// points.
func DirectionsURL(origin, destination types.Coordinates) string {
	return directionsBaseURL +
		"?api=1" +
		"&origin=" + valueobjects.FromCoordinates(origin).String() +
		"&destination=" + valueobjects.FromCoordinates(destination).String() +
		"&travelmode=driving"
}

// Refresh refetches events for the current location and waits for it. It is
// a no-op without a location.
func (c *Coordinator) Refresh(ctx context.Context) error {
	coords, ok := c.locations.Current()
	if !ok {
		c.log.Debug("Refresh skipped, no location yet")
		return nil
	}
	return c.events.FetchEvents(ctx, coords.Lat, coords.Lng)
}

// AwaitFetches blocks until background fetches complete or ctx is done.
func (c *Coordinator) AwaitFetches(ctx context.Context) error {
	return c.events.WaitForFetches(ctx)
}

// VisibleEvents returns the events visible under the active mode.
func (c *Coordinator) VisibleEvents() []types.EventView {
	return c.VisibleEventsFor(c.Filter())
}

// VisibleEventsFor returns the events visible under mode without changing the
// active mode.
func (c *Coordinator) VisibleEventsFor(mode types.FilterMode) []types.EventView {
	st := c.events.State()
	user, hasUser := c.locations.Current()
	return c.views(st, mode, user, hasUser)
}

// Snapshot returns a consistent view for the map.
func (c *Coordinator) Snapshot() types.Snapshot {
	mode := c.Filter()
	st := c.events.State()
	user, hasUser := c.locations.Current()

	snap := types.Snapshot{
		Filter:    mode,
		Events:    c.views(st, mode, user, hasUser),
		Selected:  st.Selected,
		Favorites: st.Favorites,
		Total:     len(st.Events),
		UpdatedAt: c.now().UTC(),
	}
	if hasUser {
		snap.User = &user
	}
	return snap
}

func (c *Coordinator) views(st state.EventState, mode types.FilterMode, user types.Coordinates, hasUser bool) []types.EventView {
	favs := st.FavoriteSet()
	visible := filter.Apply(st.Events, mode, favs, c.today())

	origin := valueobjects.FromCoordinates(user)
	views := make([]types.EventView, 0, len(visible))
	for _, e := range visible {
		v := types.EventView{
			Event:    e,
			Favorite: favs[e.ID],
			Color:    types.CategoryColor(e.Category),
		}
		if hasUser {
			d := origin.DistanceKm(valueobjects.FromCoordinates(e.Coordinates()))
			v.DistanceKm = &d
		}
		views = append(views, v)
	}
	return views
}

func (c *Coordinator) today() time.Time {
	return c.now().In(c.loc)
}

func (c *Coordinator) publish() {
	if c.publisher == nil {
		return
	}
	c.publisher.BroadcastSnapshot(c.Snapshot())
}
