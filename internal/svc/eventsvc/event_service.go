package eventsvc

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mkrupp/luxclient/internal/apiclient"
	"github.com/mkrupp/luxclient/internal/domain"
	"github.com/mkrupp/luxclient/internal/infra/logging"
)

// EventService wraps the event endpoints of the backend. Capacity, waitlists and
// status transitions are decided by the backend; requests are passed through as is.
type EventService struct {
	Client *apiclient.Client
	Log    logging.Logger
}

// NewEventService creates a new EventService on top of client.
func NewEventService(client *apiclient.Client) *EventService {
	return &EventService{
		Client: client,
		Log:    logging.GetLogger("svc.eventsvc.event_service"),
	}
}

func eventPath(id string, rest ...string) string {
	path := "/events/" + url.PathEscape(id)
	for _, r := range rest {
		path += "/" + r
	}

	return path
}

func list[T any](ctx context.Context, c *apiclient.Client, path string, filters any) (domain.Paginated[T], error) {
	params, err := apiclient.ParamsFrom(filters)
	if err != nil {
		return domain.Paginated[T]{}, fmt.Errorf("params: %w", err)
	}

	env, err := apiclient.Get[domain.Paginated[T]](ctx, c, path, params)
	if err != nil {
		return domain.Paginated[T]{}, fmt.Errorf("list %s: %w", path, err)
	}

	return env.Data, nil
}

// List returns public events matching filters.
func (s *EventService) List(ctx context.Context, filters domain.EventFilters) (domain.Paginated[domain.EventSummary], error) {
	return list[domain.EventSummary](ctx, s.Client, "/events", filters)
}

// Search returns events whose title or description contain query.
func (s *EventService) Search(
	ctx context.Context,
	query string,
	filters domain.EventFilters,
) (domain.Paginated[domain.EventSummary], error) {
	params, err := apiclient.ParamsFrom(filters)
	if err != nil {
		return domain.Paginated[domain.EventSummary]{}, fmt.Errorf("params: %w", err)
	}

	params["q"] = query

	env, err := apiclient.Get[domain.Paginated[domain.EventSummary]](ctx, s.Client, "/events/search", params)
	if err != nil {
		return domain.Paginated[domain.EventSummary]{}, fmt.Errorf("search events: %w", err)
	}

	return env.Data, nil
}

// Mine returns the events hosted by the signed-in user.
func (s *EventService) Mine(ctx context.Context, filters domain.EventFilters) (domain.Paginated[domain.EventSummary], error) {
	return list[domain.EventSummary](ctx, s.Client, "/events/my", filters)
}

// Attending returns the events the signed-in user is registered for.
func (s *EventService) Attending(
	ctx context.Context,
	filters domain.PaginationParams,
) (domain.Paginated[domain.EventSummary], error) {
	return list[domain.EventSummary](ctx, s.Client, "/events/attending", filters)
}

// Upcoming returns the next published events. A non-positive limit uses the backend default.
func (s *EventService) Upcoming(ctx context.Context, limit int) ([]domain.EventSummary, error) {
	params := apiclient.Params{}
	if limit > 0 {
		params["limit"] = limit
	}

	env, err := apiclient.Get[[]domain.EventSummary](ctx, s.Client, "/events/upcoming", params)
	if err != nil {
		return nil, fmt.Errorf("upcoming events: %w", err)
	}

	return env.Data, nil
}

// Get returns the event with the given ID.
func (s *EventService) Get(ctx context.Context, id string) (domain.Event, error) {
	env, err := apiclient.Get[domain.Event](ctx, s.Client, eventPath(id), nil)
	if err != nil {
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}

	return env.Data, nil
}

// Create creates a draft event hosted by the signed-in user.
func (s *EventService) Create(ctx context.Context, req domain.CreateEventRequest) (_ domain.Event, err error) {
	log := s.Log.With(logging.Group("event", "title", req.Title))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create event failed", "error", err)
		} else {
			log.DebugContext(ctx, "event created")
		}
	}()

	env, err := apiclient.Post[domain.Event](ctx, s.Client, "/events", req)
	if err != nil {
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}

	return env.Data, nil
}

// Update applies a partial update to the event.
func (s *EventService) Update(ctx context.Context, id string, req domain.UpdateEventRequest) (domain.Event, error) {
	env, err := apiclient.Patch[domain.Event](ctx, s.Client, eventPath(id), req)
	if err != nil {
		return domain.Event{}, fmt.Errorf("update event: %w", err)
	}

	return env.Data, nil
}

// Delete removes the event.
func (s *EventService) Delete(ctx context.Context, id string) (err error) {
	log := s.Log.With(logging.Group("event", "id", id))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "delete event failed", "error", err)
		} else {
			log.DebugContext(ctx, "event deleted")
		}
	}()

	if _, err := s.Client.Delete(ctx, eventPath(id), apiclient.RequestOptions{}); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	return nil
}

// Publish opens a draft event for registration.
func (s *EventService) Publish(ctx context.Context, id string) (domain.Event, error) {
	env, err := apiclient.Post[domain.Event](ctx, s.Client, eventPath(id, "publish"), nil)
	if err != nil {
		return domain.Event{}, fmt.Errorf("publish event: %w", err)
	}

	return env.Data, nil
}

// Cancel cancels the event. reason may be empty.
func (s *EventService) Cancel(ctx context.Context, id, reason string) (domain.Event, error) {
	env, err := apiclient.Post[domain.Event](ctx, s.Client, eventPath(id, "cancel"), domain.CancelEventRequest{Reason: reason})
	if err != nil {
		return domain.Event{}, fmt.Errorf("cancel event: %w", err)
	}

	return env.Data, nil
}

// Attendees returns the registrations of the event.
func (s *EventService) Attendees(
	ctx context.Context,
	id string,
	filters domain.AttendeeFilters,
) (domain.Paginated[domain.EventAttendee], error) {
	return list[domain.EventAttendee](ctx, s.Client, eventPath(id, "attendees"), filters)
}

// Register registers the signed-in user for the event.
func (s *EventService) Register(ctx context.Context, id string) (domain.EventAttendee, error) {
	env, err := apiclient.Post[domain.EventAttendee](ctx, s.Client, eventPath(id, "register"), nil)
	if err != nil {
		return domain.EventAttendee{}, fmt.Errorf("register for event: %w", err)
	}

	return env.Data, nil
}

// Unregister withdraws the registration of the signed-in user.
func (s *EventService) Unregister(ctx context.Context, id string) error {
	if _, err := s.Client.Delete(ctx, eventPath(id, "register"), apiclient.RequestOptions{}); err != nil {
		return fmt.Errorf("unregister from event: %w", err)
	}

	return nil
}

// CheckIn marks an attendee as present.
func (s *EventService) CheckIn(ctx context.Context, id, attendeeID string) (domain.EventAttendee, error) {
	path := eventPath(id, "attendees", url.PathEscape(attendeeID), "check-in")

	env, err := apiclient.Post[domain.EventAttendee](ctx, s.Client, path, nil)
	if err != nil {
		return domain.EventAttendee{}, fmt.Errorf("check in attendee: %w", err)
	}

	return env.Data, nil
}
