package eventsvc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/luxclient/internal/apiclient"
	"github.com/mkrupp/luxclient/internal/domain"
	"github.com/mkrupp/luxclient/internal/fakeapi/fakeapitest"
	"github.com/mkrupp/luxclient/internal/svc/eventsvc"
)

func newEventRequest(title string, start time.Time) domain.CreateEventRequest {
	return domain.CreateEventRequest{
		Title:       title,
		Description: "An evening of " + title,
		StartDate:   start.UTC().Format(time.RFC3339),
		EndDate:     start.Add(2 * time.Hour).UTC().Format(time.RFC3339),
		Location:    domain.EventLocation{Type: "offline", City: "Hamburg"},
		Categories:  []string{"music"},
	}
}

func setupHost(t *testing.T) (*eventsvc.EventService, *fakeapitest.Backend) {
	t.Helper()

	backend := fakeapitest.New(t)
	backend.SignIn(t, backend.Client, fakeapitest.SeedEmail, fakeapitest.SeedPassword)

	return eventsvc.NewEventService(backend.Client), backend
}

func TestEventLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := setupHost(t)

	ev, err := svc.Create(ctx, newEventRequest("Jazz Night", time.Now().Add(24*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusDraft, ev.Status)

	// Drafts are not listed publicly.
	page, err := svc.List(ctx, domain.EventFilters{})
	require.NoError(t, err)
	assert.Empty(t, page.Data)

	ev, err = svc.Publish(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusPublished, ev.Status)

	title := "Late Jazz Night"

	ev, err = svc.Update(ctx, ev.ID, domain.UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, ev.Title)

	got, err := svc.Get(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)

	mine, err := svc.Mine(ctx, domain.EventFilters{})
	require.NoError(t, err)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, ev.ID, mine.Data[0].ID)

	ev, err = svc.Cancel(ctx, ev.ID, "weather")
	require.NoError(t, err)
	assert.Equal(t, domain.EventStatusCancelled, ev.Status)

	require.NoError(t, svc.Delete(ctx, ev.ID))

	_, err = svc.Get(ctx, ev.ID)
	require.ErrorIs(t, err, apiclient.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := setupHost(t)

	for _, title := range []string{"Jazz Night", "Rock Night", "Jazz Brunch"} {
		ev, err := svc.Create(ctx, newEventRequest(title, time.Now().Add(24*time.Hour)))
		require.NoError(t, err)

		_, err = svc.Publish(ctx, ev.ID)
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		filters   domain.EventFilters
		wantTotal int
		wantLen   int
	}{
		{name: "no filters", wantTotal: 3, wantLen: 3},
		{name: "search", filters: domain.EventFilters{Search: "jazz"}, wantTotal: 2, wantLen: 2},
		{name: "category", filters: domain.EventFilters{Category: "sports"}, wantTotal: 0, wantLen: 0},
		{
			name:      "pagination",
			filters:   domain.EventFilters{PaginationParams: domain.PaginationParams{Page: 2, Limit: 2}},
			wantTotal: 3,
			wantLen:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page, err := svc.List(ctx, tt.filters)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, page.Meta.Total)
			assert.Len(t, page.Data, tt.wantLen)
		})
	}

	found, err := svc.Search(ctx, "brunch", domain.EventFilters{})
	require.NoError(t, err)
	require.Len(t, found.Data, 1)
	assert.Equal(t, "Jazz Brunch", found.Data[0].Title)
}

func TestUpcoming(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := setupHost(t)

	for _, offset := range []time.Duration{72 * time.Hour, 24 * time.Hour, 48 * time.Hour} {
		ev, err := svc.Create(ctx, newEventRequest("Event", time.Now().Add(offset)))
		require.NoError(t, err)

		_, err = svc.Publish(ctx, ev.ID)
		require.NoError(t, err)
	}

	upcoming, err := svc.Upcoming(ctx, 2)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Less(t, upcoming[0].StartDate, upcoming[1].StartDate)
}

func TestRegistration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	host, backend := setupHost(t)

	capacity := 1
	req := newEventRequest("Small Dinner", time.Now().Add(24*time.Hour))
	req.MaxAttendees = &capacity

	ev, err := host.Create(ctx, req)
	require.NoError(t, err)

	guestClient, guestUser := backend.NewUser(t, "guest@lux.local", "Guest")
	guest := eventsvc.NewEventService(guestClient)

	_, err = guest.Register(ctx, ev.ID)
	require.Error(t, err, "drafts are closed for registration")

	_, err = host.Publish(ctx, ev.ID)
	require.NoError(t, err)

	att, err := guest.Register(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "registered", att.Status)

	lateClient, _ := backend.NewUser(t, "late@lux.local", "Late")

	att, err = eventsvc.NewEventService(lateClient).Register(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "waitlisted", att.Status)

	attending, err := guest.Attending(ctx, domain.PaginationParams{})
	require.NoError(t, err)
	require.Len(t, attending.Data, 1)

	attendees, err := host.Attendees(ctx, ev.ID, domain.AttendeeFilters{Status: "registered"})
	require.NoError(t, err)
	require.Len(t, attendees.Data, 1)
	assert.Equal(t, guestUser.ID, attendees.Data[0].UserID)

	_, err = guest.CheckIn(ctx, ev.ID, attendees.Data[0].ID)
	require.ErrorIs(t, err, apiclient.ErrForbidden)

	att, err = host.CheckIn(ctx, ev.ID, attendees.Data[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "checked_in", att.Status)
	assert.NotEmpty(t, att.CheckInAt)

	require.NoError(t, eventsvc.NewEventService(lateClient).Unregister(ctx, ev.ID))
}

func TestCreateRequiresSession(t *testing.T) {
	t.Parallel()

	backend := fakeapitest.New(t)
	svc := eventsvc.NewEventService(backend.Client)

	_, err := svc.Create(context.Background(), newEventRequest("Anonymous", time.Now().Add(time.Hour)))
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	assert.Zero(t, backend.Server.RefreshCalls())
}
