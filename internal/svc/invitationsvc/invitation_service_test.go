package invitationsvc_test

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
	"github.com/mkrupp/luxclient/internal/svc/invitationsvc"
)

type fixture struct {
	backend *fakeapitest.Backend
	host    *invitationsvc.InvitationService
	guest   *invitationsvc.InvitationService
	events  *eventsvc.EventService
	eventID string
}

func setup(t *testing.T) fixture {
	t.Helper()

	ctx := context.Background()
	backend := fakeapitest.New(t)
	backend.SignIn(t, backend.Client, fakeapitest.SeedEmail, fakeapitest.SeedPassword)

	events := eventsvc.NewEventService(backend.Client)
	start := time.Now().Add(24 * time.Hour).UTC()

	ev, err := events.Create(ctx, domain.CreateEventRequest{
		Title:     "Garden Party",
		StartDate: start.Format(time.RFC3339),
		EndDate:   start.Add(time.Hour).Format(time.RFC3339),
		Location:  domain.EventLocation{Type: "offline"},
	})
	require.NoError(t, err)

	_, err = events.Publish(ctx, ev.ID)
	require.NoError(t, err)

	guestClient, _ := backend.NewUser(t, "guest@lux.local", "Guest")

	return fixture{
		backend: backend,
		host:    invitationsvc.NewInvitationService(backend.Client),
		guest:   invitationsvc.NewInvitationService(guestClient),
		events:  events,
		eventID: ev.ID,
	}
}

func TestSendAndAccept(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setup(t)

	sent, err := f.host.SendForEvent(ctx, f.eventID, domain.SendInvitationsRequest{
		Emails:  []string{"guest@lux.local", "broken"},
		Message: "Join us!",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sent.Sent)
	assert.Equal(t, []string{"broken"}, sent.Failed)

	count, err := f.guest.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	received, err := f.guest.Received(ctx, domain.InvitationFilters{Status: domain.InvitationStatusPending})
	require.NoError(t, err)
	require.Len(t, received.Data, 1)

	inv := received.Data[0]
	assert.Equal(t, "Join us!", inv.Message)

	_, err = f.host.Respond(ctx, inv.ID, domain.RespondInvitationRequest{Status: domain.InvitationStatusAccepted})
	require.ErrorIs(t, err, apiclient.ErrForbidden)

	inv, err = f.guest.Respond(ctx, inv.ID, domain.RespondInvitationRequest{Status: domain.InvitationStatusAccepted})
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationStatusAccepted, inv.Status)

	ev, err := f.events.Get(ctx, f.eventID)
	require.NoError(t, err)
	assert.Equal(t, 1, ev.CurrentAttendees)

	count, err = f.guest.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateCancelResend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setup(t)

	inv, err := f.host.Create(ctx, domain.CreateInvitationRequest{EventID: f.eventID, RecipientEmail: "guest@lux.local"})
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationStatusPending, inv.Status)

	resent, err := f.host.Resend(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, resent.ID)

	got, err := f.guest.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)

	sent, err := f.host.Sent(ctx, domain.InvitationFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, sent.Meta.Total)

	all, err := f.host.List(ctx, domain.InvitationFilters{Type: "received"})
	require.NoError(t, err)
	assert.Zero(t, all.Meta.Total)

	require.ErrorIs(t, f.guest.Cancel(ctx, inv.ID), apiclient.ErrForbidden)
	require.NoError(t, f.host.Cancel(ctx, inv.ID))

	got, err = f.host.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationStatusCancelled, got.Status)

	_, err = f.host.Resend(ctx, inv.ID)
	require.Error(t, err)

	apiErr, ok := apiclient.AsError(err)
	require.True(t, ok)
	assert.Equal(t, apiclient.ErrorCode("INVALID_STATUS"), apiErr.Code)
}

func TestByToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := setup(t)

	inv, err := f.host.Create(ctx, domain.CreateInvitationRequest{EventID: f.eventID, RecipientEmail: "stranger@lux.local"})
	require.NoError(t, err)

	token, ok := f.backend.Server.InvitationToken(inv.ID)
	require.True(t, ok)

	// Token endpoints work without a session.
	_, anonymous := f.backend.NewClient()
	public := invitationsvc.NewInvitationService(anonymous)

	got, err := public.GetByToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, got.ID)
	assert.Equal(t, "Garden Party", got.Event.Title)

	got, err = public.RespondByToken(ctx, token, domain.RespondInvitationRequest{Status: domain.InvitationStatusDeclined})
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationStatusDeclined, got.Status)

	_, err = public.GetByToken(ctx, "does-not-exist")
	require.ErrorIs(t, err, apiclient.ErrNotFound)
}
