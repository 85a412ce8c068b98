package invitationsvc

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mkrupp/luxclient/internal/apiclient"
	"github.com/mkrupp/luxclient/internal/domain"
	"github.com/mkrupp/luxclient/internal/infra/logging"
)

// InvitationService wraps the invitation endpoints of the backend. Expiry and the
// effect of accepting are decided by the backend.
type InvitationService struct {
	Client *apiclient.Client
	Log    logging.Logger
}

// NewInvitationService creates a new InvitationService on top of client.
func NewInvitationService(client *apiclient.Client) *InvitationService {
	return &InvitationService{
		Client: client,
		Log:    logging.GetLogger("svc.invitationsvc.invitation_service"),
	}
}

func invitationPath(id string, rest ...string) string {
	path := "/invitations/" + url.PathEscape(id)
	for _, r := range rest {
		path += "/" + r
	}

	return path
}

func tokenPath(token string, rest ...string) string {
	path := "/invitations/token/" + url.PathEscape(token)
	for _, r := range rest {
		path += "/" + r
	}

	return path
}

func (s *InvitationService) list(
	ctx context.Context,
	path string,
	filters domain.InvitationFilters,
) (domain.Paginated[domain.Invitation], error) {
	params, err := apiclient.ParamsFrom(filters)
	if err != nil {
		return domain.Paginated[domain.Invitation]{}, fmt.Errorf("params: %w", err)
	}

	env, err := apiclient.Get[domain.Paginated[domain.Invitation]](ctx, s.Client, path, params)
	if err != nil {
		return domain.Paginated[domain.Invitation]{}, fmt.Errorf("list invitations: %w", err)
	}

	return env.Data, nil
}

// List returns invitations sent or received by the signed-in user. filters.Type
// narrows the list to "sent" or "received".
func (s *InvitationService) List(
	ctx context.Context,
	filters domain.InvitationFilters,
) (domain.Paginated[domain.Invitation], error) {
	return s.list(ctx, "/invitations", filters)
}

// Received returns the invitations addressed to the signed-in user.
func (s *InvitationService) Received(
	ctx context.Context,
	filters domain.InvitationFilters,
) (domain.Paginated[domain.Invitation], error) {
	return s.list(ctx, "/users/me/invitations", filters)
}

// Sent returns the invitations sent by the signed-in user.
func (s *InvitationService) Sent(
	ctx context.Context,
	filters domain.InvitationFilters,
) (domain.Paginated[domain.Invitation], error) {
	return s.list(ctx, "/users/me/invitations/sent", filters)
}

// Get returns the invitation with the given ID.
func (s *InvitationService) Get(ctx context.Context, id string) (domain.Invitation, error) {
	env, err := apiclient.Get[domain.Invitation](ctx, s.Client, invitationPath(id), nil)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("get invitation: %w", err)
	}

	return env.Data, nil
}

// Create invites one recipient to an event.
func (s *InvitationService) Create(ctx context.Context, req domain.CreateInvitationRequest) (_ domain.Invitation, err error) {
	log := s.Log.With(logging.Group("invitation", "eventId", req.EventID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create invitation failed", "error", err)
		} else {
			log.DebugContext(ctx, "invitation created")
		}
	}()

	env, err := apiclient.Post[domain.Invitation](ctx, s.Client, "/invitations", req)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}

	return env.Data, nil
}

// SendForEvent invites several recipients to an event at once.
func (s *InvitationService) SendForEvent(
	ctx context.Context,
	eventID string,
	req domain.SendInvitationsRequest,
) (_ domain.SendInvitationsResponse, err error) {
	log := s.Log.With(logging.Group("invitation", "eventId", eventID, "recipients", len(req.Emails)))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "send invitations failed", "error", err)
		} else {
			log.DebugContext(ctx, "invitations sent")
		}
	}()

	path := "/events/" + url.PathEscape(eventID) + "/invitations"

	env, err := apiclient.Post[domain.SendInvitationsResponse](ctx, s.Client, path, req)
	if err != nil {
		return domain.SendInvitationsResponse{}, fmt.Errorf("send invitations: %w", err)
	}

	return env.Data, nil
}

// Respond accepts or declines an invitation addressed to the signed-in user.
func (s *InvitationService) Respond(
	ctx context.Context,
	id string,
	req domain.RespondInvitationRequest,
) (domain.Invitation, error) {
	env, err := apiclient.Put[domain.Invitation](ctx, s.Client, invitationPath(id, "respond"), req)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("respond to invitation: %w", err)
	}

	return env.Data, nil
}

// Cancel withdraws an invitation sent by the signed-in user.
func (s *InvitationService) Cancel(ctx context.Context, id string) error {
	if _, err := s.Client.Delete(ctx, invitationPath(id), apiclient.RequestOptions{}); err != nil {
		return fmt.Errorf("cancel invitation: %w", err)
	}

	return nil
}

// Resend sends a pending invitation again.
func (s *InvitationService) Resend(ctx context.Context, id string) (domain.Invitation, error) {
	env, err := apiclient.Post[domain.Invitation](ctx, s.Client, invitationPath(id, "resend"), nil)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("resend invitation: %w", err)
	}

	return env.Data, nil
}

// GetByToken returns the invitation behind a public invitation token. No sign-in is
// required.
func (s *InvitationService) GetByToken(ctx context.Context, token string) (domain.Invitation, error) {
	env, err := apiclient.Get[domain.Invitation](ctx, s.Client, tokenPath(token), nil)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("get invitation by token: %w", err)
	}

	return env.Data, nil
}

// RespondByToken accepts or declines the invitation behind a public invitation token.
func (s *InvitationService) RespondByToken(
	ctx context.Context,
	token string,
	req domain.RespondInvitationRequest,
) (domain.Invitation, error) {
	env, err := apiclient.Post[domain.Invitation](ctx, s.Client, tokenPath(token, "respond"), req)
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("respond to invitation by token: %w", err)
	}

	return env.Data, nil
}

// PendingCount returns the number of pending invitations addressed to the signed-in user.
func (s *InvitationService) PendingCount(ctx context.Context) (int, error) {
	env, err := apiclient.Get[domain.CountResponse](ctx, s.Client, "/invitations/pending/count", nil)
	if err != nil {
		return 0, fmt.Errorf("pending invitation count: %w", err)
	}

	return env.Data.Count, nil
}
