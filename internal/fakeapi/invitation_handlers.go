package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mkrupp/luxclient/internal/domain"
)

const invitationTTL = 14 * 24 * time.Hour

// newInvitation creates a pending invitation and its public token. Callers must hold state.mu.
func (s *Server) newInvitation(ev *domain.Event, sender *account, email, message, expiresAt string) *domain.Invitation {
	now := time.Now().UTC()

	inv := &domain.Invitation{
		ID:             newID(),
		EventID:        ev.ID,
		Event:          summarize(ev),
		SenderID:       sender.user.ID,
		Sender:         sender.summary(),
		RecipientEmail: normalizeEmail(email),
		Status:         domain.InvitationStatusPending,
		Message:        message,
		ExpiresAt:      firstNonEmpty(expiresAt, now.Add(invitationTTL).Format(time.RFC3339)),
		CreatedAt:      now.Format(time.RFC3339),
		UpdatedAt:      now.Format(time.RFC3339),
	}

	if recipient, ok := s.state.accountByEmail(email); ok {
		summary := recipient.summary()
		inv.RecipientID = recipient.user.ID
		inv.Recipient = &summary
	}

	s.state.invitations[inv.ID] = inv
	s.state.invitationIDs = append(s.state.invitationIDs, inv.ID)
	s.state.invitationTokens[newOpaqueToken("inv")] = inv.ID

	return inv
}

func isRecipient(inv *domain.Invitation, acc *account) bool {
	return inv.RecipientEmail == acc.user.Email
}

func invitationFilter(r *http.Request, keep func(*domain.Invitation) bool) func(*domain.Invitation) bool {
	q := r.URL.Query()

	return func(inv *domain.Invitation) bool {
		if status := q.Get("status"); status != "" && string(inv.Status) != status {
			return false
		}

		if eventID := q.Get("eventId"); eventID != "" && inv.EventID != eventID {
			return false
		}

		return keep(inv)
	}
}

func (s *Server) listInvitations(w http.ResponseWriter, r *http.Request, kind string) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	invitations := s.state.orderedInvitations(invitationFilter(r, func(inv *domain.Invitation) bool {
		switch kind {
		case "sent":
			return inv.SenderID == acc.user.ID
		case "received":
			return isRecipient(inv, acc)
		default:
			return inv.SenderID == acc.user.ID || isRecipient(inv, acc)
		}
	}))

	writeData(w, http.StatusOK, paginate(r, invitations), "")

	return nil
}

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request) error {
	return s.listInvitations(w, r, r.URL.Query().Get("type"))
}

func (s *Server) handleReceivedInvitations(w http.ResponseWriter, r *http.Request) error {
	return s.listInvitations(w, r, "received")
}

func (s *Server) handleSentInvitations(w http.ResponseWriter, r *http.Request) error {
	return s.listInvitations(w, r, "sent")
}

func (s *Server) handlePendingCount(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	pending := s.state.orderedInvitations(func(inv *domain.Invitation) bool {
		return isRecipient(inv, acc) && inv.Status == domain.InvitationStatusPending
	})

	writeData(w, http.StatusOK, domain.CountResponse{Count: len(pending)}, "")

	return nil
}

// invitationFor loads an invitation visible to the current account. Callers must hold state.mu.
func (s *Server) invitationFor(r *http.Request) (*domain.Invitation, *account, error) {
	acc, err := s.currentAccount(r)
	if err != nil {
		return nil, nil, err
	}

	inv, ok := s.state.invitations[mux.Vars(r)["id"]]
	if !ok {
		return nil, nil, errNotFound("Invitation")
	}

	if inv.SenderID != acc.user.ID && !isRecipient(inv, acc) {
		return nil, nil, errForbidden("Not allowed to access this invitation")
	}

	return inv, acc, nil
}

func (s *Server) handleGetInvitation(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	inv, _, err := s.invitationFor(r)
	if err != nil {
		return err
	}

	writeData(w, http.StatusOK, *inv, "")

	return nil
}

func (s *Server) handleCreateInvitation(w http.ResponseWriter, r *http.Request) error {
	var req domain.CreateInvitationRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	if !strings.Contains(req.RecipientEmail, "@") {
		return errValidation(map[string][]string{"recipientEmail": {"Invalid email address"}})
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	ev, ok := s.state.events[req.EventID]
	if !ok {
		return errNotFound("Event")
	}

	if ev.Host.ID != acc.user.ID {
		return errForbidden("Only the host can invite to this event")
	}

	inv := s.newInvitation(ev, acc, req.RecipientEmail, req.Message, req.ExpiresAt)

	writeData(w, http.StatusCreated, *inv, "Invitation sent")

	return nil
}

func (s *Server) handleSendInvitations(w http.ResponseWriter, r *http.Request) error {
	var req domain.SendInvitationsRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	ev, acc, err := s.eventForHost(r)
	if err != nil {
		return err
	}

	resp := domain.SendInvitationsResponse{Failed: []string{}}

	for _, email := range req.Emails {
		if !strings.Contains(email, "@") {
			resp.Failed = append(resp.Failed, email)

			continue
		}

		s.newInvitation(ev, acc, email, req.Message, "")
		resp.Sent++
	}

	writeData(w, http.StatusOK, resp, "")

	return nil
}

// respond applies an accept or decline. Callers must hold state.mu.
func (s *Server) respond(inv *domain.Invitation, req domain.RespondInvitationRequest) error {
	if req.Status != domain.InvitationStatusAccepted && req.Status != domain.InvitationStatusDeclined {
		return errValidation(map[string][]string{"status": {"Status must be accepted or declined"}})
	}

	if inv.Status != domain.InvitationStatusPending {
		return errBadRequest("INVALID_STATUS", "Invitation is no longer pending")
	}

	if inv.ExpiresAt != "" && inv.ExpiresAt < timestamp() {
		inv.Status = domain.InvitationStatusExpired

		return errBadRequest("INVITATION_EXPIRED", "Invitation has expired")
	}

	now := timestamp()
	inv.Status = req.Status
	inv.RespondedAt = now
	inv.UpdatedAt = now

	if req.Status == domain.InvitationStatusAccepted && inv.RecipientID != "" {
		ev, evOK := s.state.events[inv.EventID]
		acc, accOK := s.state.accounts[inv.RecipientID]

		if evOK && accOK {
			if _, registered := s.state.registration(ev.ID, acc.user.ID); !registered {
				if _, err := s.register(ev, acc); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (s *Server) handleRespondInvitation(w http.ResponseWriter, r *http.Request) error {
	var req domain.RespondInvitationRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	inv, acc, err := s.invitationFor(r)
	if err != nil {
		return err
	}

	if !isRecipient(inv, acc) {
		return errForbidden("Only the recipient can respond to this invitation")
	}

	if err := s.respond(inv, req); err != nil {
		return err
	}

	writeData(w, http.StatusOK, *inv, "")

	return nil
}

func (s *Server) handleCancelInvitation(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	inv, acc, err := s.invitationFor(r)
	if err != nil {
		return err
	}

	if inv.SenderID != acc.user.ID {
		return errForbidden("Only the sender can cancel this invitation")
	}

	inv.Status = domain.InvitationStatusCancelled
	inv.UpdatedAt = timestamp()

	writeMessage(w, "Invitation cancelled")

	return nil
}

func (s *Server) handleResendInvitation(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	inv, acc, err := s.invitationFor(r)
	if err != nil {
		return err
	}

	if inv.SenderID != acc.user.ID {
		return errForbidden("Only the sender can resend this invitation")
	}

	if inv.Status != domain.InvitationStatusPending {
		return errBadRequest("INVALID_STATUS", "Only pending invitations can be resent")
	}

	now := time.Now().UTC()
	inv.ExpiresAt = now.Add(invitationTTL).Format(time.RFC3339)
	inv.UpdatedAt = now.Format(time.RFC3339)

	writeData(w, http.StatusOK, *inv, "Invitation resent")

	return nil
}

func (s *Server) invitationByToken(r *http.Request) (*domain.Invitation, error) {
	id, ok := s.state.invitationTokens[mux.Vars(r)["token"]]
	if !ok {
		return nil, errNotFound("Invitation")
	}

	inv, ok := s.state.invitations[id]
	if !ok {
		return nil, errNotFound("Invitation")
	}

	return inv, nil
}

func (s *Server) handleGetInvitationByToken(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	inv, err := s.invitationByToken(r)
	if err != nil {
		return err
	}

	writeData(w, http.StatusOK, *inv, "")

	return nil
}

func (s *Server) handleRespondByToken(w http.ResponseWriter, r *http.Request) error {
	var req domain.RespondInvitationRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	inv, err := s.invitationByToken(r)
	if err != nil {
		return err
	}

	if err := s.respond(inv, req); err != nil {
		return err
	}

	writeData(w, http.StatusOK, *inv, "")

	return nil
}
