package fakeapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mkrupp/luxclient/internal/domain"
)

type account struct {
	user         domain.User
	passwordHash []byte
}

func (a *account) summary() domain.UserSummary {
	return domain.UserSummary{
		ID:           a.user.ID,
		Name:         a.user.Name,
		Email:        a.user.Email,
		ProfileImage: a.user.ProfileImage,
	}
}

// state is the in-memory database of the fake backend. All fields are guarded by mu.
// The id slices keep insertion order for listings.
type state struct {
	mu sync.Mutex

	accounts      map[string]*account
	emails        map[string]string // email -> user id
	refreshTokens map[string]string // refresh token -> user id
	resetTokens   map[string]string // reset token -> user id
	verifyTokens  map[string]string // verification token -> user id

	events   map[string]*domain.Event
	eventIDs []string

	attendees map[string][]*domain.EventAttendee // event id -> registrations

	invitations      map[string]*domain.Invitation
	invitationIDs    []string
	invitationTokens map[string]string // public token -> invitation id

	posts   map[string]*domain.Post
	postIDs []string
}

func newState() *state {
	return &state{
		accounts:         make(map[string]*account),
		emails:           make(map[string]string),
		refreshTokens:    make(map[string]string),
		resetTokens:      make(map[string]string),
		verifyTokens:     make(map[string]string),
		events:           make(map[string]*domain.Event),
		attendees:        make(map[string][]*domain.EventAttendee),
		invitations:      make(map[string]*domain.Invitation),
		invitationTokens: make(map[string]string),
		posts:            make(map[string]*domain.Post),
	}
}

func hashPassword(password string) []byte {
	hasher := sha256.New()
	hasher.Write([]byte(password))

	return hasher.Sum(nil)
}

func (a *account) checkPassword(password string) bool {
	return hmac.Equal(hashPassword(password), a.passwordHash)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func (st *state) accountByEmail(email string) (*account, bool) {
	id, ok := st.emails[normalizeEmail(email)]
	if !ok {
		return nil, false
	}

	acc, ok := st.accounts[id]

	return acc, ok
}

func (st *state) createAccount(email, password, name, phone string) (*account, error) {
	email = normalizeEmail(email)
	if _, exists := st.emails[email]; exists {
		return nil, errConflict("EMAIL_EXISTS", "Email already registered")
	}

	now := timestamp()
	acc := &account{
		user: domain.User{
			ID:    newID(),
			Email: email,
			Name:  name,
			Phone: phone,
			Role:  "user",
			Preferences: domain.UserPreferences{
				Language:           "en",
				Theme:              "system",
				EmailNotifications: true,
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		passwordHash: hashPassword(password),
	}

	st.accounts[acc.user.ID] = acc
	st.emails[email] = acc.user.ID
	st.verifyTokens[newOpaqueToken("vt")] = acc.user.ID

	return acc, nil
}

// revokeRefreshTokens drops every refresh token of the user.
func (st *state) revokeRefreshTokens(userID string) {
	for token, owner := range st.refreshTokens {
		if owner == userID {
			delete(st.refreshTokens, token)
		}
	}
}

func tokenFor(tokens map[string]string, userID string) (string, bool) {
	for token, owner := range tokens {
		if owner == userID {
			return token, true
		}
	}

	return "", false
}

func (st *state) orderedEvents(keep func(*domain.Event) bool) []*domain.Event {
	events := make([]*domain.Event, 0, len(st.eventIDs))

	for _, id := range st.eventIDs {
		if ev, ok := st.events[id]; ok && keep(ev) {
			events = append(events, ev)
		}
	}

	return events
}

func (st *state) orderedInvitations(keep func(*domain.Invitation) bool) []domain.Invitation {
	invitations := make([]domain.Invitation, 0, len(st.invitationIDs))

	for _, id := range st.invitationIDs {
		if inv, ok := st.invitations[id]; ok && keep(inv) {
			invitations = append(invitations, *inv)
		}
	}

	return invitations
}

func (st *state) registration(eventID, userID string) (*domain.EventAttendee, bool) {
	for _, att := range st.attendees[eventID] {
		if att.UserID == userID && att.Status != "cancelled" {
			return att, true
		}
	}

	return nil, false
}

func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(v string) bool { return v == id })
}

func summarize(ev *domain.Event) domain.EventSummary {
	return domain.EventSummary{
		ID:               ev.ID,
		Title:            ev.Title,
		CoverImage:       ev.CoverImage,
		StartDate:        ev.StartDate,
		EndDate:          ev.EndDate,
		Location:         ev.Location,
		Status:           ev.Status,
		CurrentAttendees: ev.CurrentAttendees,
		MaxAttendees:     ev.MaxAttendees,
		Host:             ev.Host,
	}
}

func summarizeAll(events []*domain.Event) []domain.EventSummary {
	summaries := make([]domain.EventSummary, len(events))
	for i, ev := range events {
		summaries[i] = summarize(ev)
	}

	return summaries
}
