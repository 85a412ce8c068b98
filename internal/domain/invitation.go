package domain

// InvitationStatus is the state of an invitation. Expiry is decided by the backend.
type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "pending"
	InvitationStatusAccepted  InvitationStatus = "accepted"
	InvitationStatusDeclined  InvitationStatus = "declined"
	InvitationStatusExpired   InvitationStatus = "expired"
	InvitationStatusCancelled InvitationStatus = "cancelled"
)

// Invitation is an invitation of a recipient to an event.
type Invitation struct {
	ID             string           `json:"id"`
	EventID        string           `json:"eventId"`
	Event          EventSummary     `json:"event"`
	SenderID       string           `json:"senderId"`
	Sender         UserSummary      `json:"sender"`
	RecipientID    string           `json:"recipientId,omitempty"`
	RecipientEmail string           `json:"recipientEmail"`
	Recipient      *UserSummary     `json:"recipient,omitempty"`
	Status         InvitationStatus `json:"status"`
	Message        string           `json:"message,omitempty"`
	RespondedAt    string           `json:"respondedAt,omitempty"`
	ExpiresAt      string           `json:"expiresAt,omitempty"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
}

// CreateInvitationRequest is the body of POST /invitations.
type CreateInvitationRequest struct {
	EventID        string `json:"eventId"`
	RecipientEmail string `json:"recipientEmail"`
	Message        string `json:"message,omitempty"`
	ExpiresAt      string `json:"expiresAt,omitempty"`
}

// SendInvitationsRequest is the body of POST /events/{id}/invitations.
type SendInvitationsRequest struct {
	Emails  []string `json:"emails"`
	Message string   `json:"message,omitempty"`
}

// SendInvitationsResponse reports the outcome of a bulk send.
type SendInvitationsResponse struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// RespondInvitationRequest accepts or declines an invitation.
type RespondInvitationRequest struct {
	Status  InvitationStatus `json:"status"` // accepted or declined
	Message string           `json:"message,omitempty"`
}

// InvitationFilters are the query parameters of the invitation list endpoints.
type InvitationFilters struct {
	PaginationParams
	EventID string           `json:"eventId,omitempty"`
	Status  InvitationStatus `json:"status,omitempty"`
	Type    string           `json:"type,omitempty"` // "sent" or "received"
}
