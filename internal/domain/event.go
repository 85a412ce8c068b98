package domain

// EventStatus is the lifecycle state of an event. Transitions are enforced by the backend.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// Event is the full event entity.
type Event struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	CoverImage       string        `json:"coverImage,omitempty"`
	StartDate        string        `json:"startDate"`
	EndDate          string        `json:"endDate"`
	Timezone         string        `json:"timezone"`
	Location         EventLocation `json:"location"`
	Status           EventStatus   `json:"status"`
	Visibility       string        `json:"visibility"` // "public", "private" or "unlisted"
	MaxAttendees     *int          `json:"maxAttendees,omitempty"`
	CurrentAttendees int           `json:"currentAttendees"`
	Host             UserSummary   `json:"host"`
	Categories       []string      `json:"categories"`
	Tags             []string      `json:"tags"`
	Settings         EventSettings `json:"settings"`
	CreatedAt        string        `json:"created_at"`
	UpdatedAt        string        `json:"updated_at"`
}

// EventLocation describes where an event takes place.
type EventLocation struct {
	Type           string       `json:"type"` // "online", "offline" or "hybrid"
	Venue          string       `json:"venue,omitempty"`
	Address        string       `json:"address,omitempty"`
	City           string       `json:"city,omitempty"`
	Country        string       `json:"country,omitempty"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
	OnlineURL      string       `json:"onlineUrl,omitempty"`
	OnlinePlatform string       `json:"onlinePlatform,omitempty"`
}

// Coordinates is a geographic position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EventSettings are host-controlled event options.
type EventSettings struct {
	AllowComments   bool  `json:"allowComments"`
	AllowGuests     bool  `json:"allowGuests"`
	RequireApproval bool  `json:"requireApproval"`
	SendReminders   bool  `json:"sendReminders"`
	ReminderTiming  []int `json:"reminderTiming"` // hours before the event
}

// EventSummary is the list representation of an event.
type EventSummary struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	CoverImage       string        `json:"coverImage,omitempty"`
	StartDate        string        `json:"startDate"`
	EndDate          string        `json:"endDate"`
	Location         EventLocation `json:"location"`
	Status           EventStatus   `json:"status"`
	CurrentAttendees int           `json:"currentAttendees"`
	MaxAttendees     *int          `json:"maxAttendees,omitempty"`
	Host             UserSummary   `json:"host"`
}

// CreateEventRequest is the body of POST /events.
type CreateEventRequest struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	CoverImage   string         `json:"coverImage,omitempty"`
	StartDate    string         `json:"startDate"`
	EndDate      string         `json:"endDate"`
	Timezone     string         `json:"timezone"`
	Location     EventLocation  `json:"location"`
	Visibility   string         `json:"visibility"`
	MaxAttendees *int           `json:"maxAttendees,omitempty"`
	Categories   []string       `json:"categories,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Settings     *EventSettings `json:"settings,omitempty"`
}

// UpdateEventRequest is the body of PATCH /events/{id}. Nil fields are left untouched.
type UpdateEventRequest struct {
	Title        *string        `json:"title,omitempty"`
	Description  *string        `json:"description,omitempty"`
	CoverImage   *string        `json:"coverImage,omitempty"`
	StartDate    *string        `json:"startDate,omitempty"`
	EndDate      *string        `json:"endDate,omitempty"`
	Timezone     *string        `json:"timezone,omitempty"`
	Location     *EventLocation `json:"location,omitempty"`
	Visibility   *string        `json:"visibility,omitempty"`
	MaxAttendees *int           `json:"maxAttendees,omitempty"`
	Categories   []string       `json:"categories,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Settings     *EventSettings `json:"settings,omitempty"`
	Status       *EventStatus   `json:"status,omitempty"`
}

// CancelEventRequest is the body of POST /events/{id}/cancel.
type CancelEventRequest struct {
	Reason string `json:"reason,omitempty"`
}

// EventFilters are the query parameters of the event list endpoints.
type EventFilters struct {
	PaginationParams
	Search       string      `json:"search,omitempty"`
	Status       EventStatus `json:"status,omitempty"`
	Visibility   string      `json:"visibility,omitempty"`
	LocationType string      `json:"locationType,omitempty"`
	Category     string      `json:"category,omitempty"`
	StartFrom    string      `json:"startFrom,omitempty"`
	StartTo      string      `json:"startTo,omitempty"`
	HostID       string      `json:"hostId,omitempty"`
}

// AttendeeFilters are the query parameters of the attendee list endpoint.
type AttendeeFilters struct {
	Page   int    `json:"page,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Status string `json:"status,omitempty"`
}

// EventAttendee is a registration of a user for an event.
type EventAttendee struct {
	ID        string      `json:"id"`
	EventID   string      `json:"eventId"`
	UserID    string      `json:"userId"`
	User      UserSummary `json:"user"`
	Status    string      `json:"status"` // "registered", "waitlisted", "checked_in", "cancelled" or "no_show"
	JoinedAt  string      `json:"joinedAt"`
	CheckInAt string      `json:"checkInAt,omitempty"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}
