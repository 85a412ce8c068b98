package fakeapi

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mkrupp/luxclient/internal/domain"
)

const defaultUpcomingLimit = 5

// eventForHost loads an event the current account hosts. Callers must hold state.mu.
func (s *Server) eventForHost(r *http.Request) (*domain.Event, *account, error) {
	acc, err := s.currentAccount(r)
	if err != nil {
		return nil, nil, err
	}

	ev, ok := s.state.events[mux.Vars(r)["id"]]
	if !ok {
		return nil, nil, errNotFound("Event")
	}

	if ev.Host.ID != acc.user.ID {
		return nil, nil, errForbidden("Only the host can manage this event")
	}

	return ev, acc, nil
}

func matchesFilters(ev *domain.Event, q url.Values) bool {
	if search := strings.ToLower(firstNonEmpty(q.Get("search"), q.Get("q"))); search != "" &&
		!strings.Contains(strings.ToLower(ev.Title), search) &&
		!strings.Contains(strings.ToLower(ev.Description), search) {
		return false
	}

	if status := q.Get("status"); status != "" && string(ev.Status) != status {
		return false
	}

	if visibility := q.Get("visibility"); visibility != "" && ev.Visibility != visibility {
		return false
	}

	if locationType := q.Get("locationType"); locationType != "" && ev.Location.Type != locationType {
		return false
	}

	if category := q.Get("category"); category != "" && !slices.Contains(ev.Categories, category) {
		return false
	}

	if hostID := q.Get("hostId"); hostID != "" && ev.Host.ID != hostID {
		return false
	}

	if from := q.Get("startFrom"); from != "" && ev.StartDate < from {
		return false
	}

	if to := q.Get("startTo"); to != "" && ev.StartDate > to {
		return false
	}

	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func isPubliclyListed(ev *domain.Event) bool {
	return ev.Visibility == "public" && ev.Status != domain.EventStatusDraft
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	q := r.URL.Query()
	events := s.state.orderedEvents(func(ev *domain.Event) bool {
		return isPubliclyListed(ev) && matchesFilters(ev, q)
	})

	writeData(w, http.StatusOK, paginate(r, summarizeAll(events)), "")

	return nil
}

func (s *Server) handleSearchEvents(w http.ResponseWriter, r *http.Request) error {
	return s.handleListEvents(w, r)
}

func (s *Server) handleMyEvents(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	q := r.URL.Query()
	events := s.state.orderedEvents(func(ev *domain.Event) bool {
		return ev.Host.ID == acc.user.ID && matchesFilters(ev, q)
	})

	writeData(w, http.StatusOK, paginate(r, summarizeAll(events)), "")

	return nil
}

func (s *Server) handleAttendingEvents(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	events := s.state.orderedEvents(func(ev *domain.Event) bool {
		_, registered := s.state.registration(ev.ID, acc.user.ID)

		return registered
	})

	writeData(w, http.StatusOK, paginate(r, summarizeAll(events)), "")

	return nil
}

func (s *Server) handleUpcomingEvents(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	events := s.state.orderedEvents(func(ev *domain.Event) bool {
		return isPubliclyListed(ev) && ev.Status == domain.EventStatusPublished && ev.StartDate >= now
	})

	slices.SortStableFunc(events, func(a, b *domain.Event) int {
		return strings.Compare(a.StartDate, b.StartDate)
	})

	if limit := queryInt(r, "limit", defaultUpcomingLimit); len(events) > limit {
		events = events[:limit]
	}

	writeData(w, http.StatusOK, summarizeAll(events), "")

	return nil
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	ev, ok := s.state.events[mux.Vars(r)["id"]]
	if !ok {
		return errNotFound("Event")
	}

	writeData(w, http.StatusOK, *ev, "")

	return nil
}

func validateEvent(title, startDate, endDate string) map[string][]string {
	details := map[string][]string{}

	if strings.TrimSpace(title) == "" {
		details["title"] = []string{"Title is required"}
	}

	start, startErr := time.Parse(time.RFC3339, startDate)
	if startErr != nil {
		details["startDate"] = []string{"Start date must be an RFC 3339 timestamp"}
	}

	end, endErr := time.Parse(time.RFC3339, endDate)
	if endErr != nil {
		details["endDate"] = []string{"End date must be an RFC 3339 timestamp"}
	}

	if startErr == nil && endErr == nil && end.Before(start) {
		details["endDate"] = []string{"End date must be after start date"}
	}

	return details
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) error {
	var req domain.CreateEventRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	if details := validateEvent(req.Title, req.StartDate, req.EndDate); len(details) > 0 {
		return errValidation(details)
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	now := timestamp()
	ev := &domain.Event{
		ID:           newID(),
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		CoverImage:   req.CoverImage,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Timezone:     firstNonEmpty(req.Timezone, "UTC"),
		Location:     req.Location,
		Status:       domain.EventStatusDraft,
		Visibility:   firstNonEmpty(req.Visibility, "public"),
		MaxAttendees: req.MaxAttendees,
		Host:         acc.summary(),
		Categories:   append([]string{}, req.Categories...),
		Tags:         append([]string{}, req.Tags...),
		Settings:     domain.EventSettings{AllowComments: true, ReminderTiming: []int{24}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if req.Settings != nil {
		ev.Settings = *req.Settings
	}

	s.state.events[ev.ID] = ev
	s.state.eventIDs = append(s.state.eventIDs, ev.ID)

	writeData(w, http.StatusCreated, *ev, "Event created")

	return nil
}

//nolint:cyclop
func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) error {
	var req domain.UpdateEventRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	ev, _, err := s.eventForHost(r)
	if err != nil {
		return err
	}

	updated := *ev

	if req.Title != nil {
		updated.Title = *req.Title
	}

	if req.Description != nil {
		updated.Description = *req.Description
	}

	if req.CoverImage != nil {
		updated.CoverImage = *req.CoverImage
	}

	if req.StartDate != nil {
		updated.StartDate = *req.StartDate
	}

	if req.EndDate != nil {
		updated.EndDate = *req.EndDate
	}

	if req.Timezone != nil {
		updated.Timezone = *req.Timezone
	}

	if req.Location != nil {
		updated.Location = *req.Location
	}

	if req.Visibility != nil {
		updated.Visibility = *req.Visibility
	}

	if req.MaxAttendees != nil {
		updated.MaxAttendees = req.MaxAttendees
	}

	if req.Categories != nil {
		updated.Categories = req.Categories
	}

	if req.Tags != nil {
		updated.Tags = req.Tags
	}

	if req.Settings != nil {
		updated.Settings = *req.Settings
	}

	if req.Status != nil {
		updated.Status = *req.Status
	}

	if details := validateEvent(updated.Title, updated.StartDate, updated.EndDate); len(details) > 0 {
		return errValidation(details)
	}

	updated.UpdatedAt = timestamp()
	*ev = updated

	writeData(w, http.StatusOK, *ev, "Event updated")

	return nil
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	ev, _, err := s.eventForHost(r)
	if err != nil {
		return err
	}

	delete(s.state.events, ev.ID)
	delete(s.state.attendees, ev.ID)
	s.state.eventIDs = removeID(s.state.eventIDs, ev.ID)

	writeMessage(w, "Event deleted successfully")

	return nil
}

func (s *Server) handlePublishEvent(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	ev, _, err := s.eventForHost(r)
	if err != nil {
		return err
	}

	if ev.Status != domain.EventStatusDraft {
		return errBadRequest("INVALID_STATUS", "Only draft events can be published")
	}

	ev.Status = domain.EventStatusPublished
	ev.UpdatedAt = timestamp()

	writeData(w, http.StatusOK, *ev, "Event published")

	return nil
}

func (s *Server) handleCancelEvent(w http.ResponseWriter, r *http.Request) error {
	var req domain.CancelEventRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	ev, _, err := s.eventForHost(r)
	if err != nil {
		return err
	}

	if ev.Status == domain.EventStatusCancelled || ev.Status == domain.EventStatusCompleted {
		return errBadRequest("INVALID_STATUS", "Event can no longer be cancelled")
	}

	ev.Status = domain.EventStatusCancelled
	ev.UpdatedAt = timestamp()

	writeData(w, http.StatusOK, *ev, firstNonEmpty(req.Reason, "Event cancelled"))

	return nil
}

func (s *Server) handleListAttendees(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	if _, err := s.currentAccount(r); err != nil {
		return err
	}

	eventID := mux.Vars(r)["id"]
	if _, ok := s.state.events[eventID]; !ok {
		return errNotFound("Event")
	}

	status := r.URL.Query().Get("status")
	attendees := make([]domain.EventAttendee, 0, len(s.state.attendees[eventID]))

	for _, att := range s.state.attendees[eventID] {
		if status == "" || att.Status == status {
			attendees = append(attendees, *att)
		}
	}

	writeData(w, http.StatusOK, paginate(r, attendees), "")

	return nil
}

// register adds acc to the event, waitlisting when the event is full. Callers must
// hold state.mu.
func (s *Server) register(ev *domain.Event, acc *account) (*domain.EventAttendee, error) {
	if ev.Status != domain.EventStatusPublished {
		return nil, errBadRequest("EVENT_NOT_OPEN", "Event is not open for registration")
	}

	if _, ok := s.state.registration(ev.ID, acc.user.ID); ok {
		return nil, errConflict("ALREADY_REGISTERED", "Already registered for this event")
	}

	now := timestamp()
	att := &domain.EventAttendee{
		ID:        newID(),
		EventID:   ev.ID,
		UserID:    acc.user.ID,
		User:      acc.summary(),
		Status:    "registered",
		JoinedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if ev.MaxAttendees != nil && ev.CurrentAttendees >= *ev.MaxAttendees {
		att.Status = "waitlisted"
	} else {
		ev.CurrentAttendees++
	}

	s.state.attendees[ev.ID] = append(s.state.attendees[ev.ID], att)

	return att, nil
}

func (s *Server) handleRegisterForEvent(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	ev, ok := s.state.events[mux.Vars(r)["id"]]
	if !ok {
		return errNotFound("Event")
	}

	att, err := s.register(ev, acc)
	if err != nil {
		return err
	}

	writeData(w, http.StatusCreated, *att, "Registered for event")

	return nil
}

func (s *Server) handleUnregisterFromEvent(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	acc, err := s.currentAccount(r)
	if err != nil {
		return err
	}

	ev, ok := s.state.events[mux.Vars(r)["id"]]
	if !ok {
		return errNotFound("Event")
	}

	att, ok := s.state.registration(ev.ID, acc.user.ID)
	if !ok {
		return errNotFound("Registration")
	}

	if att.Status != "waitlisted" && ev.CurrentAttendees > 0 {
		ev.CurrentAttendees--
	}

	att.Status = "cancelled"
	att.UpdatedAt = timestamp()

	writeMessage(w, "Unregistered from event")

	return nil
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	ev, _, err := s.eventForHost(r)
	if err != nil {
		return err
	}

	attendeeID := mux.Vars(r)["attendeeId"]

	for _, att := range s.state.attendees[ev.ID] {
		if att.ID != attendeeID {
			continue
		}

		if att.Status != "registered" {
			return errBadRequest("INVALID_STATUS", "Only registered attendees can be checked in")
		}

		now := timestamp()
		att.Status = "checked_in"
		att.CheckInAt = now
		att.UpdatedAt = now

		writeData(w, http.StatusOK, *att, "Attendee checked in")

		return nil
	}

	return errNotFound("Attendee")
}
