package fakeapi

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mkrupp/luxclient/internal/domain"
)

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	eventID := mux.Vars(r)["id"]
	if _, ok := s.state.events[eventID]; !ok {
		return errNotFound("Event")
	}

	postType := r.URL.Query().Get("type")
	posts := make([]domain.Post, 0)

	for _, id := range s.state.postIDs {
		post, ok := s.state.posts[id]
		if ok && post.EventID == eventID && (postType == "" || string(post.Type) == postType) {
			posts = append(posts, *post)
		}
	}

	// Pinned posts first, newest first otherwise.
	slices.Reverse(posts)
	slices.SortStableFunc(posts, func(a, b domain.Post) int {
		switch {
		case a.IsPinned == b.IsPinned:
			return 0
		case a.IsPinned:
			return -1
		default:
			return 1
		}
	})

	writeData(w, http.StatusOK, paginate(r, posts), "")

	return nil
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) error {
	var req domain.CreatePostRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	if strings.TrimSpace(req.Content) == "" {
		return errValidation(map[string][]string{"content": {"Content is required"}})
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	ev, acc, err := s.eventForHost(r)
	if err != nil {
		return err
	}

	now := timestamp()
	post := &domain.Post{
		ID:        newID(),
		EventID:   ev.ID,
		AuthorID:  acc.user.ID,
		Author:    acc.summary(),
		Type:      req.Type,
		Title:     req.Title,
		Content:   req.Content,
		Images:    req.Images,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if post.Type == "" {
		post.Type = domain.PostTypeUpdate
	}

	s.state.posts[post.ID] = post
	s.state.postIDs = append(s.state.postIDs, post.ID)

	writeData(w, http.StatusCreated, *post, "Post created")

	return nil
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	post, ok := s.state.posts[mux.Vars(r)["id"]]
	if !ok {
		return errNotFound("Post")
	}

	writeData(w, http.StatusOK, *post, "")

	return nil
}

// postFor loads a post the current account may manage: its author, or the host of its
// event when hostAllowed is set. Callers must hold state.mu.
func (s *Server) postFor(r *http.Request, hostAllowed bool) (*domain.Post, error) {
	acc, err := s.currentAccount(r)
	if err != nil {
		return nil, err
	}

	post, ok := s.state.posts[mux.Vars(r)["id"]]
	if !ok {
		return nil, errNotFound("Post")
	}

	if post.AuthorID == acc.user.ID {
		return post, nil
	}

	if ev, ok := s.state.events[post.EventID]; hostAllowed && ok && ev.Host.ID == acc.user.ID {
		return post, nil
	}

	return nil, errForbidden("Not allowed to modify this post")
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) error {
	var req domain.UpdatePostRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	post, err := s.postFor(r, false)
	if err != nil {
		return err
	}

	if req.Type != "" {
		post.Type = req.Type
	}

	if req.Title != "" {
		post.Title = req.Title
	}

	if req.Content != "" {
		post.Content = req.Content
	}

	if req.Images != nil {
		post.Images = req.Images
	}

	post.UpdatedAt = timestamp()

	writeData(w, http.StatusOK, *post, "Post updated")

	return nil
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	post, err := s.postFor(r, true)
	if err != nil {
		return err
	}

	delete(s.state.posts, post.ID)
	s.state.postIDs = removeID(s.state.postIDs, post.ID)

	writeMessage(w, "Post deleted successfully")

	return nil
}

func (s *Server) setPinned(w http.ResponseWriter, r *http.Request, pinned bool) error {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	post, err := s.postFor(r, true)
	if err != nil {
		return err
	}

	now := timestamp()
	post.IsPinned = pinned
	post.PinnedAt = ""
	post.UpdatedAt = now

	if pinned {
		post.PinnedAt = now
	}

	writeData(w, http.StatusOK, *post, "")

	return nil
}

func (s *Server) handlePinPost(w http.ResponseWriter, r *http.Request) error {
	return s.setPinned(w, r, true)
}

func (s *Server) handleUnpinPost(w http.ResponseWriter, r *http.Request) error {
	return s.setPinned(w, r, false)
}
