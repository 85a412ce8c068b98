package domain

// PostType classifies event posts.
type PostType string

const (
	PostTypeUpdate       PostType = "update"
	PostTypeAnnouncement PostType = "announcement"
	PostTypeReminder     PostType = "reminder"
)

// Post is an update or announcement attached to an event.
type Post struct {
	ID        string      `json:"id"`
	EventID   string      `json:"eventId"`
	AuthorID  string      `json:"authorId"`
	Author    UserSummary `json:"author"`
	Type      PostType    `json:"type"`
	Title     string      `json:"title,omitempty"`
	Content   string      `json:"content"`
	Images    []string    `json:"images,omitempty"`
	IsPinned  bool        `json:"isPinned"`
	PinnedAt  string      `json:"pinnedAt,omitempty"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

// CreatePostRequest is the body of POST /events/{id}/posts.
type CreatePostRequest struct {
	Type    PostType `json:"type,omitempty"`
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// UpdatePostRequest is the body of PUT /posts/{id}.
type UpdatePostRequest struct {
	Type    PostType `json:"type,omitempty"`
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content,omitempty"`
	Images  []string `json:"images,omitempty"`
}

// PostFilters are the query parameters of the event post list.
type PostFilters struct {
	Page  int      `json:"page,omitempty"`
	Limit int      `json:"limit,omitempty"`
	Type  PostType `json:"type,omitempty"`
}
