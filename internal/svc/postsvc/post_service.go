package postsvc

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mkrupp/luxclient/internal/apiclient"
	"github.com/mkrupp/luxclient/internal/domain"
	"github.com/mkrupp/luxclient/internal/infra/logging"
)

// PostService wraps the event post endpoints of the backend.
type PostService struct {
	Client *apiclient.Client
	Log    logging.Logger
}

// NewPostService creates a new PostService on top of client.
func NewPostService(client *apiclient.Client) *PostService {
	return &PostService{
		Client: client,
		Log:    logging.GetLogger("svc.postsvc.post_service"),
	}
}

func postPath(id string) string {
	return "/posts/" + url.PathEscape(id)
}

func eventPostsPath(eventID string) string {
	return "/events/" + url.PathEscape(eventID) + "/posts"
}

// ListForEvent returns the posts of an event, pinned posts first.
func (s *PostService) ListForEvent(
	ctx context.Context,
	eventID string,
	filters domain.PostFilters,
) (domain.Paginated[domain.Post], error) {
	params, err := apiclient.ParamsFrom(filters)
	if err != nil {
		return domain.Paginated[domain.Post]{}, fmt.Errorf("params: %w", err)
	}

	env, err := apiclient.Get[domain.Paginated[domain.Post]](ctx, s.Client, eventPostsPath(eventID), params)
	if err != nil {
		return domain.Paginated[domain.Post]{}, fmt.Errorf("list posts: %w", err)
	}

	return env.Data, nil
}

// Get returns the post with the given ID.
func (s *PostService) Get(ctx context.Context, id string) (domain.Post, error) {
	env, err := apiclient.Get[domain.Post](ctx, s.Client, postPath(id), nil)
	if err != nil {
		return domain.Post{}, fmt.Errorf("get post: %w", err)
	}

	return env.Data, nil
}

// Create publishes a post on an event.
func (s *PostService) Create(ctx context.Context, eventID string, req domain.CreatePostRequest) (_ domain.Post, err error) {
	log := s.Log.With(logging.Group("post", "eventId", eventID, "type", req.Type))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create post failed", "error", err)
		} else {
			log.DebugContext(ctx, "post created")
		}
	}()

	env, err := apiclient.Post[domain.Post](ctx, s.Client, eventPostsPath(eventID), req)
	if err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}

	return env.Data, nil
}

// Update replaces the given fields of a post.
func (s *PostService) Update(ctx context.Context, id string, req domain.UpdatePostRequest) (domain.Post, error) {
	env, err := apiclient.Put[domain.Post](ctx, s.Client, postPath(id), req)
	if err != nil {
		return domain.Post{}, fmt.Errorf("update post: %w", err)
	}

	return env.Data, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if _, err := s.Client.Delete(ctx, postPath(id), apiclient.RequestOptions{}); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	return nil
}

// Pin pins a post to the top of its event.
func (s *PostService) Pin(ctx context.Context, id string) (domain.Post, error) {
	env, err := apiclient.Post[domain.Post](ctx, s.Client, postPath(id)+"/pin", nil)
	if err != nil {
		return domain.Post{}, fmt.Errorf("pin post: %w", err)
	}

	return env.Data, nil
}

// Unpin releases a pinned post.
func (s *PostService) Unpin(ctx context.Context, id string) (domain.Post, error) {
	env, err := apiclient.Delete[domain.Post](ctx, s.Client, postPath(id)+"/pin")
	if err != nil {
		return domain.Post{}, fmt.Errorf("unpin post: %w", err)
	}

	return env.Data, nil
}
