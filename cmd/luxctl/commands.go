package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/mkrupp/luxclient/internal/apiclient"
	"github.com/mkrupp/luxclient/internal/domain"
	"github.com/mkrupp/luxclient/internal/svc/authsvc"
	"github.com/mkrupp/luxclient/internal/svc/eventsvc"
	"github.com/mkrupp/luxclient/internal/svc/invitationsvc"
	"github.com/mkrupp/luxclient/internal/svc/postsvc"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
)

type app struct {
	cfg         Config
	auth        *authsvc.AuthService
	events      *eventsvc.EventService
	invitations *invitationsvc.InvitationService
	posts       *postsvc.PostService
	out         io.Writer
}

func newApp(cfg Config, client *apiclient.Client, out io.Writer) *app {
	return &app{
		cfg:         cfg,
		auth:        authsvc.NewAuthService(client, cfg.Auth),
		events:      eventsvc.NewEventService(client),
		invitations: invitationsvc.NewInvitationService(client),
		posts:       postsvc.NewPostService(client),
		out:         out,
	}
}

type command struct {
	usage string
	run   func(a *app, ctx context.Context, fs *flag.FlagSet, args []string) (any, error)
}

//nolint:gochecknoglobals
var commands = map[string]command{
	"login":       {usage: "login -email E -password P", run: (*app).login},
	"register":    {usage: "register -email E -password P -name N", run: (*app).register},
	"logout":      {usage: "logout", run: (*app).logout},
	"whoami":      {usage: "whoami", run: (*app).whoami},
	"status":      {usage: "status", run: (*app).status},
	"refresh":     {usage: "refresh", run: (*app).refresh},
	"events":      {usage: "events [-search S] [-status S] [-page N] [-limit N]", run: (*app).listEvents},
	"event":       {usage: "event -id ID", run: (*app).getEvent},
	"invitations": {usage: "invitations [-type sent|received] [-status S]", run: (*app).listInvitations},
	"respond":     {usage: "respond -id ID -status accepted|declined", run: (*app).respond},
	"posts":       {usage: "posts -event ID", run: (*app).listPosts},
	"avatar":      {usage: "avatar -file PATH", run: (*app).avatar},
}

func usage() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}

	slices.Sort(names)

	var b strings.Builder

	b.WriteString("usage: luxctl <command> [flags]\n\ncommands:\n")

	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", commands[name].usage)
	}

	return b.String()
}

// execute runs the command named by args[0] and writes its result as JSON.
func (a *app) execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w\n%s", ErrMissingArgument, usage())
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: %q\n%s", ErrUnknownCommand, args[0], usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	result, err := cmd.run(a, ctx, fs, args[1:])
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")

	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return nil
}

func parse(fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	for _, name := range required {
		if fs.Lookup(name).Value.String() == "" {
			return fmt.Errorf("%w: -%s", ErrMissingArgument, name)
		}
	}

	return nil
}

func (a *app) login(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")

	if err := parse(fs, args, "email", "password"); err != nil {
		return nil, err
	}

	resp, err := a.auth.Login(ctx, domain.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return nil, err
	}

	return resp.User, nil
}

func (a *app) register(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "display name")
	phone := fs.String("phone", "", "phone number")

	if err := parse(fs, args, "email", "password", "name"); err != nil {
		return nil, err
	}

	resp, err := a.auth.Register(ctx, domain.RegisterRequest{
		Email:        *email,
		Password:     *password,
		Name:         *name,
		Phone:        *phone,
		AgreeToTerms: true,
	})
	if err != nil {
		return nil, err
	}

	return resp.User, nil
}

func (a *app) logout(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	if err := parse(fs, args); err != nil {
		return nil, err
	}

	if err := a.auth.Logout(ctx); err != nil {
		return nil, err
	}

	return domain.MessageResponse{Message: "Logged out"}, nil
}

func (a *app) whoami(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	if err := parse(fs, args); err != nil {
		return nil, err
	}

	return a.auth.CurrentUser(ctx)
}

type statusResult struct {
	Driver          string `json:"driver"`
	Profile         string `json:"profile"`
	Authenticated   bool   `json:"authenticated"`
	AccessExpiresAt string `json:"accessExpiresAt,omitempty"`
}

// status reports the local credential state without calling the backend.
func (a *app) status(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	if err := parse(fs, args); err != nil {
		return nil, err
	}

	authenticated, err := a.auth.IsAuthenticated(ctx)
	if err != nil {
		return nil, err
	}

	result := statusResult{
		Driver:        a.cfg.Store.Driver,
		Profile:       a.cfg.Store.Profile,
		Authenticated: authenticated,
	}

	if expiry, err := a.auth.AccessExpiry(ctx); err == nil {
		result.AccessExpiresAt = expiry.UTC().Format(time.RFC3339)
	}

	return result, nil
}

func (a *app) refresh(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	if err := parse(fs, args); err != nil {
		return nil, err
	}

	if err := a.auth.RefreshTokens(ctx); err != nil {
		return nil, err
	}

	return domain.MessageResponse{Message: "Credentials refreshed"}, nil
}

func (a *app) listEvents(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	var filters domain.EventFilters

	fs.StringVar(&filters.Search, "search", "", "search term")
	status := fs.String("status", "", "event status")
	fs.IntVar(&filters.Page, "page", 0, "page number")
	fs.IntVar(&filters.Limit, "limit", 0, "page size")

	if err := parse(fs, args); err != nil {
		return nil, err
	}

	filters.Status = domain.EventStatus(*status)

	return a.events.List(ctx, filters)
}

func (a *app) getEvent(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	id := fs.String("id", "", "event id")

	if err := parse(fs, args, "id"); err != nil {
		return nil, err
	}

	return a.events.Get(ctx, *id)
}

func (a *app) listInvitations(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	var filters domain.InvitationFilters

	fs.StringVar(&filters.Type, "type", "", "sent or received")
	status := fs.String("status", "", "invitation status")

	if err := parse(fs, args); err != nil {
		return nil, err
	}

	filters.Status = domain.InvitationStatus(*status)

	return a.invitations.List(ctx, filters)
}

func (a *app) respond(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	id := fs.String("id", "", "invitation id")
	status := fs.String("status", "", "accepted or declined")
	message := fs.String("message", "", "optional message")

	if err := parse(fs, args, "id", "status"); err != nil {
		return nil, err
	}

	return a.invitations.Respond(ctx, *id, domain.RespondInvitationRequest{
		Status:  domain.InvitationStatus(*status),
		Message: *message,
	})
}

func (a *app) listPosts(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	eventID := fs.String("event", "", "event id")
	postType := fs.String("type", "", "post type")

	if err := parse(fs, args, "event"); err != nil {
		return nil, err
	}

	return a.posts.ListForEvent(ctx, *eventID, domain.PostFilters{Type: domain.PostType(*postType)})
}

func (a *app) avatar(ctx context.Context, fs *flag.FlagSet, args []string) (any, error) {
	file := fs.String("file", "", "JPEG, PNG or TIFF image")

	if err := parse(fs, args, "file"); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	return a.auth.UpdateProfileImage(ctx, data)
}
