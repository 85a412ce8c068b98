package context

import (
	"context"
)

const contextKeySubject = contextKey("subject")

// SubjectFromContext extracts the authenticated subject (user ID) from the context.
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(contextKeySubject).(string)

	return subject, ok
}

// WithSubject returns a context carrying the authenticated subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, contextKeySubject, subject)
}
