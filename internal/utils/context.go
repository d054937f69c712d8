// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, hashing, HTTP response writing,
// HTTP client initialization, JWT token validation and id generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey is the key used to store the authenticated user id in the
// context.
var UserIDCtxKey = contextKey("userID")

// WriterTagCtxKey is the key used to store the writer tag of a request.
var WriterTagCtxKey = contextKey("writerTag")

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDCtxKey, userID)
}

// GetUserIDFromContext retrieves the user identifier from the context.
// ok is false when the value is missing, has an unexpected type or is empty.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok && userID != ""
}

// WithWriterTag returns a copy of ctx carrying the writer tag.
func WithWriterTag(ctx context.Context, tag string) context.Context {
	return context.WithValue(ctx, WriterTagCtxKey, tag)
}

// GetWriterTagFromContext retrieves the writer tag stored by WithWriterTag.
func GetWriterTagFromContext(ctx context.Context) string {
	tag, _ := ctx.Value(WriterTagCtxKey).(string)
	return tag
}
