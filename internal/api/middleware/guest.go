package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/snapfest/snapfest/internal/api/apierr"
	"github.com/snapfest/snapfest/internal/model"
)

type contextKey string

const guestContextKey contextKey = "guest"

// GuestHeader carries the requester's guest id. There are no passwords;
// possession of the id is the whole identity model.
const GuestHeader = "X-Guest-ID"

// GuestResolver looks up a guest by id
type GuestResolver interface {
	GetGuest(ctx context.Context, id model.GuestID) (*model.Guest, error)
}

// RequireGuest creates middleware that resolves the requesting guest from
// the X-Guest-ID header and rejects requests without a valid one.
func RequireGuest(resolver GuestResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(GuestHeader)
			if id == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			guest, err := resolver.GetGuest(r.Context(), model.GuestID(id))
			if err != nil {
				if errors.Is(err, model.ErrGuestNotFound) {
					apierr.WriteError(w, apierr.NewUnauthorizedError())
					return
				}
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), guestContextKey, guest)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetGuest returns the requesting guest from the request context
func GetGuest(ctx context.Context) *model.Guest {
	guest, _ := ctx.Value(guestContextKey).(*model.Guest)
	return guest
}

// MustGetGuest returns the requesting guest or panics
func MustGetGuest(ctx context.Context) *model.Guest {
	guest := GetGuest(ctx)
	if guest == nil {
		panic("no guest in context - guest middleware not applied?")
	}
	return guest
}
