package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/A3Manav/jewellery-wishlist-service/pkg/httputil"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

// HeaderSessionID carries the device session identifier on every request.
const HeaderSessionID = "X-Session-ID"

// HeaderProfilePage marks removal requests issued from the profile page.
const HeaderProfilePage = "X-Profile-Page"

// RequireSessionID rejects requests without a session identifier. Every
// wishlist route is scoped to one device session, so there is nothing useful
// to do without it.
func RequireSessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(r.Header.Get(HeaderSessionID))
		if sid == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{
					Code:    "MISSING_SESSION_ID",
					Message: "the " + HeaderSessionID + " header is required",
				},
			})
			return
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	sid, _ := r.Context().Value(sessionIDKey).(string)
	return sid
}

func fromProfilePage(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get(HeaderProfilePage), "true")
}
