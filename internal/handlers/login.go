package handlers

import (
	"net/http"
	"strings"

	applog "bakerycost/internal/log"
	"bakerycost/internal/views/pages"
)

const loginFailedMessage = "We were unable to sign you in. Please try again."

// Login shows the sign-in form and signs bakers in. A successful sign-in
// continues to the page that required it, or to the bread list.
func Login(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if ActiveSession(r) {
			redirectAfterSignIn(w, r)
			return
		}
		renderLogin(w, r, popLoginMessage(r), "")
	case http.MethodPost:
		if sessionManager == nil || database == nil {
			http.Error(w, "authentication not available", http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			applog.Debug(r.Context(), "failed to parse login form", "error", err)
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")
		if email == "" || password == "" {
			renderLogin(w, r, "Email and password are required.", email)
			return
		}

		if !authenticate(w, r, email, password) {
			applog.Info(r.Context(), "sign-in rejected", "email", strings.ToLower(email))
			message := popLoginMessage(r)
			if message == "" {
				message = loginFailedMessage
			}
			renderLogin(w, r, message, email)
			return
		}

		userID, _ := currentUserID(r)
		applog.Info(r.Context(), "baker signed in", "userID", userID)
		redirectAfterSignIn(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func popLoginMessage(r *http.Request) string {
	if sessionManager == nil {
		return ""
	}
	return sessionManager.PopString(r.Context(), sessionLoginMessageKey)
}

func renderLogin(w http.ResponseWriter, r *http.Request, message, email string) {
	renderPage(w, r, "login", pages.Login(message, email), pages.LoginPartial(message, email))
}
