package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	applog "bakerycost/internal/log"
	"bakerycost/internal/views/pages"
)

const signupFailedMessage = "We couldn't create your account right now. Please try again."

type signupForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

func parseSignupForm(r *http.Request) signupForm {
	return signupForm{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.ToLower(strings.TrimSpace(r.PostFormValue("email"))),
		Password: r.PostFormValue("password"),
		Confirm:  r.PostFormValue("confirm_password"),
	}
}

// validate returns the message shown next to the form, or "" when the form
// can be submitted. A blank name falls back to the mailbox part of the email
// so the bread list always has someone to greet.
func (f *signupForm) validate() string {
	local, domain, found := strings.Cut(f.Email, "@")
	if !found || local == "" || domain == "" || strings.Contains(domain, "@") {
		return "Please provide a valid email address."
	}
	if len(f.Password) < pages.MinPasswordLength {
		return "Password must be at least 8 characters long."
	}
	if f.Password != f.Confirm {
		return "Passwords do not match."
	}
	if f.Name == "" {
		f.Name = local
	}
	return ""
}

// Signup registers a new baker and signs them in. Like Login, it continues
// to the page that required authentication.
func Signup(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if ActiveSession(r) {
			redirectAfterSignIn(w, r)
			return
		}
		renderSignup(w, r, "", signupForm{})
	case http.MethodPost:
		if sessionManager == nil || database == nil {
			http.Error(w, "registration not available", http.StatusServiceUnavailable)
			return
		}
		if err := r.ParseForm(); err != nil {
			applog.Debug(r.Context(), "failed to parse signup form", "error", err)
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}

		form := parseSignupForm(r)
		if message := form.validate(); message != "" {
			renderSignup(w, r, message, form)
			return
		}

		if _, err := findUserByEmail(r, form.Email); err == nil {
			renderSignup(w, r, "An account with that email already exists.", form)
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			applog.Error(r.Context(), "failed to check existing user", "error", err)
			renderSignup(w, r, signupFailedMessage, form)
			return
		}

		user, err := createUser(r, form.Email, form.Name, form.Password)
		if err != nil {
			applog.Error(r.Context(), "failed to create user", "error", err)
			renderSignup(w, r, signupFailedMessage, form)
			return
		}
		if err := establishSession(r, user); err != nil {
			applog.Error(r.Context(), "failed to establish session after signup", "error", err, "userID", user.ID)
			renderSignup(w, r, "We couldn't sign you in after creating your account. Please try again.", form)
			return
		}

		applog.Info(r.Context(), "baker registered", "userID", user.ID)
		redirectAfterSignIn(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func renderSignup(w http.ResponseWriter, r *http.Request, message string, form signupForm) {
	renderPage(w, r, "signup", pages.Signup(message, form.Name, form.Email), pages.SignupPartial(message, form.Name, form.Email))
}
