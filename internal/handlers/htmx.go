package handlers

import (
	"net/http"

	"github.com/a-h/templ"

	applog "bakerycost/internal/log"
)

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true" || r.Header.Get("HX-Boosted") == "true"
}

// hxRedirect sends the browser to target. HTMX requests get an HX-Redirect
// header so the whole page is replaced instead of the swap target.
func hxRedirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// renderPage writes partial for HTMX swaps and full otherwise. view names the
// page in the error log.
func renderPage(w http.ResponseWriter, r *http.Request, view string, full, partial templ.Component) {
	component := full
	if isHTMX(r) {
		component = partial
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render page", "view", view, "htmx", isHTMX(r), "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
