package server

import (
	"context"
	"net/http"

	"bakerycost/internal/handlers"
	applog "bakerycost/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")
	mux.HandleFunc("/login", handlers.Login)
	applog.Debug(context.Background(), "route registered", "path", "/login")
	mux.HandleFunc("/signup", handlers.Signup)
	applog.Debug(context.Background(), "route registered", "path", "/signup")
	mux.HandleFunc("/logout", handlers.Logout)
	applog.Debug(context.Background(), "route registered", "path", "/logout")

	protected := map[string]http.HandlerFunc{
		"/app":                         handlers.App,
		"/app/":                        handlers.App,
		"/app/api/ingredients":         handlers.IngredientResource,
		"/app/api/ingredients/":        handlers.IngredientResource,
		"/app/api/doughs":              handlers.DoughResource,
		"/app/api/doughs/":             handlers.DoughResource,
		"/app/api/fillings":            handlers.FillingResource,
		"/app/api/fillings/":           handlers.FillingResource,
		"/app/api/breads":              handlers.BreadResource,
		"/app/api/breads/":             handlers.BreadResource,
		"/app/api/production-plan":     handlers.ProductionPlan,
		"/app/reports/breads/":         handlers.BreadCostReport,
		"/app/reports/production-plan": handlers.ProductionPlanReport,
	}
	for path, handler := range protected {
		mux.Handle(path, handlers.RequireAuthentication(handler))
		applog.Debug(context.Background(), "route registered", "path", path, "protected", true)
	}

	mux.HandleFunc("/", handlers.Home)
	applog.Debug(context.Background(), "route registered", "path", "/")
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir("web/static"))))
	applog.Debug(context.Background(), "route registered", "path", "/assets/", "static", true)
	return mux
}
