package handlers

import (
	"net/http"

	applog "bakerycost/internal/log"
	"bakerycost/internal/views/pages"
	"bakerycost/models"
)

// App renders the bread list of a signed-in user.
func App(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/app" && r.URL.Path != "/app/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data := pages.HomeData{UserName: currentUserName(r), Money: reportMoney}
	if database == nil {
		applog.Debug(r.Context(), "rendering landing page without database")
	} else {
		var breads []models.BreadType
		if err := database.WithContext(r.Context()).Preload("Fillings").Order("name asc").Find(&breads).Error; err != nil {
			applog.Error(r.Context(), "failed to load breads", "error", err)
			http.Error(w, "We were unable to load your breads. Please try again.", http.StatusInternalServerError)
			return
		}
		for _, bread := range breads {
			data.Breads = append(data.Breads, pages.HomeBread{
				ID:       bread.ID,
				Name:     bread.Name,
				Price:    bread.Price,
				DoughID:  bread.DoughID,
				Fillings: len(bread.Fillings),
			})
		}
	}

	renderPage(w, r, "landing", pages.Home(data), pages.HomePartial(data))
}
