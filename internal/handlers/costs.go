package handlers

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"bakerycost/internal/costing"
	appdb "bakerycost/internal/db"
	applog "bakerycost/internal/log"
)

type productionPlanRequest struct {
	Items []costing.PlanItem `json:"items"`
}

type productionPlanResponse struct {
	Lines     []costing.AggregatedLine `json:"lines"`
	Errors    costing.Issues           `json:"errors"`
	TotalCost float64                  `json:"total_cost"`
}

func loadCatalog(ctx context.Context) (costing.Catalog, error) {
	if database == nil {
		return costing.Catalog{}, gorm.ErrInvalidDB
	}
	return appdb.LoadCatalog(ctx, database)
}

func doughCost(w http.ResponseWriter, r *http.Request, id uint) {
	catalog, err := loadCatalog(r.Context())
	if err != nil {
		writeError(w, r, err, "load catalog")
		return
	}
	dough, ok := catalog.Doughs[id]
	if !ok {
		writeError(w, r, gorm.ErrRecordNotFound, "cost dough")
		return
	}
	result := costing.DoughCost(dough, catalog.Ingredients)
	logIssues(r.Context(), "dough", id, result.Errors)
	writeJSON(w, http.StatusOK, result)
}

func fillingCost(w http.ResponseWriter, r *http.Request, id uint) {
	catalog, err := loadCatalog(r.Context())
	if err != nil {
		writeError(w, r, err, "load catalog")
		return
	}
	filling, ok := catalog.Fillings[id]
	if !ok {
		writeError(w, r, gorm.ErrRecordNotFound, "cost filling")
		return
	}
	result := costing.FillingCost(filling, catalog.Fillings, catalog.Ingredients)
	logIssues(r.Context(), "filling", id, result.Errors)
	writeJSON(w, http.StatusOK, result)
}

func breadCost(w http.ResponseWriter, r *http.Request, id uint) {
	catalog, err := loadCatalog(r.Context())
	if err != nil {
		writeError(w, r, err, "load catalog")
		return
	}
	bread, ok := catalog.Breads[id]
	if !ok {
		writeError(w, r, gorm.ErrRecordNotFound, "cost bread")
		return
	}
	breakdown, err := catalog.BreadCost(bread)
	if err != nil {
		writeError(w, r, err, "cost bread")
		return
	}
	logIssues(r.Context(), "bread", id, breakdown.Errors)
	writeJSON(w, http.StatusOK, breakdown)
}

// ProductionPlan aggregates the raw materials for a batch of bread types.
func ProductionPlan(w http.ResponseWriter, r *http.Request) {
	if !requireAPIAccess(w, r, "production-plan") {
		return
	}
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var payload productionPlanRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err, "aggregate production plan")
		return
	}
	if len(payload.Items) == 0 {
		writeError(w, r, invalidf("items must not be empty"), "aggregate production plan")
		return
	}
	for idx, item := range payload.Items {
		if item.BreadID == 0 {
			writeError(w, r, invalidf("item %d: bread_id is required", idx+1), "aggregate production plan")
			return
		}
		if !validNumber(item.Quantity) {
			writeError(w, r, invalidf("item %d: quantity must be a non-negative number", idx+1), "aggregate production plan")
			return
		}
	}

	catalog, err := loadCatalog(r.Context())
	if err != nil {
		writeError(w, r, err, "load catalog")
		return
	}

	lines, issues := costing.AggregateBatch(payload.Items, catalog)
	if issues == nil {
		issues = costing.Issues{}
	}
	total, ok := totalLineCost(lines)
	if !ok {
		writeError(w, r, invalidf("planned quantities are too large to cost"), "aggregate production plan")
		return
	}
	applog.Debug(r.Context(), "production plan aggregated", "items", len(payload.Items), "lines", len(lines), "issues", len(issues))
	writeJSON(w, http.StatusOK, productionPlanResponse{
		Lines:     lines,
		Errors:    issues,
		TotalCost: total,
	})
}

// totalLineCost sums the line costs. ok is false when the sum overflows.
func totalLineCost(lines []costing.AggregatedLine) (float64, bool) {
	var total float64
	for _, line := range lines {
		total += line.TotalCost
	}
	return total, validNumber(total)
}

func logIssues(ctx context.Context, kind string, id uint, issues costing.Issues) {
	if len(issues) == 0 {
		return
	}
	applog.Debug(ctx, "cost computed with issues", "kind", kind, "id", id, "issues", len(issues))
}
