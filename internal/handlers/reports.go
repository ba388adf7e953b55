package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"bakerycost/internal/costing"
	applog "bakerycost/internal/log"
	"bakerycost/internal/spreadsheet"
	"bakerycost/internal/views/pages"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	errPlanEmpty           = errors.New("reports: no bread quantities submitted")
	errPlanInvalidQuantity = errors.New("reports: invalid quantity")
	errPlanTooLarge        = errors.New("reports: plan cost exceeds the representable range")
	nowFunc                = time.Now
)

// BreadCostReport renders the per-unit cost breakdown of one bread type.
func BreadCostReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	route, ok := parseResourceRoute(r.URL.Path, "/app/reports/breads")
	if !ok || route.collection || route.action != "cost" {
		http.NotFound(w, r)
		return
	}

	catalog, err := loadCatalog(r.Context())
	if err != nil {
		reportError(w, r, err)
		return
	}
	bread, ok := catalog.Breads[route.id]
	if !ok {
		http.Error(w, "The selected bread no longer exists.", http.StatusNotFound)
		return
	}
	breakdown, err := catalog.BreadCost(bread)
	if err != nil {
		reportError(w, r, err)
		return
	}

	data := pages.BreadCostReportData{
		Breakdown:   breakdown,
		Money:       reportMoney,
		GeneratedAt: nowFunc().UTC(),
	}
	renderPage(w, r, "bread cost report", pages.BreadCostReport(data), pages.BreadCostReportPartial(data))
}

// ProductionPlanReport renders, or exports as a workbook, the aggregated raw
// materials for the bread quantities submitted in the form.
func ProductionPlanReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid submission.", http.StatusBadRequest)
		return
	}

	items, err := parsePlanForm(r)
	if err != nil {
		reportError(w, r, err)
		return
	}

	report, err := buildProductionPlan(r.Context(), items)
	if err != nil {
		reportError(w, r, err)
		return
	}

	if r.FormValue("format") == "xlsx" {
		writeProductionPlanWorkbook(w, r, report)
		return
	}

	renderPage(w, r, "production plan", pages.ProductionPlanReport(report), pages.ProductionPlanReportPartial(report))
}

func writeProductionPlanWorkbook(w http.ResponseWriter, r *http.Request, report pages.ProductionPlanReportData) {
	plan := spreadsheet.ProductionPlan{
		LotNumber: report.LotNumber,
		RunDate:   report.RunDate,
		Currency:  report.Money.Currency,
		Precision: report.Money.Precision,
		Lines:     report.Lines,
		Issues:    report.Issues,
	}
	for _, item := range report.Items {
		plan.Items = append(plan.Items, spreadsheet.PlanItem{
			BreadName: item.BreadName,
			Quantity:  item.Quantity,
			UnitCost:  item.UnitCost,
		})
	}

	var buf bytes.Buffer
	if err := spreadsheet.WriteProductionPlan(&buf, plan); err != nil {
		applog.Error(r.Context(), "failed to write production plan workbook", "error", err, "lot", report.LotNumber)
		http.Error(w, "We were unable to export the production plan. Please try again.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", strings.ToLower(report.LotNumber)+".xlsx"))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		applog.Error(r.Context(), "failed to send production plan workbook", "error", err)
	}
}

// parsePlanForm reads quantity_{breadID} fields, or a single bread_id and
// quantity pair. Blank and zero quantities are ignored.
func parsePlanForm(r *http.Request) ([]costing.PlanItem, error) {
	quantities := make(map[uint]float64)
	add := func(id uint, raw string) error {
		raw = strings.TrimSpace(raw)
		if id == 0 || raw == "" {
			return nil
		}
		quantity, err := strconv.ParseFloat(raw, 64)
		if err != nil || !validNumber(quantity) || !validNumber(quantities[id]+quantity) {
			return fmt.Errorf("%w: %q", errPlanInvalidQuantity, raw)
		}
		if quantity > 0 {
			quantities[id] += quantity
		}
		return nil
	}

	for key, values := range r.PostForm {
		idValue, found := strings.CutPrefix(key, "quantity_")
		if !found || len(values) == 0 {
			continue
		}
		if err := add(pages.ParseUint(idValue), values[0]); err != nil {
			return nil, err
		}
	}
	if err := add(pages.ParseUint(r.FormValue("bread_id")), r.FormValue("quantity")); err != nil {
		return nil, err
	}

	if len(quantities) == 0 {
		return nil, errPlanEmpty
	}

	items := make([]costing.PlanItem, 0, len(quantities))
	for id, quantity := range quantities {
		items = append(items, costing.PlanItem{BreadID: id, Quantity: quantity})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].BreadID < items[j].BreadID })
	return items, nil
}

func buildProductionPlan(ctx context.Context, items []costing.PlanItem) (pages.ProductionPlanReportData, error) {
	catalog, err := loadCatalog(ctx)
	if err != nil {
		return pages.ProductionPlanReportData{}, err
	}

	lines, issues := costing.AggregateBatch(items, catalog)

	planItems := make([]pages.ProductionPlanItem, 0, len(items))
	for _, item := range items {
		bread, ok := catalog.Breads[item.BreadID]
		if !ok {
			continue
		}
		planItem := pages.ProductionPlanItem{BreadID: bread.ID, BreadName: bread.Name, Quantity: item.Quantity}
		// A bread without its dough is already listed among the aggregation issues.
		if breakdown, err := catalog.BreadCost(bread); err == nil {
			planItem.UnitCost = breakdown.TotalCost
		}
		planItems = append(planItems, planItem)
	}

	total, ok := totalLineCost(lines)
	if !ok {
		return pages.ProductionPlanReportData{}, errPlanTooLarge
	}

	runTime := nowFunc().UTC()
	report := pages.ProductionPlanReportData{
		LotNumber: fmt.Sprintf("BAKE-%s-%02d", runTime.Format("20060102"), len(planItems)),
		RunDate:   runTime,
		Money:     reportMoney,
		Items:     planItems,
		Lines:     lines,
		Issues:    issues.Messages(),
		TotalCost: total,
	}
	if len(issues) > 0 {
		applog.Warn(ctx, "production plan built with data issues", "lot", report.LotNumber, "issues", len(issues))
	}
	return report, nil
}

func reportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gorm.ErrInvalidDB):
		http.Error(w, "Reporting is unavailable because no database connection is configured.", http.StatusServiceUnavailable)
	case errors.Is(err, errPlanEmpty):
		http.Error(w, "Enter a quantity for at least one bread.", http.StatusBadRequest)
	case errors.Is(err, errPlanInvalidQuantity):
		http.Error(w, "Quantities must be non-negative numbers.", http.StatusBadRequest)
	case errors.Is(err, errPlanTooLarge):
		http.Error(w, "The planned quantities are too large to cost.", http.StatusBadRequest)
	case errors.Is(err, costing.ErrDoughNotFound):
		http.Error(w, "The bread references a dough recipe that no longer exists.", http.StatusUnprocessableEntity)
	default:
		applog.Error(r.Context(), "failed to build report", "error", err)
		http.Error(w, "We were unable to generate the report. Please try again.", http.StatusInternalServerError)
	}
}
