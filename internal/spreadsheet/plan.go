package spreadsheet

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bakerycost/internal/costing"
)

const (
	materialsSheet = "Raw materials"
	planSheet      = "Plan"
	issuesSheet    = "Warnings"
)

// PlanItem is one bread line of a production plan.
type PlanItem struct {
	BreadName string
	Quantity  float64
	UnitCost  float64
}

// ProductionPlan is everything written to a production-plan workbook.
type ProductionPlan struct {
	LotNumber string
	RunDate   time.Time
	Currency  string
	Precision int32
	Items     []PlanItem
	Lines     []costing.AggregatedLine
	Issues    []string
}

// WriteProductionPlan writes the plan as an .xlsx workbook with one sheet for
// the aggregated raw materials, one for the requested breads and, when there
// are any, one for data warnings.
func WriteProductionPlan(w io.Writer, plan ProductionPlan) error {
	workbook := excelize.NewFile()
	defer workbook.Close()

	if err := workbook.SetSheetName("Sheet1", materialsSheet); err != nil {
		return err
	}
	bold, err := workbook.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	title := fmt.Sprintf("Production plan %s (%s)", plan.LotNumber, plan.RunDate.Format("02 Jan 2006"))
	if err := workbook.SetCellValue(materialsSheet, "A1", title); err != nil {
		return err
	}
	costHeader := "Cost"
	if plan.Currency != "" {
		costHeader = fmt.Sprintf("Cost (%s)", plan.Currency)
	}
	if err := writeRow(workbook, materialsSheet, 3, []any{"Ingredient", "Quantity", "Unit", costHeader}); err != nil {
		return err
	}
	total := decimal.Zero
	totalKnown := true
	row := 4
	for _, line := range plan.Lines {
		var costCell any = unavailable
		if cost, ok := roundMoney(line.TotalCost, plan.Precision); ok {
			total = total.Add(cost)
			costCell = cost.InexactFloat64()
		} else {
			totalKnown = false
		}
		if err := writeRow(workbook, materialsSheet, row, []any{line.Name, quantityCell(line.TotalQuantity), line.Unit, costCell}); err != nil {
			return err
		}
		row++
	}
	var totalCell any = unavailable
	if totalKnown {
		totalCell = total.InexactFloat64()
	}
	if err := writeRow(workbook, materialsSheet, row, []any{"Total", nil, nil, totalCell}); err != nil {
		return err
	}
	if err := styleRows(workbook, materialsSheet, bold, 3, row); err != nil {
		return err
	}
	if err := workbook.SetColWidth(materialsSheet, "A", "A", 32); err != nil {
		return err
	}

	if _, err := workbook.NewSheet(planSheet); err != nil {
		return err
	}
	if err := writeRow(workbook, planSheet, 1, []any{"Bread", "Quantity", "Unit cost"}); err != nil {
		return err
	}
	for idx, item := range plan.Items {
		if err := writeRow(workbook, planSheet, idx+2, []any{item.BreadName, quantityCell(item.Quantity), moneyCell(item.UnitCost, plan.Precision)}); err != nil {
			return err
		}
	}
	if err := styleRows(workbook, planSheet, bold, 1); err != nil {
		return err
	}
	if err := workbook.SetColWidth(planSheet, "A", "A", 32); err != nil {
		return err
	}

	if len(plan.Issues) > 0 {
		if _, err := workbook.NewSheet(issuesSheet); err != nil {
			return err
		}
		for idx, message := range plan.Issues {
			if err := workbook.SetCellValue(issuesSheet, fmt.Sprintf("A%d", idx+1), message); err != nil {
				return err
			}
		}
	}

	workbook.SetActiveSheet(0)
	return workbook.Write(w)
}

func writeRow(workbook *excelize.File, sheet string, row int, values []any) error {
	for idx, value := range values {
		if value == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(idx+1, row)
		if err != nil {
			return err
		}
		if err := workbook.SetCellValue(sheet, cell, value); err != nil {
			return err
		}
	}
	return nil
}

func styleRows(workbook *excelize.File, sheet string, style int, rows ...int) error {
	for _, row := range rows {
		if err := workbook.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), style); err != nil {
			return err
		}
	}
	return nil
}

// unavailable marks a cell whose value could not be represented.
const unavailable = "N/A"

func roundMoney(value float64, precision int32) (decimal.Decimal, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(value).Round(precision), true
}

func moneyCell(value float64, precision int32) any {
	amount, ok := roundMoney(value, precision)
	if !ok {
		return unavailable
	}
	return amount.InexactFloat64()
}

func quantityCell(value float64) any {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return unavailable
	}
	return decimal.NewFromFloat(value).Round(3).InexactFloat64()
}
