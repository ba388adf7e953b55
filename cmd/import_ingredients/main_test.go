package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bakerycost/internal/db"
	"bakerycost/internal/spreadsheet"
	"bakerycost/models"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := database.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return database
}

func mustReadCSV(t *testing.T, data string) []spreadsheet.Record {
	t.Helper()
	records, err := spreadsheet.ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV returned error: %v", err)
	}
	return records
}

func TestImportIngredientsUpsertsByName(t *testing.T) {
	ctx := context.Background()
	database := openTestDatabase(t)

	first := mustReadCSV(t, "Name,Purchase Unit,Base Unit,Price,Norms,Category\n"+
		"Bread Flour,bag,g,\"18,75 EUR\",25000,Flour\n"+
		"Butter,KG,,9.5,1000,Dairy\n")
	summary, err := importIngredients(ctx, database, first)
	if err != nil {
		t.Fatalf("first import returned error: %v", err)
	}
	if summary.Created != 2 || summary.Updated != 0 {
		t.Fatalf("unexpected first summary %+v", summary)
	}

	second := mustReadCSV(t, "name,purchase_unit,price,norms\nbutter,kg,10.25,1000\n")
	summary, err = importIngredients(ctx, database, second)
	if err != nil {
		t.Fatalf("second import returned error: %v", err)
	}
	if summary.Created != 0 || summary.Updated != 1 {
		t.Fatalf("unexpected second summary %+v", summary)
	}

	var butter models.Ingredient
	if err := database.Where("name = ?", "Butter").First(&butter).Error; err != nil {
		t.Fatalf("find butter: %v", err)
	}
	if butter.Price != 10.25 {
		t.Fatalf("expected updated price 10.25, got %v", butter.Price)
	}

	var flour models.Ingredient
	if err := database.Where("name = ?", "Bread Flour").First(&flour).Error; err != nil {
		t.Fatalf("find flour: %v", err)
	}
	if flour.Price != 18.75 || flour.Norms != 25000 || flour.PurchaseUnit != "bag" {
		t.Fatalf("unexpected flour %+v", flour)
	}
}

func TestImportIngredientsStopsAtInvalidRecord(t *testing.T) {
	database := openTestDatabase(t)

	records := mustReadCSV(t, "name,price\nSalt,0.8\n,1\nSugar,1.2\n")
	summary, err := importIngredients(context.Background(), database, records)
	if err == nil {
		t.Fatal("expected error for record without a name")
	}
	if !strings.Contains(err.Error(), "record 2") {
		t.Fatalf("expected error to name record 2, got %v", err)
	}
	if summary.Created != 1 {
		t.Fatalf("expected the first record to be kept, got %+v", summary)
	}
}

func TestBuildIngredientDefaults(t *testing.T) {
	t.Parallel()

	ingredient, err := buildIngredient(spreadsheet.Record{"name": "  Sea   Salt ", "price": "0.8"})
	if err != nil {
		t.Fatalf("buildIngredient returned error: %v", err)
	}
	if ingredient.Name != "Sea Salt" {
		t.Fatalf("expected collapsed name, got %q", ingredient.Name)
	}
	if ingredient.BaseUnit != "g" || ingredient.PurchaseUnit != "g" || ingredient.Norms != 1 {
		t.Fatalf("unexpected defaults %+v", ingredient)
	}

	if _, err := buildIngredient(spreadsheet.Record{"name": "Ghost", "price": "-2"}); err == nil {
		t.Fatal("expected negative price to be rejected")
	}
}

func TestParseFirstNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{in: "", want: 0},
		{in: "N/A", want: 0},
		{in: "12.5", want: 12.5},
		{in: "18,75 EUR", want: 18.75},
		{in: "approx. 3 kg", want: 3},
		{in: "free", want: 0},
	}
	for _, tt := range tests {
		if got := parseFirstNumber(tt.in); got != tt.want {
			t.Fatalf("parseFirstNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRunRejectsMissingFile(t *testing.T) {
	if err := run(""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if err := run("does-not-exist.xlsx"); err == nil || !strings.Contains(err.Error(), "locate sheet") {
		t.Fatalf("expected locate error, got %v", err)
	}
}
