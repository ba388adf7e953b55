package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"bakerycost/internal/config"
	"bakerycost/internal/db"
	applog "bakerycost/internal/log"
	"bakerycost/internal/spreadsheet"
	"bakerycost/models"
)

var (
	numberPattern   = regexp.MustCompile(`[-+]?\d*[.,]?\d+`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

type importSummary struct {
	Created int
	Updated int
}

func main() {
	path := "ingredients.xlsx"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	if err := run(path); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("sheet path must not be empty")
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("locate sheet: %w", err)
	}

	records, err := spreadsheet.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL must be set to import ingredients")
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	summary, err := importIngredients(context.Background(), database, records)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Imported %d ingredients (%d new, %d updated) from %s\n",
		summary.Created+summary.Updated, summary.Created, summary.Updated, filepath.Base(path))
	return nil
}

// importIngredients upserts every record by case-insensitive name. Each
// record is committed in its own transaction.
func importIngredients(ctx context.Context, database *gorm.DB, records []spreadsheet.Record) (importSummary, error) {
	var summary importSummary
	for idx, record := range records {
		ingredient, err := buildIngredient(record)
		if err != nil {
			return summary, fmt.Errorf("record %d: %w", idx+1, err)
		}

		created := false
		err = database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing models.Ingredient
			err := tx.Where("lower(name) = ?", strings.ToLower(ingredient.Name)).First(&existing).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				created = true
				if err := tx.Create(&ingredient).Error; err != nil {
					return fmt.Errorf("create ingredient %q: %w", ingredient.Name, err)
				}
				return nil
			case err != nil:
				return fmt.Errorf("find ingredient %q: %w", ingredient.Name, err)
			}

			updates := map[string]any{
				"purchase_unit": ingredient.PurchaseUnit,
				"base_unit":     ingredient.BaseUnit,
				"price":         ingredient.Price,
				"norms":         ingredient.Norms,
				"category":      ingredient.Category,
				"specs":         ingredient.Specs,
			}
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return fmt.Errorf("update ingredient %q: %w", existing.Name, err)
			}
			return nil
		})
		if err != nil {
			return summary, fmt.Errorf("record %d (%s): %w", idx+1, ingredient.Name, err)
		}

		if created {
			summary.Created++
		} else {
			summary.Updated++
		}
	}

	applog.Info(ctx, "ingredient import finished", "created", summary.Created, "updated", summary.Updated)
	return summary, nil
}

func buildIngredient(record spreadsheet.Record) (models.Ingredient, error) {
	ingredient := models.Ingredient{
		Name:         normalizeText(record["name"]),
		PurchaseUnit: strings.ToLower(normalizeValue(record["purchase_unit"])),
		BaseUnit:     strings.ToLower(normalizeValue(record["base_unit"])),
		Price:        parseFirstNumber(record["price"]),
		Norms:        parseFirstNumber(record["norms"]),
		Category:     normalizeText(record["category"]),
		Specs:        normalizeText(record["specs"]),
	}
	if ingredient.Name == "" {
		return models.Ingredient{}, errors.New("name is required")
	}
	if ingredient.BaseUnit == "" {
		ingredient.BaseUnit = "g"
	}
	if ingredient.PurchaseUnit == "" {
		ingredient.PurchaseUnit = ingredient.BaseUnit
	}
	if ingredient.Norms <= 0 {
		ingredient.Norms = 1
	}
	if ingredient.Price < 0 {
		return models.Ingredient{}, fmt.Errorf("ingredient %q has a negative price", ingredient.Name)
	}
	return ingredient, nil
}

func normalizeValue(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return ""
	}
	return value
}

func normalizeText(value string) string {
	value = normalizeValue(value)
	if value == "" {
		return value
	}
	value = cleanWhitespace.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// parseFirstNumber reads the first number in value, accepting a decimal comma.
func parseFirstNumber(value string) float64 {
	value = normalizeValue(value)
	if value == "" {
		return 0
	}

	match := numberPattern.FindString(value)
	if match == "" {
		return 0
	}

	parsed, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	return parsed
}
