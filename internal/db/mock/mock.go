package mock

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bakerycost/internal/db"
	applog "bakerycost/internal/log"
	"bakerycost/models"
)

var instances atomic.Int64

// New returns an in-memory sqlite database seeded with a small bakery catalog.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := fmt.Sprintf("file:bakerycost-mock-%d?mode=memory&cache=shared", instances.Add(1))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(database); err != nil {
		return nil, err
	}

	if err := seed(ctx, database); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return database, nil
}

func seed(ctx context.Context, database *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")
	tx := database.WithContext(ctx)

	password, err := bcrypt.GenerateFromPassword([]byte("levain"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Name:         "Morgan Baker",
		Email:        "morgan@bakerycost.app",
		PasswordHash: string(password),
	}
	if err := tx.Create(user).Error; err != nil {
		return err
	}

	flour := models.Ingredient{Name: "Bread Flour T65", PurchaseUnit: "bag", BaseUnit: "g", Price: 18.75, Norms: 25000, Category: "Flour"}
	water := models.Ingredient{Name: "Water", PurchaseUnit: "l", BaseUnit: "g", Price: 0.002, Norms: 1000, Category: "Liquid"}
	yeast := models.Ingredient{Name: "Fresh Yeast", PurchaseUnit: "block", BaseUnit: "g", Price: 2.5, Norms: 500, Category: "Leavening"}
	salt := models.Ingredient{Name: "Sea Salt", PurchaseUnit: "kg", BaseUnit: "g", Price: 0.8, Norms: 1000, Category: "Seasoning"}
	butter := models.Ingredient{Name: "Butter 82%", PurchaseUnit: "kg", BaseUnit: "g", Price: 9.5, Norms: 1000, Category: "Dairy"}
	sugar := models.Ingredient{Name: "Caster Sugar", PurchaseUnit: "kg", BaseUnit: "g", Price: 1.2, Norms: 1000, Category: "Sugar"}
	eggs := models.Ingredient{Name: "Whole Eggs", PurchaseUnit: "tray", BaseUnit: "g", Price: 7.2, Norms: 1800, Category: "Eggs", Specs: "30 eggs, about 60 g each"}
	milk := models.Ingredient{Name: "Whole Milk", PurchaseUnit: "l", BaseUnit: "g", Price: 1.1, Norms: 1030, Category: "Dairy"}
	almond := models.Ingredient{Name: "Almond Flour", PurchaseUnit: "kg", BaseUnit: "g", Price: 14, Norms: 1000, Category: "Nuts"}
	sesame := models.Ingredient{Name: "Sesame Seeds", PurchaseUnit: "kg", BaseUnit: "g", Price: 6, Norms: 1000, Category: "Seeds"}

	ingredients := []*models.Ingredient{&flour, &water, &yeast, &salt, &butter, &sugar, &eggs, &milk, &almond, &sesame}
	for _, ingredient := range ingredients {
		if err := tx.Create(ingredient).Error; err != nil {
			return err
		}
	}

	line := func(ingredient models.Ingredient, quantity float64, unit string) models.RecipeIngredient {
		return models.RecipeIngredient{IngredientID: ingredient.ID, Quantity: quantity, Unit: unit}
	}

	country := models.DoughRecipe{
		Name:  "Country Dough",
		Yield: 1770,
		Notes: "Poolish built the evening before.",
		Ingredients: []models.RecipeIngredient{
			line(flour, 700, "g"),
			line(water, 450, "g"),
			line(salt, 20, "g"),
		},
		PreFerments: []models.PreFerment{{
			Name:  "Poolish",
			Yield: 601,
			Ingredients: []models.RecipeIngredient{
				line(flour, 300, "g"),
				line(water, 300, "g"),
				line(yeast, 1, "g"),
			},
		}},
	}
	brioche := models.DoughRecipe{
		Name:  "Brioche Dough",
		Yield: 1050,
		Ingredients: []models.RecipeIngredient{
			line(flour, 500, "g"),
			line(eggs, 250, "g"),
			line(butter, 250, "g"),
			line(sugar, 60, "g"),
			line(salt, 10, "g"),
			line(yeast, 20, "g"),
		},
	}
	for _, dough := range []*models.DoughRecipe{&country, &brioche} {
		if err := tx.Create(dough).Error; err != nil {
			return err
		}
	}

	almondCream := models.FillingRecipe{
		Name:  "Almond Cream",
		Yield: 800,
		Ingredients: []models.RecipeIngredient{
			line(butter, 200, "g"),
			line(sugar, 200, "g"),
			line(almond, 200, "g"),
			line(eggs, 200, "g"),
		},
	}
	pastryCream := models.FillingRecipe{
		Name:  "Pastry Cream",
		Yield: 1300,
		Ingredients: []models.RecipeIngredient{
			line(milk, 1, "l"),
			line(sugar, 200, "g"),
			line(eggs, 150, "g"),
		},
	}
	for _, filling := range []*models.FillingRecipe{&almondCream, &pastryCream} {
		if err := tx.Create(filling).Error; err != nil {
			return err
		}
	}

	frangipane := models.FillingRecipe{
		Name:  "Frangipane",
		Yield: 1000,
		Notes: "Two parts almond cream to one part pastry cream.",
		SubFillings: []models.SubFilling{
			{FillingID: almondCream.ID, Quantity: 0.6, Unit: "kg"},
			{FillingID: pastryCream.ID, Quantity: 400, Unit: "g"},
		},
	}
	if err := tx.Create(&frangipane).Error; err != nil {
		return err
	}

	breads := []*models.BreadType{
		{
			Name:        "Country Loaf",
			Price:       6.5,
			DoughID:     country.ID,
			DoughWeight: 850,
		},
		{
			Name:        "Almond Brioche",
			Price:       3.2,
			DoughID:     brioche.ID,
			DoughWeight: 90,
			Fillings:    []models.FillingUsage{{FillingID: &frangipane.ID, Quantity: 35, Unit: "g"}},
			Decorations: []models.DecorationUsage{{IngredientID: almond.ID, Quantity: 3, Unit: "g"}},
		},
		{
			Name:        "Sesame Bun",
			Price:       1.4,
			DoughID:     brioche.ID,
			DoughWeight: 80,
			Fillings:    []models.FillingUsage{{IngredientID: &butter.ID, Quantity: 5, Unit: "g"}},
			Decorations: []models.DecorationUsage{{IngredientID: sesame.ID, Quantity: 4, Unit: "g"}},
		},
	}
	for _, bread := range breads {
		if err := tx.Create(bread).Error; err != nil {
			return err
		}
	}

	applog.Debug(ctx, "mock database seeded", "ingredients", len(ingredients), "breads", len(breads))
	return nil
}
