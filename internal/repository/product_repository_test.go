package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nutrifit/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateDB(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func createProduct(t *testing.T, repo *GormProductRepository, id, name string, price int64, sortOrder int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        id,
		Name:      name,
		Price:     models.NewMoneyFromInt(price),
		Currency:  "INR",
		Image:     "/images/2.jpg",
		IsActive:  true,
		SortOrder: sortOrder,
	}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func TestProductRepositoryListOnlyActiveOrdered(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewProductRepository(db)
	createProduct(t, repo, "p2", "Dumbbell Set", 1499, 1)
	createProduct(t, repo, "p1", "Whey Protein", 999, 0)
	createProduct(t, repo, "p3", "Yoga Mat", 499, 2)
	if err := db.Model(&models.Product{}).Where("id = ?", "p3").Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	products, total, err := repo.List(ProductListFilter{OnlyActive: true})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 2 || len(products) != 2 {
		t.Fatalf("want 2 active products got total=%d len=%d", total, len(products))
	}
	if products[0].ID != "p1" || products[1].ID != "p2" {
		t.Fatalf("unexpected order: %s, %s", products[0].ID, products[1].ID)
	}
	if products[0].Price.Display() != "999" {
		t.Fatalf("want price 999 got %s", products[0].Price.Display())
	}
}

func TestProductRepositoryListSearchAndPaginate(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewProductRepository(db)
	for i := 1; i <= 3; i++ {
		createProduct(t, repo, fmt.Sprintf("p%d", i), "Whey Protein", 999, i)
	}
	createProduct(t, repo, "p4", "Yoga Mat", 499, 4)

	products, total, err := repo.List(ProductListFilter{Search: "whey", Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("want total 3 got %d", total)
	}
	if len(products) != 1 || products[0].ID != "p3" {
		t.Fatalf("unexpected page: %+v", products)
	}
}

func TestProductRepositoryGetByIDMissingReturnsNil(t *testing.T) {
	repo := NewProductRepository(openRepositoryTestDB(t))
	product, err := repo.GetByID("missing")
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if product != nil {
		t.Fatalf("want nil product got %+v", product)
	}
}

func TestProductRepositoryUpsertOverwrites(t *testing.T) {
	repo := NewProductRepository(openRepositoryTestDB(t))
	createProduct(t, repo, "p1", "Whey Protein", 999, 0)

	if err := repo.Upsert(&models.Product{ID: "p1", Name: "Whey Protein 2kg", Price: models.NewMoneyFromInt(1899), Currency: "INR", IsActive: true}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := repo.Upsert(&models.Product{ID: "p9", Name: "Yoga Mat", Price: models.NewMoneyFromInt(499), Currency: "INR", IsActive: true}); err != nil {
		t.Fatalf("upsert create failed: %v", err)
	}
	got, err := repo.GetByID("p1")
	if err != nil || got == nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got.Name != "Whey Protein 2kg" || got.Price.Display() != "1899" {
		t.Fatalf("product not overwritten: %+v", got)
	}
	count, err := repo.Count()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("want 2 products got %d", count)
	}
}
