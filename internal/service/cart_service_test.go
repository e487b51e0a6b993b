package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nutrifit/internal/cart"
	"github.com/nutrifit/internal/models"
	"github.com/nutrifit/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateDB(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func newTestCartService(t *testing.T, notifier OrderNotifier) *CartService {
	t.Helper()
	repo := repository.NewProductRepository(openServiceTestDB(t))
	products := []models.Product{
		{ID: "p1", Name: "Whey Protein", Price: models.NewMoneyFromInt(999), Currency: "INR", IsActive: true, SortOrder: 1},
		{ID: "p2", Name: "Yoga Mat", Price: models.NewMoneyFromInt(499), Currency: "INR", IsActive: true, SortOrder: 2},
		{ID: "p3", Name: "Discontinued Shaker", Price: models.NewMoneyFromInt(199), Currency: "INR", IsActive: true, SortOrder: 3},
	}
	if _, err := NewProductService(repo).Seed(products, false); err != nil {
		t.Fatalf("seed products failed: %v", err)
	}
	// 下架
	if err := repo.Upsert(&models.Product{ID: "p3", Name: "Discontinued Shaker", Price: models.NewMoneyFromInt(199), Currency: "INR", IsActive: false}); err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}
	registry := cart.NewRegistry(cart.RegistryOptions{})
	return NewCartService(registry, repo, NewOrderService(notifier, "₹"))
}

func TestCartServiceAddProduct(t *testing.T) {
	svc := newTestCartService(t, &recordingNotifier{})
	ctx := context.Background()
	if _, err := svc.AddProduct(ctx, "s1", "p1"); err != nil {
		t.Fatalf("add p1 failed: %v", err)
	}
	if _, err := svc.AddProduct(ctx, "s1", "p2"); err != nil {
		t.Fatalf("add p2 failed: %v", err)
	}
	snapshot, err := svc.AddProduct(ctx, "s1", "p2")
	if err != nil {
		t.Fatalf("add p2 again failed: %v", err)
	}
	if len(snapshot.Items) != 2 {
		t.Fatalf("want 2 lines got %d", len(snapshot.Items))
	}
	if snapshot.Total.Display() != "1997" {
		t.Fatalf("want total 1997 got %s", snapshot.Total.Display())
	}

	other, err := svc.Snapshot(ctx, "s2")
	if err != nil {
		t.Fatalf("snapshot s2 failed: %v", err)
	}
	if !other.IsEmpty() {
		t.Fatalf("sessions must not share carts")
	}
}

func TestCartServiceRejectsUnknownOrInactiveProduct(t *testing.T) {
	svc := newTestCartService(t, &recordingNotifier{})
	for _, id := range []string{"missing", "p3"} {
		if _, err := svc.AddProduct(context.Background(), "s1", id); !errors.Is(err, ErrProductNotFound) {
			t.Fatalf("product %s: want ErrProductNotFound got %v", id, err)
		}
	}
}

func TestCartServiceRequiresSession(t *testing.T) {
	svc := newTestCartService(t, &recordingNotifier{})
	if _, err := svc.Snapshot(context.Background(), " "); !errors.Is(err, ErrValidation) {
		t.Fatalf("want ErrValidation got %v", err)
	}
}

func TestCartServiceRemoveAndClear(t *testing.T) {
	svc := newTestCartService(t, &recordingNotifier{})
	ctx := context.Background()
	_, _ = svc.AddProduct(ctx, "s1", "p1")
	_, _ = svc.AddProduct(ctx, "s1", "p2")

	snapshot, err := svc.RemoveItem(ctx, "s1", "p1")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(snapshot.Items) != 1 || snapshot.Items[0].ID != "p2" {
		t.Fatalf("unexpected items after remove: %+v", snapshot.Items)
	}
	if _, err := svc.RemoveItem(ctx, "s1", "nope"); err != nil {
		t.Fatalf("removing missing item should be a no-op, got %v", err)
	}
	snapshot, err = svc.Clear(ctx, "s1")
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if !snapshot.IsEmpty() || !snapshot.Total.IsZero() {
		t.Fatalf("cart not cleared: %+v", snapshot)
	}
}

func TestCartServiceCheckoutClearsOnSuccess(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestCartService(t, notifier)
	ctx := context.Background()
	_, _ = svc.AddProduct(ctx, "s1", "p1")

	summary, err := svc.Checkout(ctx, "s1", "buyer@example.com")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if summary.Text() != "Whey Protein x1 - ₹999" {
		t.Fatalf("unexpected summary: %s", summary.Text())
	}
	snapshot, _ := svc.Snapshot(ctx, "s1")
	if !snapshot.IsEmpty() {
		t.Fatalf("cart should be cleared after checkout")
	}
}

func TestCartServiceCheckoutKeepsItemsAddedDuringNotification(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestCartService(t, notifier)
	ctx := context.Background()
	_, _ = svc.AddProduct(ctx, "s1", "p1")
	notifier.onNotify = func() {
		_, _ = svc.AddProduct(ctx, "s1", "p2")
	}

	summary, err := svc.Checkout(ctx, "s1", "buyer@example.com")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if summary.Text() != "Whey Protein x1 - ₹999" {
		t.Fatalf("unexpected summary: %s", summary.Text())
	}
	snapshot, _ := svc.Snapshot(ctx, "s1")
	if len(snapshot.Items) != 1 || snapshot.Items[0].ID != "p2" {
		t.Fatalf("want only p2 left in cart got %+v", snapshot.Items)
	}
}

func TestCartServiceCheckoutKeepsCartOnFailure(t *testing.T) {
	notifier := &recordingNotifier{failErr: errors.New("smtp down")}
	svc := newTestCartService(t, notifier)
	ctx := context.Background()
	_, _ = svc.AddProduct(ctx, "s1", "p1")

	if _, err := svc.Checkout(ctx, "s1", "buyer@example.com"); !errors.Is(err, ErrNotification) {
		t.Fatalf("want ErrNotification got %v", err)
	}
	snapshot, _ := svc.Snapshot(ctx, "s1")
	if len(snapshot.Items) != 1 {
		t.Fatalf("cart should be kept after failed checkout")
	}

	if _, err := svc.Checkout(ctx, "s1", "bad"); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("want ErrInvalidEmail got %v", err)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("invalid email must not reach notifier, calls=%d", len(notifier.calls))
	}
}

func TestCartServiceCheckoutEmptyCart(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestCartService(t, notifier)
	if _, err := svc.Checkout(context.Background(), "s1", "buyer@example.com"); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("want ErrCartEmpty got %v", err)
	}
	if len(notifier.calls) != 0 {
		t.Fatalf("empty cart must not reach notifier")
	}
}

func TestProductServiceSeedOnlyWhenEmpty(t *testing.T) {
	repo := repository.NewProductRepository(openServiceTestDB(t))
	svc := NewProductService(repo)
	products := []models.Product{{ID: "p1", Name: "Whey Protein", Price: models.NewMoneyFromInt(999), IsActive: true}}
	written, err := svc.Seed(products, true)
	if err != nil || written != 1 {
		t.Fatalf("first seed: written=%d err=%v", written, err)
	}
	written, err = svc.Seed(products, true)
	if err != nil || written != 0 {
		t.Fatalf("second seed should skip: written=%d err=%v", written, err)
	}
	list, total, err := svc.ListPublic("whey", 1, 20)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != "p1" {
		t.Fatalf("unexpected list: total=%d items=%+v", total, list)
	}
}
