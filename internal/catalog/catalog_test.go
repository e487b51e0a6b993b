package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPlansLoadsEmbeddedCatalog(t *testing.T) {
	plans, err := Plans()
	if err != nil {
		t.Fatalf("load plans failed: %v", err)
	}
	if len(plans) != 13 {
		t.Fatalf("want 13 plans got %d", len(plans))
	}
	for _, plan := range plans {
		if plan.ExerciseCount() == 0 {
			t.Fatalf("plan %q has no exercises", plan.Name)
		}
		for _, day := range plan.Days {
			for _, exercise := range day.Exercises {
				if exercise.Progress != 0 {
					t.Fatalf("template progress must start at 0, got %d", exercise.Progress)
				}
			}
		}
	}
}

func TestParsePlansRejectsEmpty(t *testing.T) {
	if _, err := ParsePlans([]byte("plans: []\n")); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("want ErrEmptyCatalog got %v", err)
	}
}

func TestPlansFromFileClampsProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	content := `plans:
  - name: "Custom"
    days:
      - day: "Day 1"
        exercises:
          - { name: "Squats", sets: 3, reps: 10, progress: 140 }
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write plans file failed: %v", err)
	}
	plans, err := PlansFromFile(path)
	if err != nil {
		t.Fatalf("load plans file failed: %v", err)
	}
	if got := plans[0].Days[0].Exercises[0].Progress; got != 100 {
		t.Fatalf("want clamped progress 100 got %d", got)
	}
}

func TestProductsLoadsEmbeddedCatalog(t *testing.T) {
	products, err := Products()
	if err != nil {
		t.Fatalf("load products failed: %v", err)
	}
	if len(products) != 22 {
		t.Fatalf("want 22 products got %d", len(products))
	}
	first := products[0]
	if first.ID != "p1" || first.Name != "Whey Protein" || first.Price.Display() != "999" {
		t.Fatalf("unexpected first product: %+v", first)
	}
	if first.Currency != "INR" || !first.IsActive {
		t.Fatalf("unexpected currency or active flag: %+v", first)
	}
}

func TestAssistantAssets(t *testing.T) {
	diets, replies, err := Assistant()
	if err != nil {
		t.Fatalf("load assistant assets failed: %v", err)
	}
	if len(diets) != 3 || len(replies) != 4 {
		t.Fatalf("want 3 diets and 4 replies got %d and %d", len(diets), len(replies))
	}
	if diets[0].DailyCalories != 2000 {
		t.Fatalf("want 2000 kcal got %d", diets[0].DailyCalories)
	}
}
