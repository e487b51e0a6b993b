package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/nutrifit/internal/config"
	"github.com/nutrifit/internal/constants"
	"github.com/nutrifit/internal/models"
	"github.com/nutrifit/internal/provider"
	"github.com/nutrifit/internal/queue"
	"github.com/nutrifit/internal/repository"
	"github.com/nutrifit/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func newTestConsumer(t *testing.T) (*Consumer, repository.DocumentRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateDB(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	docs := repository.NewDocumentRepository(db)
	plans := []*models.FitnessPlan{{
		Name: "Cardio Blast",
		Days: []models.Day{{Day: "Day 1", Exercises: []models.Exercise{{Name: "Running", Sets: 1, Reps: 30}}}},
	}}
	c := &provider.Container{
		Config:       &config.Config{},
		DocumentRepo: docs,
		PlanService:  service.NewPlanService(plans, 1, docs, nil),
	}
	return NewConsumer(c), docs
}

func TestHandlePlanProgressSyncWritesSnapshot(t *testing.T) {
	consumer, docs := newTestConsumer(t)
	plan := &models.FitnessPlan{
		Name: "Cardio Blast",
		Days: []models.Day{{Day: "Day 1", Exercises: []models.Exercise{{Name: "Running", Sets: 1, Reps: 30, Progress: 40}}}},
	}
	task, err := queue.NewPlanProgressSyncTask(queue.PlanProgressSyncPayload{UserID: "uid-1", Plan: plan, Version: 1})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handlePlanProgressSync(context.Background(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}
	doc, err := docs.Get(context.Background(), constants.CollectionUserPlans, "uid-1")
	if err != nil || doc == nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	stored, err := models.DecodeFitnessPlan(doc)
	if err != nil {
		t.Fatalf("decode snapshot failed: %v", err)
	}
	if stored.Days[0].Exercises[0].Progress != 40 {
		t.Fatalf("want progress 40 got %d", stored.Days[0].Exercises[0].Progress)
	}
}

func TestHandlePlanProgressSyncIgnoresOutOfOrderTask(t *testing.T) {
	consumer, docs := newTestConsumer(t)
	build := func(progress int, version int64) *asynq.Task {
		plan := &models.FitnessPlan{
			Name: "Cardio Blast",
			Days: []models.Day{{Day: "Day 1", Exercises: []models.Exercise{{Name: "Running", Sets: 1, Reps: 30, Progress: progress}}}},
		}
		task, err := queue.NewPlanProgressSyncTask(queue.PlanProgressSyncPayload{UserID: "uid-2", Plan: plan, Version: version})
		if err != nil {
			t.Fatalf("build task failed: %v", err)
		}
		return task
	}
	// 新版本先到，旧版本后到
	if err := consumer.handlePlanProgressSync(context.Background(), build(70, 2)); err != nil {
		t.Fatalf("handle newer task failed: %v", err)
	}
	if err := consumer.handlePlanProgressSync(context.Background(), build(60, 1)); err != nil {
		t.Fatalf("stale task should be skipped without error, got %v", err)
	}
	doc, err := docs.Get(context.Background(), constants.CollectionUserPlans, "uid-2")
	if err != nil || doc == nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	stored, err := models.DecodeFitnessPlan(doc)
	if err != nil {
		t.Fatalf("decode snapshot failed: %v", err)
	}
	if stored.Days[0].Exercises[0].Progress != 70 {
		t.Fatalf("want progress 70 got %d", stored.Days[0].Exercises[0].Progress)
	}
}

func TestHandlePlanProgressSyncSkipsBrokenPayload(t *testing.T) {
	consumer, _ := newTestConsumer(t)
	body, _ := json.Marshal(map[string]string{"user_id": "uid-1"})
	err := consumer.handlePlanProgressSync(context.Background(), asynq.NewTask(queue.TaskPlanProgressSync, body))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("want SkipRetry got %v", err)
	}
}

func TestHandlePlanProgressSyncNilSafe(t *testing.T) {
	var consumer *Consumer
	if err := consumer.handlePlanProgressSync(context.Background(), nil); err != nil {
		t.Fatalf("nil consumer should be skipped, got %v", err)
	}
	empty := NewConsumer(nil)
	task, _ := queue.NewPlanProgressSyncTask(queue.PlanProgressSyncPayload{UserID: "u", Plan: &models.FitnessPlan{Name: "x"}})
	if err := empty.handlePlanProgressSync(context.Background(), task); err != nil {
		t.Fatalf("missing plan service should be skipped, got %v", err)
	}
}

func TestNewServiceRequiresEnabledQueue(t *testing.T) {
	if _, err := NewService(&config.QueueConfig{Enabled: false}, NewConsumer(nil)); err == nil {
		t.Fatalf("disabled queue should fail")
	}
	if _, err := NewService(&config.QueueConfig{Enabled: true}, nil); err == nil {
		t.Fatalf("nil consumer should fail")
	}
}
