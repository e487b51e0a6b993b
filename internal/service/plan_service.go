package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/nutrifit/internal/constants"
	"github.com/nutrifit/internal/logger"
	"github.com/nutrifit/internal/models"
	"github.com/nutrifit/internal/queue"
	"github.com/nutrifit/internal/repository"
)

// AssignRandomPlan 在目录中均匀随机选取一个计划，返回目录中的原对象
func AssignRandomPlan(catalog []*models.FitnessPlan, rng *rand.Rand) (*models.FitnessPlan, error) {
	if len(catalog) == 0 {
		return nil, ErrPlanCatalogEmpty
	}
	if rng == nil {
		return catalog[rand.Intn(len(catalog))], nil
	}
	return catalog[rng.Intn(len(catalog))], nil
}

// UpdateExerciseProgress 调整单个动作进度并限制在 [0,100]，返回新进度
func UpdateExerciseProgress(plan *models.FitnessPlan, dayIndex, exerciseIndex, delta int) (int, error) {
	if plan == nil || dayIndex < 0 || dayIndex >= len(plan.Days) {
		return 0, ErrExerciseNotFound
	}
	exercises := plan.Days[dayIndex].Exercises
	if exerciseIndex < 0 || exerciseIndex >= len(exercises) {
		return 0, ErrExerciseNotFound
	}
	// 先收敛 delta，避免极端值相加溢出
	delta = max(-constants.ProgressMax, min(delta, constants.ProgressMax))
	next := models.ClampProgress(exercises[exerciseIndex].Progress + delta)
	exercises[exerciseIndex].Progress = next
	return next, nil
}

// OverallProgress 全部动作进度的平均值（四舍五入），无动作时为 0
func OverallProgress(plan *models.FitnessPlan) int {
	if plan == nil {
		return 0
	}
	sum, count := 0, 0
	for _, day := range plan.Days {
		for _, exercise := range day.Exercises {
			sum += exercise.Progress
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

// PlanView 计划及整体进度
type PlanView struct {
	Plan            *models.FitnessPlan `json:"plan"`
	OverallProgress int                 `json:"overall_progress"`
}

// PlanService 用户计划分配与进度维护，内存中的工作副本为当前会话的准绳
type PlanService struct {
	mu          sync.Mutex
	catalog     []*models.FitnessPlan
	rng         *rand.Rand
	working     map[string]*workingPlan
	lastVersion int64
	docs        repository.DocumentRepository
	queue       *queue.Client
	now         func() time.Time
}

// workingPlan 用户工作副本
type workingPlan struct {
	plan       *models.FitnessPlan
	lastActive time.Time
}

// NewPlanService 创建计划服务；seed 为 0 时按当前时间播种
func NewPlanService(catalog []*models.FitnessPlan, seed int64, docs repository.DocumentRepository, queueClient *queue.Client) *PlanService {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &PlanService{
		catalog: catalog,
		rng:     rand.New(rand.NewSource(seed)),
		working: make(map[string]*workingPlan),
		docs:    docs,
		queue:   queueClient,
		now:     time.Now,
	}
}

// CatalogSize 目录中的计划数
func (s *PlanService) CatalogSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.catalog)
}

// AssignPlan 为用户重新随机分配计划，进度从模板重新开始
func (s *PlanService) AssignPlan(ctx context.Context, userID string) (*PlanView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	s.mu.Lock()
	template, err := AssignRandomPlan(s.catalog, s.rng)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	plan := template.Clone()
	s.working[userID] = &workingPlan{plan: plan, lastActive: s.now()}
	view := viewOf(plan)
	version := s.nextVersionLocked()
	s.mu.Unlock()

	logger.Infow("plan_assigned", "user_id", userID, "plan", plan.Name)
	s.mirror(ctx, userID, view.Plan, version)
	return view, nil
}

// CurrentPlan 返回用户当前计划；内存中没有时尝试从已同步的快照恢复，否则新分配
func (s *PlanService) CurrentPlan(ctx context.Context, userID string) (*PlanView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	s.mu.Lock()
	if entry, ok := s.working[userID]; ok {
		entry.lastActive = s.now()
		view := viewOf(entry.plan)
		s.mu.Unlock()
		return view, nil
	}
	s.mu.Unlock()

	if view := s.adoptSnapshot(ctx, userID); view != nil {
		return view, nil
	}
	return s.AssignPlan(ctx, userID)
}

// UpdateProgress 调整进度并尽力同步到文档存储；同步失败只记录日志，不回滚内存
func (s *PlanService) UpdateProgress(ctx context.Context, userID string, dayIndex, exerciseIndex, delta int) (*PlanView, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	s.mu.Lock()
	_, ok := s.working[userID]
	s.mu.Unlock()
	// 工作副本已被清理时从快照恢复
	if !ok && s.adoptSnapshot(ctx, userID) == nil {
		return nil, ErrPlanNotFound
	}

	s.mu.Lock()
	entry, ok := s.working[userID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrPlanNotFound
	}
	if _, err := UpdateExerciseProgress(entry.plan, dayIndex, exerciseIndex, delta); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	entry.lastActive = s.now()
	view := viewOf(entry.plan)
	version := s.nextVersionLocked()
	s.mu.Unlock()

	s.mirror(ctx, userID, view.Plan, version)
	return view, nil
}

// Sweep 清理闲置超时的工作副本，之后的访问从快照恢复
func (s *PlanService) Sweep(now time.Time, idleTTL time.Duration) int {
	if idleTTL <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for userID, entry := range s.working {
		if now.Sub(entry.lastActive) >= idleTTL {
			delete(s.working, userID)
			removed++
		}
	}
	return removed
}

// WritePlanSnapshot 将计划快照写入 userPlans 集合；version 不大于已存版本时跳过
func (s *PlanService) WritePlanSnapshot(ctx context.Context, userID string, plan *models.FitnessPlan, version int64) error {
	if s.docs == nil {
		return fmt.Errorf("%w: document store not configured", ErrPersistence)
	}
	doc, err := models.ToJSON(plan)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	doc["overall_progress"] = OverallProgress(plan)
	doc["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	applied, err := s.docs.SetVersioned(ctx, constants.CollectionUserPlans, userID, doc, version)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !applied {
		logger.Debugw("plan_snapshot_stale_skipped", "user_id", userID, "version", version)
	}
	return nil
}

// nextVersionLocked 单调递增的快照版本，基于纳秒时间以便重启后继续递增；调用方持有锁
func (s *PlanService) nextVersionLocked() int64 {
	version := s.now().UnixNano()
	if version <= s.lastVersion {
		version = s.lastVersion + 1
	}
	s.lastVersion = version
	return version
}

// mirror 尽力同步：队列可用时投递任务，否则直接写入
func (s *PlanService) mirror(ctx context.Context, userID string, plan *models.FitnessPlan, version int64) {
	if s.queue != nil && s.queue.Enabled() {
		err := s.queue.EnqueuePlanProgressSync(queue.PlanProgressSyncPayload{UserID: userID, Plan: plan, Version: version})
		if err == nil {
			return
		}
		logger.Warnw("plan_progress_enqueue_failed", "user_id", userID, "error", err)
	}
	if err := s.WritePlanSnapshot(ctx, userID, plan, version); err != nil {
		logger.Warnw("plan_progress_mirror_failed", "user_id", userID, "error", err)
	}
}

// adoptSnapshot 从快照恢复工作副本；并发恢复时以先放入内存的为准
func (s *PlanService) adoptSnapshot(ctx context.Context, userID string) *PlanView {
	restored := s.restore(ctx, userID)
	if restored == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.working[userID]
	if !ok {
		entry = &workingPlan{plan: restored}
		s.working[userID] = entry
	}
	entry.lastActive = s.now()
	return viewOf(entry.plan)
}

func (s *PlanService) restore(ctx context.Context, userID string) *models.FitnessPlan {
	if s.docs == nil {
		return nil
	}
	doc, err := s.docs.Get(ctx, constants.CollectionUserPlans, userID)
	if err != nil {
		logger.Warnw("plan_snapshot_load_failed", "user_id", userID, "error", err)
		return nil
	}
	if doc == nil {
		return nil
	}
	plan, err := models.DecodeFitnessPlan(doc)
	if err != nil {
		logger.Warnw("plan_snapshot_invalid", "user_id", userID, "error", err)
		return nil
	}
	return plan
}

// viewOf 返回带整体进度的深拷贝，调用方持有锁
func viewOf(plan *models.FitnessPlan) *PlanView {
	clone := plan.Clone()
	return &PlanView{Plan: clone, OverallProgress: OverallProgress(clone)}
}
