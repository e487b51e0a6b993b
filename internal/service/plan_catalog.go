package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nutrifit/internal/catalog"
	"github.com/nutrifit/internal/constants"
	"github.com/nutrifit/internal/logger"
	"github.com/nutrifit/internal/models"
	"github.com/nutrifit/internal/repository"
)

// LoadPlanCatalog 启动时加载一次计划目录：内置资源、外部文件或 fitnessPlans 集合
func LoadPlanCatalog(ctx context.Context, source, plansFile string, docs repository.DocumentRepository) ([]*models.FitnessPlan, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", constants.CatalogSourceEmbedded:
		if strings.TrimSpace(plansFile) != "" {
			return catalog.PlansFromFile(plansFile)
		}
		return catalog.Plans()
	case constants.CatalogSourceCollection:
		return loadPlansFromCollection(ctx, docs)
	default:
		return nil, fmt.Errorf("unsupported plan catalog source: %s", source)
	}
}

func loadPlansFromCollection(ctx context.Context, docs repository.DocumentRepository) ([]*models.FitnessPlan, error) {
	if docs == nil {
		return nil, fmt.Errorf("%w: document store not configured", ErrPersistence)
	}
	rows, err := docs.List(ctx, constants.CollectionFitnessPlans)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	plans := make([]*models.FitnessPlan, 0, len(rows))
	for _, row := range rows {
		plan, err := models.DecodeFitnessPlan(row.Data)
		if err != nil {
			logger.Warnw("plan_document_skipped", "doc_id", row.DocID, "error", err)
			continue
		}
		plans = append(plans, plan)
	}
	if len(plans) == 0 {
		return nil, ErrPlanCatalogEmpty
	}
	return plans, nil
}

// SeedPlanCollection 将计划写入 fitnessPlans 集合，文档ID按序号生成
func SeedPlanCollection(ctx context.Context, docs repository.DocumentRepository, plans []*models.FitnessPlan) (int, error) {
	written := 0
	for i, plan := range plans {
		doc, err := models.ToJSON(plan)
		if err != nil {
			return written, err
		}
		if err := docs.Set(ctx, constants.CollectionFitnessPlans, fmt.Sprintf("plan-%02d", i+1), doc); err != nil {
			return written, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		written++
	}
	logger.Infow("plan_collection_seeded", "count", written)
	return written, nil
}
