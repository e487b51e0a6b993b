package catalog

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nutrifit/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed assets/*.yaml
var assets embed.FS

// ErrEmptyCatalog 计划目录为空
var ErrEmptyCatalog = errors.New("plan catalog is empty")

// ProductSeed 内置商品数据
type ProductSeed struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Price       float64 `yaml:"price"`
	Image       string  `yaml:"image"`
	SortOrder   int     `yaml:"sort_order"`
}

type plansFile struct {
	Plans []*models.FitnessPlan `yaml:"plans"`
}

type productsFile struct {
	Currency string        `yaml:"currency"`
	Products []ProductSeed `yaml:"products"`
}

type assistantFile struct {
	DietPlans []models.DietPlan `yaml:"diet_plans"`
	Replies   []string          `yaml:"replies"`
}

// Plans 读取内置训练计划模板
func Plans() ([]*models.FitnessPlan, error) {
	raw, err := assets.ReadFile("assets/plans.yaml")
	if err != nil {
		return nil, err
	}
	return ParsePlans(raw)
}

// PlansFromFile 从外部 YAML 文件读取训练计划
func PlansFromFile(path string) ([]*models.FitnessPlan, error) {
	raw, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("read plans file: %w", err)
	}
	return ParsePlans(raw)
}

// ParsePlans 解析并校验计划 YAML
func ParsePlans(raw []byte) ([]*models.FitnessPlan, error) {
	var file plansFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse plans: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, ErrEmptyCatalog
	}
	for i, plan := range file.Plans {
		if err := plan.Validate(); err != nil {
			return nil, fmt.Errorf("plan %d: %w", i, err)
		}
		for d := range plan.Days {
			for e := range plan.Days[d].Exercises {
				plan.Days[d].Exercises[e].Progress = models.ClampProgress(plan.Days[d].Exercises[e].Progress)
			}
		}
	}
	return file.Plans, nil
}

// Products 读取内置商品并转换为模型
func Products() ([]models.Product, error) {
	raw, err := assets.ReadFile("assets/products.yaml")
	if err != nil {
		return nil, err
	}
	var file productsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse products: %w", err)
	}
	currency := strings.ToUpper(strings.TrimSpace(file.Currency))
	if currency == "" {
		currency = "INR"
	}
	out := make([]models.Product, 0, len(file.Products))
	for _, seed := range file.Products {
		if strings.TrimSpace(seed.ID) == "" || seed.Price < 0 {
			return nil, fmt.Errorf("invalid product seed %q", seed.ID)
		}
		out = append(out, models.Product{
			ID:          seed.ID,
			Name:        seed.Name,
			Description: seed.Description,
			Price:       models.NewMoneyFromDecimal(decimal.NewFromFloat(seed.Price)),
			Currency:    currency,
			Image:       seed.Image,
			IsActive:    true,
			SortOrder:   seed.SortOrder,
		})
	}
	return out, nil
}

// Assistant 读取助手饮食方案与回复文案
func Assistant() ([]models.DietPlan, []string, error) {
	raw, err := assets.ReadFile("assets/assistant.yaml")
	if err != nil {
		return nil, nil, err
	}
	var file assistantFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("parse assistant assets: %w", err)
	}
	if len(file.DietPlans) == 0 || len(file.Replies) == 0 {
		return nil, nil, errors.New("assistant assets are incomplete")
	}
	return file.DietPlans, file.Replies, nil
}
