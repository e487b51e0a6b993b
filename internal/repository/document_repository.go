package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/nutrifit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEmptyDocumentKey 集合名或文档ID为空
var ErrEmptyDocumentKey = errors.New("document collection and id are required")

// DocumentRepository 文档存储访问接口：按 ID 读写与整集合扫描
type DocumentRepository interface {
	Get(ctx context.Context, collection, id string) (models.JSON, error)
	Set(ctx context.Context, collection, id string, data models.JSON) error
	SetVersioned(ctx context.Context, collection, id string, data models.JSON, version int64) (bool, error)
	List(ctx context.Context, collection string) ([]models.Document, error)
	Delete(ctx context.Context, collection, id string) error
}

// GormDocumentRepository GORM 实现
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository 创建文档仓库
func NewDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// Get 读取文档，不存在时返回 nil, nil
func (r *GormDocumentRepository) Get(ctx context.Context, collection, id string) (models.JSON, error) {
	doc, err := r.find(ctx, collection, id)
	if err != nil || doc == nil {
		return nil, err
	}
	if doc.Data == nil {
		return models.JSON{}, nil
	}
	return doc.Data, nil
}

// Set 整体覆盖写入文档；单条 upsert 语句，并发首写按最后写入者生效
func (r *GormDocumentRepository) Set(ctx context.Context, collection, id string, data models.JSON) error {
	collection, id = strings.TrimSpace(collection), strings.TrimSpace(id)
	if collection == "" || id == "" {
		return ErrEmptyDocumentKey
	}
	if data == nil {
		data = models.JSON{}
	}
	doc := &models.Document{
		Collection: collection,
		DocID:      id,
		Data:       data,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(doc).Error
}

// SetVersioned 仅当 version 大于已存版本时覆盖写入，返回是否写入
func (r *GormDocumentRepository) SetVersioned(ctx context.Context, collection, id string, data models.JSON, version int64) (bool, error) {
	collection, id = strings.TrimSpace(collection), strings.TrimSpace(id)
	if collection == "" || id == "" {
		return false, ErrEmptyDocumentKey
	}
	if data == nil {
		data = models.JSON{}
	}
	doc := &models.Document{
		Collection: collection,
		DocID:      id,
		Data:       data,
		Version:    version,
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "version", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "documents.version < excluded.version"},
		}},
	}).Create(doc)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 返回集合内全部文档，按文档ID排序
func (r *GormDocumentRepository) List(ctx context.Context, collection string) ([]models.Document, error) {
	var docs []models.Document
	if err := r.db.WithContext(ctx).
		Where("collection = ?", strings.TrimSpace(collection)).
		Order("doc_id ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Delete 删除文档，不存在时不报错
func (r *GormDocumentRepository) Delete(ctx context.Context, collection, id string) error {
	collection, id = strings.TrimSpace(collection), strings.TrimSpace(id)
	if collection == "" || id == "" {
		return ErrEmptyDocumentKey
	}
	return r.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&models.Document{}).Error
}

func (r *GormDocumentRepository) find(ctx context.Context, collection, id string) (*models.Document, error) {
	collection, id = strings.TrimSpace(collection), strings.TrimSpace(id)
	if collection == "" || id == "" {
		return nil, ErrEmptyDocumentKey
	}
	var doc models.Document
	if err := r.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}
