package models

import "time"

// Document 文档存储行，按 (collection, doc_id) 唯一
type Document struct {
	Collection string    `gorm:"primaryKey;type:varchar(64)" json:"collection"` // 集合名称
	DocID      string    `gorm:"primaryKey;type:varchar(191)" json:"id"`        // 文档ID
	Data       JSON      `gorm:"type:json" json:"data"`                         // 文档内容
	Version    int64     `gorm:"not null;default:0" json:"version"`             // 快照版本，仅版本化写入使用
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                       // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                    // 更新时间
}

// TableName 指定表名
func (Document) TableName() string {
	return "documents"
}
