package models

import (
	"time"
)

// Product 商品表
type Product struct {
	ID          string    `gorm:"primarykey;type:varchar(64)" json:"id"`                  // 商品ID（p1 形式）
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`                 // 名称
	Description string    `gorm:"type:text" json:"description,omitempty"`                 // 描述
	Price       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`     // 单价
	Currency    string    `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"` // 币种
	Image       string    `gorm:"type:varchar(255)" json:"image"`                         // 图片路径
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`                    // 是否上架
	SortOrder   int       `gorm:"default:0;index" json:"sort_order"`                      // 排序权重
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                             // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
