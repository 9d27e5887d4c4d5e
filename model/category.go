package model

import "time"

type Category struct {
	ID          string    `gorm:"column:category_id;primaryKey;type:varchar(64)" json:"id" firestore:"id"`
	Name        string    `gorm:"column:name;type:varchar(128);not null" json:"name" firestore:"name"`
	Description string    `gorm:"column:description;type:text" json:"description" firestore:"description"`
	Color       string    `gorm:"column:color;type:varchar(16)" json:"color" firestore:"color"`
	Icon        string    `gorm:"column:icon;type:varchar(32)" json:"icon,omitempty" firestore:"icon"`
	Active      bool      `gorm:"column:active" json:"active" firestore:"active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at" firestore:"createdAt"`
}

func (Category) TableName() string {
	return "categories"
}
