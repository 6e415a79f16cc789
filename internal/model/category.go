package model

import "time"

// Category is a free-form label for tasks, unique by name within a workspace.
type Category struct {
	ID          uint   `gorm:"primaryKey"`
	WorkspaceID uint   `gorm:"index:idx_workspace_category_name,unique"`
	Name        string `gorm:"index:idx_workspace_category_name,unique"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tasks       []Task `gorm:"foreignKey:CategoryID"`
}
