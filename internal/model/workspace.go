package model

import "time"

// Workspace is the tenant boundary: every project, category, task and
// recurrence belongs to exactly one workspace.
type Workspace struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	OwnerID   uint   `gorm:"index"`
	Personal  bool   `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Members   []Member `gorm:"foreignKey:WorkspaceID"`
}

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Member links a user to a workspace.
type Member struct {
	ID          uint   `gorm:"primaryKey"`
	WorkspaceID uint   `gorm:"index:idx_member_workspace_user,unique"`
	UserID      uint   `gorm:"index:idx_member_workspace_user,unique"`
	Role        string `gorm:"default:member"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Project groups tasks inside a workspace.
type Project struct {
	ID          uint `gorm:"primaryKey"`
	WorkspaceID uint `gorm:"index"`
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
