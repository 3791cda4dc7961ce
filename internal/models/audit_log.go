package models

// AuditLog records user-initiated mutations (logins, writes, deletions).
type AuditLog struct {
	Base
	UserID       uint   `gorm:"not null;index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   uint   `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`

	User *User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
