package models

type Account struct {
	BaseModel

	Username     string `json:"username" gorm:"uniqueIndex;size:64;not null"`
	PasswordHash string `json:"-" gorm:"size:128;not null"`
	Role         string `json:"role" gorm:"size:32"`
}

const (
	AccountRoleAdmin  = "admin"
	AccountRoleViewer = "viewer"
)
