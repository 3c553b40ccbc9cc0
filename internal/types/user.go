package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username        string     `gorm:"uniqueIndex;not null;column:username" json:"username"`
	Email           string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	ExternalLogin   *string    `gorm:"uniqueIndex;column:external_login" json:"external_login,omitempty"`
	PasswordHash    string     `gorm:"not null;column:password_hash" json:"-"`
	IsGuest         bool       `gorm:"not null;default:false;column:is_guest" json:"is_guest"`
	Token           *string    `gorm:"uniqueIndex;column:token" json:"-"`
	TokenExpiration *time.Time `gorm:"column:token_expiration" json:"-"`
	Articles        []*Article `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

// ToDict builds the API representation. Email and external login are only
// included when the caller owns the record.
func (u *User) ToDict(includePrivate bool) map[string]interface{} {
	data := map[string]interface{}{
		"id":       u.ID.String(),
		"username": u.Username,
		"is_guest": u.IsGuest,
		"_links": map[string]interface{}{
			"self":     fmt.Sprintf("/api/users/%s", u.ID),
			"articles": fmt.Sprintf("/api/articles/%s", u.ID),
		},
	}
	if includePrivate {
		data["email"] = u.Email
		if u.ExternalLogin != nil {
			data["external_login"] = *u.ExternalLogin
		}
	}
	return data
}

// FromDict applies the mutable fields present in data. The password hash is
// handled by the caller since hashing lives outside the model.
func (u *User) FromDict(data map[string]interface{}) {
	if username, ok := data["username"].(string); ok {
		u.Username = username
	}
	if email, ok := data["email"].(string); ok {
		u.Email = email
	}
	if externalLogin, ok := data["external_login"].(string); ok {
		u.ExternalLogin = &externalLogin
	}
}
