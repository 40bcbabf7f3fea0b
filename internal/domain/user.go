package domain

import "time"

// User is an account that owns bookmarks.
type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Username  string `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FirstName string `gorm:"size:150" json:"first_name"`
	LastName  string `gorm:"size:150" json:"last_name"`
	Age       uint   `json:"age"`

	// PasswordHash is a bcrypt hash. Never serialized.
	PasswordHash string `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccessToken is an opaque bearer credential. At most one live token
// exists per user: it is created lazily on the first successful
// registration or login and deleted on logout.
type AccessToken struct {
	Key    string `gorm:"primaryKey;size:64"`
	UserID uint   `gorm:"uniqueIndex;not null"`
	User   *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time
}

// UserPatch carries the fields a partial profile update may change.
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Age       *uint
}
