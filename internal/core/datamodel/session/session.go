package session

import "time"

// Snapshot is the persisted {accessToken, user} subset of a session, one row per profile.
type Snapshot struct {
	Profile     string    `gorm:"primaryKey;column:profile"`
	AccessToken string    `gorm:"column:access_token;not null;default:''"`
	UserJSON    string    `gorm:"column:user_json;not null;default:''"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (Snapshot) TableName() string {
	return "session_snapshots"
}

// Cookie is one persisted cookie-jar entry.
type Cookie struct {
	Profile  string     `gorm:"primaryKey;column:profile"`
	Name     string     `gorm:"primaryKey;column:name"`
	Domain   string     `gorm:"primaryKey;column:domain"`
	Path     string     `gorm:"primaryKey;column:path"`
	Value    string     `gorm:"column:value;not null;default:''"`
	Expires  *time.Time `gorm:"column:expires"`
	Secure   bool       `gorm:"column:secure;not null;default:false"`
	HttpOnly bool       `gorm:"column:http_only;not null;default:false"`
}

func (Cookie) TableName() string {
	return "session_cookies"
}
