package models

// UserSettings holds per-user preferences. A row is created lazily on first
// write; a missing row means defaults (no interest, English).
type UserSettings struct {
	UserID   int64 `gorm:"primaryKey"`
	Interest string
	Language string `gorm:"default:en"`
}
