package db

import (
	"time"
)

// Gender values accepted for a client profile.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g string) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Client table. Email is the unique case-sensitive match key across
// active clients. Coordinates are optional; a client without them is
// excluded from distance-filtered listings. Avatar is stored as an
// opaque blob and never leaves the account service.
type Client struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"size:64;not null"`
	Surname      string `gorm:"size:64"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	Gender       string `gorm:"size:16;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Avatar       []byte `gorm:"type:mediumblob"`
	Latitude     *float64
	Longitude    *float64
	Active       bool      `gorm:"default:true"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Like represents liker -> likee interest.
//
// Unique index idx_liker_likee(liker_id, likee_id) guarantees at most
// one row per ordered pair; a duplicate insert surfaces
// gorm.ErrDuplicatedKey. idx_liker_created(liker_id, created_at)
// serves the daily-quota count.
type Like struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	LikerID   uint64    `gorm:"not null;uniqueIndex:idx_liker_likee,priority:1;index:idx_liker_created,priority:1"`
	LikeeID   uint64    `gorm:"not null;uniqueIndex:idx_liker_likee,priority:2"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_liker_created,priority:2"`
}
