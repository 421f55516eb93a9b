package models

import "time"

// Report is an append-only complaint about a chat partner.
type Report struct {
	ID         uint `gorm:"primaryKey"`
	ReporterID int64
	ReportedID int64
	Reason     string
	CreatedAt  time.Time
}
