package models

// BlockRelation is a directed "blocker never wants to meet blocked" edge.
// Matching treats it as symmetric: if either direction exists between two
// users they are never paired.
type BlockRelation struct {
	BlockerID int64 `gorm:"primaryKey;autoIncrement:false"`
	BlockedID int64 `gorm:"primaryKey;autoIncrement:false"`
}
