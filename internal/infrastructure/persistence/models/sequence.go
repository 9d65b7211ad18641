package models

// SequenceModel stores the last value handed out for a named document sequence.
type SequenceModel struct {
	Name  string `gorm:"type:varchar(100);primaryKey"`
	Value int64  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "document_sequences"
}
