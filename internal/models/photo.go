package models

// Photo represents a photo row owned by a listing. The file path is nullable
// until the upload completes. A listing additionally carries a denormalized
// primary photo path on its own row; the two are not reconciled.
type Photo struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ListingID uint    `gorm:"not null;index" json:"listing_id"`
	FilePath  *string `gorm:"size:255" json:"file_path,omitempty"`

	// Relations
	Listing Listing `gorm:"foreignKey:ListingID" json:"-"`
}

// TableName specifies the table name for Photo model
func (Photo) TableName() string {
	return "photo"
}
