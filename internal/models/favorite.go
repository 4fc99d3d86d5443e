package models

// Favorite is a one-directional social bookmark from one account to another.
// Rows are append-only and deliberately carry no uniqueness constraint, so
// repeated marks produce duplicate rows.
type Favorite struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	AccountEmail   string `gorm:"size:100;not null;index" json:"account_email"`
	FavoritesEmail string `gorm:"size:100;not null" json:"favorites_email"`
}

// TableName specifies the table name for Favorite model
func (Favorite) TableName() string {
	return "account_favorites"
}
