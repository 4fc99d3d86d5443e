package models

// Account represents a registered marketplace account.
// The email address is the primary identifier; accounts are never deleted.
type Account struct {
	Email     string `gorm:"primaryKey;size:100" json:"email"`
	FirstName string `gorm:"size:40;not null" json:"first_name"`
	LastName  string `gorm:"size:40;not null" json:"last_name"`
	Password  string `gorm:"size:255;not null" json:"-"`
	Bio       string `gorm:"size:2000" json:"bio"`

	// Relations
	Listings []Listing `gorm:"foreignKey:AccountEmail;references:Email" json:"listings,omitempty"`
}

// TableName specifies the table name for Account model
func (Account) TableName() string {
	return "account"
}
