package models

import (
	"time"
)

// Unit represents the unit a listing is priced and sold by
type Unit string

const (
	UnitPound    Unit = "pound"
	UnitPiece    Unit = "piece"
	UnitOunce    Unit = "ounce"
	UnitKilogram Unit = "kilogram"
	UnitGram     Unit = "gram"
	UnitOther    Unit = "other"
)

// TimeLayout is the storage format for listing posting times. Fixed-width
// fractional seconds keep lexical order equal to chronological order, which
// the feed's ORDER BY time_posted relies on. Values are always UTC.
const TimeLayout = "2006-01-02 15:04:05.000000"

// Listing represents a postable offer of a quantity of a good at a price per
// unit, owned by one account. Quantity only ever decreases, via purchases.
type Listing struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"size:40;not null" json:"name"`
	Quantity     float64 `gorm:"type:decimal(12,3);not null" json:"quantity"`
	Description  string  `gorm:"size:500;not null" json:"description"`
	Price        float64 `gorm:"type:decimal(12,2);not null" json:"price"`
	Unit         Unit    `gorm:"size:20;not null" json:"unit"`
	AccountEmail string  `gorm:"size:100;not null;index" json:"account_email"`
	FilePath     *string `gorm:"size:255" json:"file_path,omitempty"`
	TimePosted   string  `gorm:"size:40;index" json:"time_posted"`
	Expired      bool    `gorm:"not null;default:false;index" json:"expired"`

	// Relations
	Account Account `gorm:"foreignKey:AccountEmail;references:Email" json:"-"`
	Photos  []Photo `gorm:"foreignKey:ListingID" json:"photos,omitempty"`
}

// TableName specifies the table name for Listing model
func (Listing) TableName() string {
	return "listing"
}

// PostedAt parses the stored posting time. Legacy rows may hold values that
// do not parse; callers treat those as not yet due for expiry.
func (l *Listing) PostedAt() (time.Time, error) {
	return time.Parse(TimeLayout, l.TimePosted)
}

// Active reports whether the listing is visible to the feed.
func (l *Listing) Active() bool {
	return !l.Expired && l.Quantity > 0
}

// FormatPostedTime renders t in the storage format used for TimePosted.
func FormatPostedTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
