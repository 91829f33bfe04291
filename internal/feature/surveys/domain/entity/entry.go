// Package entity defines the domain entities for the surveys feature.
package entity

import "time"

// PropertyStatus describes what the surveyor observed about the property.
type PropertyStatus string

const (
	PropertyStatusOwnerChanged PropertyStatus = "owner_changed"
	PropertyStatusNewProperty  PropertyStatus = "new_property"
	PropertyStatusExtended     PropertyStatus = "extended"
	PropertyStatusDemolished   PropertyStatus = "demolished"
)

// ImageList is the ordered list of photo references (paths or URLs) attached to an entry.
// Callers always see a decoded list; the encoded column form never leaves the adapters.
type ImageList []string

// OrEmpty returns l, or an empty non-nil list when l is nil.
func (l ImageList) OrEmpty() ImageList {
	if l == nil {
		return ImageList{}
	}
	return l
}

// Fields holds the mutable part of a survey entry, i.e. everything a create or
// update payload is allowed to set.
type Fields struct {
	UID                string
	AreaCode           string
	QRPlateHouseNumber string
	OwnerNameHindi     string
	OwnerNameEnglish   string
	MobileNumber       string
	WhatsAppNumber     string

	// Latitude and Longitude are kept as decimal text so the submitted precision survives storage.
	Latitude  string
	Longitude string

	Notes          *string
	PropertyStatus *PropertyStatus
	Images         ImageList
}

// Entry is a single field-survey observation owned by the user that created it.
type Entry struct {
	ID string
	Fields
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time

	// CreatedByUsername is only populated by admin listings.
	CreatedByUsername string
}
