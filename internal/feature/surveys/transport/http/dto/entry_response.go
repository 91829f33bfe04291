package dto

import (
	"encoding/json"
	"time"

	"survey_backend/internal/feature/surveys/domain/entity"
)

// EntryRes is the JSON form of a survey entry.
type EntryRes struct {
	ID                 string      `json:"id"`
	UID                string      `json:"uid"`
	AreaCode           string      `json:"areaCode"`
	QRPlateHouseNumber string      `json:"qrPlateHouseNumber"`
	OwnerNameHindi     string      `json:"ownerNameHindi"`
	OwnerNameEnglish   string      `json:"ownerNameEnglish"`
	MobileNumber       string      `json:"mobileNumber"`
	WhatsAppNumber     string      `json:"whatsappNumber"`
	Latitude           json.Number `json:"latitude"`
	Longitude          json.Number `json:"longitude"`
	Notes              *string     `json:"notes"`
	PropertyStatus     *string     `json:"propertyStatus"`
	Images             []string    `json:"images"`
	UserID             string      `json:"userId"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
	CreatedByUsername  string      `json:"createdByUsername,omitempty"`
}

// NewEntryRes converts a domain entry into its response form.
func NewEntryRes(e *entity.Entry) EntryRes {
	res := EntryRes{
		ID:                 e.ID,
		UID:                e.UID,
		AreaCode:           e.AreaCode,
		QRPlateHouseNumber: e.QRPlateHouseNumber,
		OwnerNameHindi:     e.OwnerNameHindi,
		OwnerNameEnglish:   e.OwnerNameEnglish,
		MobileNumber:       e.MobileNumber,
		WhatsAppNumber:     e.WhatsAppNumber,
		Latitude:           json.Number(e.Latitude),
		Longitude:          json.Number(e.Longitude),
		Notes:              e.Notes,
		Images:             e.Images.OrEmpty(),
		UserID:             e.UserID,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
		CreatedByUsername:  e.CreatedByUsername,
	}
	if e.PropertyStatus != nil {
		s := string(*e.PropertyStatus)
		res.PropertyStatus = &s
	}
	return res
}

// NewEntryListRes converts entries, always yielding a non-nil slice.
func NewEntryListRes(entries []entity.Entry) []EntryRes {
	out := make([]EntryRes, 0, len(entries))
	for i := range entries {
		out = append(out, NewEntryRes(&entries[i]))
	}
	return out
}

// FieldErrorRes is one rejected field.
type FieldErrorRes struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorRes is the 400 body listing every rejected field.
type ValidationErrorRes struct {
	Errors []FieldErrorRes `json:"errors"`
}

// ErrorRes is the generic error body.
type ErrorRes struct {
	Error string `json:"error"`
}

// MessageRes is a plain confirmation body.
type MessageRes struct {
	Message string `json:"message"`
}
