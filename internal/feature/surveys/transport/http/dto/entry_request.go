// Package dto defines data transfer objects for the surveys feature's HTTP transport layer.
package dto

import (
	"bytes"
	"encoding/json"

	"survey_backend/internal/feature/surveys/domain/entity"
)

// Coordinate accepts a latitude or longitude sent either as a JSON number or as a
// string and keeps the submitted text verbatim. Range checks happen in the usecase.
type Coordinate string

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coordinate) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*c = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Coordinate(s)
	default:
		*c = Coordinate(b)
	}
	return nil
}

// EntryReq is the request body for POST /api/surveys and PUT /api/surveys/:id.
// Fields carry no binding tags; the usecase validator reports every violation at once.
// A field of the wrong JSON type is recorded in TypeErrors instead of failing the decode.
type EntryReq struct {
	UID                string     `json:"uid"`
	AreaCode           string     `json:"areaCode"`
	QRPlateHouseNumber string     `json:"qrPlateHouseNumber"`
	OwnerNameHindi     string     `json:"ownerNameHindi"`
	OwnerNameEnglish   string     `json:"ownerNameEnglish"`
	MobileNumber       string     `json:"mobileNumber"`
	WhatsAppNumber     string     `json:"whatsappNumber"`
	Latitude           Coordinate `json:"latitude"`
	Longitude          Coordinate `json:"longitude"`
	Notes              *string    `json:"notes"`
	PropertyStatus     *string    `json:"propertyStatus"`
	Images             []string   `json:"images"`

	typeErrors []FieldErrorRes
}

// UnmarshalJSON decodes each known field on its own so one mistyped field does not
// hide the others. Only a body that is not a JSON object is an error.
func (r *EntryReq) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*r = EntryReq{}
	fields := []struct {
		name string
		dst  any
	}{
		{"uid", &r.UID},
		{"areaCode", &r.AreaCode},
		{"qrPlateHouseNumber", &r.QRPlateHouseNumber},
		{"ownerNameHindi", &r.OwnerNameHindi},
		{"ownerNameEnglish", &r.OwnerNameEnglish},
		{"mobileNumber", &r.MobileNumber},
		{"whatsappNumber", &r.WhatsAppNumber},
		{"latitude", &r.Latitude},
		{"longitude", &r.Longitude},
		{"notes", &r.Notes},
		{"propertyStatus", &r.PropertyStatus},
		{"images", &r.Images},
	}
	for _, f := range fields {
		v, ok := raw[f.name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			r.typeErrors = append(r.typeErrors, FieldErrorRes{Field: f.name, Message: typeMessage(f.name)})
		}
	}
	return nil
}

// TypeErrors lists the fields whose JSON type did not match.
func (r *EntryReq) TypeErrors() []FieldErrorRes {
	return r.typeErrors
}

func typeMessage(field string) string {
	if field == "images" {
		return "Images must be an array of strings"
	}
	return field + " has an invalid type"
}

// ToFields converts the request into the domain's mutable field set.
func (r EntryReq) ToFields() entity.Fields {
	f := entity.Fields{
		UID:                r.UID,
		AreaCode:           r.AreaCode,
		QRPlateHouseNumber: r.QRPlateHouseNumber,
		OwnerNameHindi:     r.OwnerNameHindi,
		OwnerNameEnglish:   r.OwnerNameEnglish,
		MobileNumber:       r.MobileNumber,
		WhatsAppNumber:     r.WhatsAppNumber,
		Latitude:           string(r.Latitude),
		Longitude:          string(r.Longitude),
		Notes:              r.Notes,
		Images:             entity.ImageList(r.Images),
	}
	if r.PropertyStatus != nil {
		s := entity.PropertyStatus(*r.PropertyStatus)
		f.PropertyStatus = &s
	}
	return f
}
