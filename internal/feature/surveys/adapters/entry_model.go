package adapters

import (
	"time"

	authentity "survey_backend/internal/feature/auth/domain/entity"
	"survey_backend/internal/feature/surveys/domain/entity"
)

// EntryModel is the GORM model for the survey_entries table.
type EntryModel struct {
	ID                 string  `gorm:"primaryKey;size:36"`
	UID                string  `gorm:"size:255;not null"`
	AreaCode           string  `gorm:"size:255;not null"`
	QRPlateHouseNumber string  `gorm:"column:qr_plate_house_number;size:255;not null"`
	OwnerNameHindi     string  `gorm:"size:255;not null"`
	OwnerNameEnglish   string  `gorm:"size:255;not null"`
	MobileNumber       string  `gorm:"size:32;not null"`
	WhatsAppNumber     string  `gorm:"column:whatsapp_number;size:32;not null"`
	Latitude           string  `gorm:"type:text;not null"`
	Longitude          string  `gorm:"type:text;not null"`
	Notes              *string `gorm:"type:text"`
	PropertyStatus     *string `gorm:"size:32"`
	Images             *string `gorm:"type:text"` // JSON array of references

	UserID string          `gorm:"size:36;not null;index"`
	User   authentity.User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (EntryModel) TableName() string {
	return "survey_entries"
}

// ToEntity converts the GORM model to a domain entity, decoding the image list.
func (m *EntryModel) ToEntity() (*entity.Entry, error) {
	images, err := decodeImages(m.Images)
	if err != nil {
		return nil, err
	}

	e := &entity.Entry{
		ID: m.ID,
		Fields: entity.Fields{
			UID:                m.UID,
			AreaCode:           m.AreaCode,
			QRPlateHouseNumber: m.QRPlateHouseNumber,
			OwnerNameHindi:     m.OwnerNameHindi,
			OwnerNameEnglish:   m.OwnerNameEnglish,
			MobileNumber:       m.MobileNumber,
			WhatsAppNumber:     m.WhatsAppNumber,
			Latitude:           m.Latitude,
			Longitude:          m.Longitude,
			Notes:              m.Notes,
			Images:             images,
		},
		UserID:            m.UserID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		CreatedByUsername: m.User.Username,
	}
	if m.PropertyStatus != nil {
		s := entity.PropertyStatus(*m.PropertyStatus)
		e.PropertyStatus = &s
	}
	return e, nil
}

// EntryModelFromEntity converts a domain entity to a GORM model, encoding the image list.
func EntryModelFromEntity(e *entity.Entry) (*EntryModel, error) {
	images, err := encodeImages(e.Images)
	if err != nil {
		return nil, err
	}
	return &EntryModel{
		ID:                 e.ID,
		UID:                e.UID,
		AreaCode:           e.AreaCode,
		QRPlateHouseNumber: e.QRPlateHouseNumber,
		OwnerNameHindi:     e.OwnerNameHindi,
		OwnerNameEnglish:   e.OwnerNameEnglish,
		MobileNumber:       e.MobileNumber,
		WhatsAppNumber:     e.WhatsAppNumber,
		Latitude:           e.Latitude,
		Longitude:          e.Longitude,
		Notes:              e.Notes,
		PropertyStatus:     propertyStatusColumn(e.PropertyStatus),
		Images:             images,
		UserID:             e.UserID,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}, nil
}

// fieldColumns maps the mutable fields to their column values for an update.
func fieldColumns(f entity.Fields, updatedAt time.Time) (map[string]any, error) {
	images, err := encodeImages(f.Images)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"uid":                   f.UID,
		"area_code":             f.AreaCode,
		"qr_plate_house_number": f.QRPlateHouseNumber,
		"owner_name_hindi":      f.OwnerNameHindi,
		"owner_name_english":    f.OwnerNameEnglish,
		"mobile_number":         f.MobileNumber,
		"whatsapp_number":       f.WhatsAppNumber,
		"latitude":              f.Latitude,
		"longitude":             f.Longitude,
		"notes":                 f.Notes,
		"property_status":       propertyStatusColumn(f.PropertyStatus),
		"images":                images,
		"updated_at":            updatedAt,
	}, nil
}

func propertyStatusColumn(s *entity.PropertyStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
