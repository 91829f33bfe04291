package usecase

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"survey_backend/internal/feature/surveys/domain/entity"
)

// DefaultPhoneRegion is used to interpret numbers submitted without a country code.
const DefaultPhoneRegion = "IN"

// phoneSyntax rejects letters and other characters libphonenumber would otherwise tolerate.
var phoneSyntax = regexp.MustCompile(`^\+?[0-9][0-9 ().\-]*$`)

// coordinateSyntax accepts decimals with an optional sign, a bare leading or trailing
// point ("10.", ".5") and a short exponent ("1e1").
var coordinateSyntax = regexp.MustCompile(`^[-+]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]{1,3})?$`)

// entryRules mirrors entity.Fields with the tags that gate persistence.
// The json names double as the field names reported to callers.
type entryRules struct {
	UID                string  `json:"uid" validate:"notblank,max=255"`
	AreaCode           string  `json:"areaCode" validate:"notblank,max=255"`
	QRPlateHouseNumber string  `json:"qrPlateHouseNumber" validate:"notblank,max=255"`
	OwnerNameHindi     string  `json:"ownerNameHindi" validate:"notblank,max=255"`
	OwnerNameEnglish   string  `json:"ownerNameEnglish" validate:"notblank,max=255"`
	MobileNumber       string  `json:"mobileNumber" validate:"max=32,phone"`
	WhatsAppNumber     string  `json:"whatsappNumber" validate:"max=32,phone"`
	Latitude           string  `json:"latitude" validate:"required,coordinate=90"`
	Longitude          string  `json:"longitude" validate:"required,coordinate=180"`
	PropertyStatus     *string `json:"propertyStatus" validate:"omitnil,oneof=owner_changed new_property extended demolished"`
}

var violationMessages = map[string]string{
	"uid":                "UID is required",
	"areaCode":           "Area code is required",
	"qrPlateHouseNumber": "QR plate house number is required",
	"ownerNameHindi":     "Owner name (Hindi) is required",
	"ownerNameEnglish":   "Owner name (English) is required",
	"mobileNumber":       "Valid mobile number is required",
	"whatsappNumber":     "Valid WhatsApp number is required",
	"latitude":           "Valid latitude is required",
	"longitude":          "Valid longitude is required",
	"propertyStatus":     "Property status must be one of owner_changed, new_property, extended, demolished",
}

// EntryValidator checks create and update payloads. All rules are evaluated and
// every violation is reported, not just the first one.
type EntryValidator struct {
	v *validator.Validate
}

// NewEntryValidator builds a validator. region is the ISO 3166 code used for
// phone numbers without a leading "+"; empty means DefaultPhoneRegion.
func NewEntryValidator(region string) *EntryValidator {
	if region == "" {
		region = DefaultPhoneRegion
	}
	region = strings.ToUpper(region)

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	// Registration only fails on empty tags or nil funcs.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return isPhoneNumber(fl.Field().String(), region)
	})
	_ = v.RegisterValidation("coordinate", func(fl validator.FieldLevel) bool {
		limit, err := strconv.ParseInt(fl.Param(), 10, 64)
		return err == nil && isCoordinate(fl.Field().String(), limit)
	})

	return &EntryValidator{v: v}
}

// Validate returns a *ValidationError listing every violation in f, or nil.
func (ev *EntryValidator) Validate(f entity.Fields) error {
	rules := entryRules{
		UID:                f.UID,
		AreaCode:           f.AreaCode,
		QRPlateHouseNumber: f.QRPlateHouseNumber,
		OwnerNameHindi:     f.OwnerNameHindi,
		OwnerNameEnglish:   f.OwnerNameEnglish,
		MobileNumber:       f.MobileNumber,
		WhatsAppNumber:     f.WhatsAppNumber,
		Latitude:           f.Latitude,
		Longitude:          f.Longitude,
	}
	if f.PropertyStatus != nil {
		ps := string(*f.PropertyStatus)
		rules.PropertyStatus = &ps
	}

	err := ev.v.Struct(rules)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Violations: make([]FieldViolation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		msg, ok := violationMessages[fe.Field()]
		switch {
		case fe.Tag() == "max":
			msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
		case !ok:
			msg = "failed " + fe.Tag() + " rule"
		}
		out.Violations = append(out.Violations, FieldViolation{Field: fe.Field(), Message: msg})
	}
	return out
}

func isPhoneNumber(s, region string) bool {
	if !phoneSyntax.MatchString(s) {
		return false
	}
	num, err := phonenumbers.Parse(s, region)
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}

// isCoordinate reports whether s is a decimal within [-limit, limit]. The comparison
// is exact, so 90.0000000000000000001 is out of range for a latitude.
func isCoordinate(s string, limit int64) bool {
	if !coordinateSyntax.MatchString(s) {
		return false
	}
	r, ok := new(big.Rat).SetString(normalizeCoordinate(s))
	if !ok {
		return false
	}
	return r.Abs(r).Cmp(big.NewRat(limit, 1)) <= 0
}

// normalizeCoordinate rewrites an accepted coordinate into JSON number syntax without
// losing precision: "+10." becomes "10", "-.5" becomes "-0.5" and "007.5" becomes "7.5".
func normalizeCoordinate(s string) string {
	s = strings.TrimPrefix(s, "+")
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	mantissa, exp := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa, exp = s[:i], s[i:]
	}
	whole, frac, hasPoint := strings.Cut(mantissa, ".")
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	if hasPoint && frac != "" {
		return sign + whole + "." + frac + exp
	}
	return sign + whole + exp
}
