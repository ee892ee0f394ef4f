package utils

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	log "github.com/sirupsen/logrus"
	"github.com/truemail-rb/truemail-go"
)

// verifierEmail identifies this service in MX/SMTP conversations; truemail
// refuses to build a configuration without one.
const verifierEmail = "noreply@camphub.dev"

// Validator bundles struct validation, payload sanitation and an optional
// deliverability check for email addresses.
type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool

	policy *bluemonday.Policy
}

var (
	instance      *Validator
	once          sync.Once
	configuration *truemail.Configuration
)

// GetValidator returns the shared validator instance.
func GetValidator() *Validator {
	once.Do(func() {
		var err error
		configuration, err = truemail.NewConfiguration(truemail.ConfigurationAttr{
			VerifierEmail:         verifierEmail,
			ValidationTypeDefault: "mx",
			SmtpFailFast:          true,
		})
		if err != nil {
			log.Errorf("Error configuring email verification, deliverability checks disabled: %v", err)
		}

		instance = &Validator{
			Validate:    validator.New(validator.WithRequiredStructEnabled()),
			VerifyEmail: verifyEmail,
			policy:      bluemonday.StrictPolicy(),
		}
	})

	return instance
}

func verifyEmail(email string) bool {
	if configuration == nil {
		return true
	}
	return truemail.IsValid(email, configuration)
}

// SanitizeStruct strips markup from every exported string field of the
// given struct pointer, including nested structs and string slices.
func (v *Validator) SanitizeStruct(obj interface{}) {
	value := reflect.ValueOf(obj)
	if value.Kind() != reflect.Pointer || value.IsNil() {
		return
	}
	v.sanitizeValue(value.Elem())
}

func (v *Validator) sanitizeValue(value reflect.Value) {
	switch value.Kind() {
	case reflect.String:
		if value.CanSet() {
			value.SetString(v.policy.Sanitize(value.String()))
		}
	case reflect.Struct:
		for i := 0; i < value.NumField(); i++ {
			v.sanitizeValue(value.Field(i))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			v.sanitizeValue(value.Index(i))
		}
	case reflect.Pointer:
		if !value.IsNil() {
			v.sanitizeValue(value.Elem())
		}
	}
}
