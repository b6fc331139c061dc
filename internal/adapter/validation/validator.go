package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"securetodo/internal/core/domain"
	"securetodo/internal/core/port"
)

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func NewValidator() (port.Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)

	translator, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("translator en not found")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, err
	}

	if err := validate.RegisterValidation("notblank", notBlank); err != nil {
		return nil, err
	}

	v := &Validator{validate: validate, translator: translator}
	if err := v.addCustomTranslations(); err != nil {
		return nil, err
	}

	return v, nil
}

// MustNewValidator panics when the translations cannot be registered.
func MustNewValidator() port.Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}

	return v
}

func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return domain.Validation(err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, fieldError.Translate(v.translator))
	}

	return &domain.Error{Kind: domain.KindValidation, Message: strings.Join(messages, "; "), Err: err}
}

func (v *Validator) addCustomTranslations() error {
	register := func(tag, text string) error {
		return v.validate.RegisterTranslation(tag, v.translator, func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field(), fe.Param())
			return t
		})
	}

	if err := register("required", "{0} is required"); err != nil {
		return err
	}
	return register("notblank", "{0} is required")
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()

	if field.Kind() == reflect.String {
		return strings.TrimSpace(field.String()) != ""
	}

	return !field.IsZero()
}
