package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/VanAubrey/aws-cert-review/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// examCodePattern matches AWS certification codes such as CLF-C02 or SAA-C03.
var examCodePattern = regexp.MustCompile(`^[A-Z]{3}-[A-Z]\d{2}$`)

var (
	// trans is the singleton English translator for validation errors.
	trans ut.Translator

	standalone      *govalidator.Validate
	standaloneTrans ut.Translator
	standaloneOnce  sync.Once
)

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		trans = configure(v)
	}
}

// Struct validates v outside of a request, e.g. bank files loaded by the CLI.
// Returns nil on success or a translated field error map.
func Struct(v interface{}) map[string]string {
	standaloneOnce.Do(func() {
		standalone = govalidator.New(govalidator.WithRequiredStructEnabled())
		standaloneTrans = configure(standalone)
	})
	if err := standalone.Struct(v); err != nil {
		return translate(err, standaloneTrans)
	}
	return nil
}

// configure installs json field names, the custom rules and English
// messages on v, returning the translator bound to it.
func configure(v *govalidator.Validate) ut.Translator {
	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("exam_mode", func(fl govalidator.FieldLevel) bool {
		return model.Mode(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("exam_code", func(fl govalidator.FieldLevel) bool {
		return examCodePattern.MatchString(fl.Field().String())
	})

	// Register English translations.
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	t, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, t)
	registerMessage(v, t, "exam_mode", "{0} must be timed or untimed")
	registerMessage(v, t, "exam_code", "{0} must look like CLF-C02")
	return t
}

func registerMessage(v *govalidator.Validate, t ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, t,
		func(ut ut.Translator) error { return ut.Add(tag, text, true) },
		func(ut ut.Translator, fe govalidator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field())
			return msg
		},
	)
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	return translate(err, trans)
}

func translate(err error, t ut.Translator) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Namespace()[strings.IndexByte(fe.Namespace(), '.')+1:]] = fe.Translate(t)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
