package httpx

import (
	"fmt"
	"mime"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("decklist_ext", validateDecklistExt)
	validate.RegisterValidation("plain_text", validatePlainText)
}

// validateDecklistExt accepts file names without extension or ending in .txt.
func validateDecklistExt(fl validator.FieldLevel) bool {
	ext := strings.ToLower(filepath.Ext(fl.Field().String()))
	return ext == "" || ext == ".txt"
}

func validatePlainText(fl validator.FieldLevel) bool {
	mediaType, _, err := mime.ParseMediaType(fl.Field().String())
	return err == nil && mediaType == "text/plain"
}

// ValidateStruct checks s against its validate tags.
func ValidateStruct(s interface{}) []ErrorDetail {
	return details(validate.Struct(s), "")
}

// ValidateVar checks a single value against tag, reporting failures under field.
func ValidateVar(field string, v interface{}, tag string) []ErrorDetail {
	return details(validate.Var(v, tag), field)
}

func details(err error, field string) []ErrorDetail {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ErrorDetail{{Field: field, Message: err.Error()}}
	}

	var out []ErrorDetail
	for _, fe := range verrs {
		name := field
		if name == "" {
			name = fe.Field()
		}
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", name)
		case "min", "gte":
			message = fmt.Sprintf("%s must be at least %s", name, param)
		case "max", "lte":
			message = fmt.Sprintf("%s must be at most %s", name, param)
		case "oneof":
			message = fmt.Sprintf("%s must be one of %s", name, param)
		case "decklist_ext":
			message = fmt.Sprintf("%s must have no extension or .txt", name)
		case "plain_text":
			message = fmt.Sprintf("%s must be text/plain", name)
		default:
			message = fmt.Sprintf("%s is invalid", name)
		}

		out = append(out, ErrorDetail{Field: name, Message: message})
	}
	return out
}
