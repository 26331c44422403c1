package schemas

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// FieldErrors flattens validator errors into field/rule pairs using the JSON
// field names. Errors of other types yield nil.
func FieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field: jsonName(fe),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}

// IsMissingField reports whether any rule that failed was "required".
func IsMissingField(err error) bool {
	for _, fe := range FieldErrors(err) {
		if fe.Rule == "required" || (fe.Rule == "min" && fe.Field == "genres") {
			return true
		}
	}
	return false
}

// jsonName turns the struct namespace ("BookPublish.Genres[0]") into the
// lower-case JSON path ("genres[0]").
func jsonName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}
