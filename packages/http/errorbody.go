package http

import (
	"github.com/tidwall/gjson"
)

// ErrorBody is the decoded form of a failed response body.
type ErrorBody struct {
	Message    string
	Details    []string
	ModelState map[string][]string
}

// DecodeErrorBody extracts the error message, details and model state from a
// failed response body.
//
// The message is taken from the first of these that is present: a JSON
// "errorMessage" field, a JSON "message" field, the raw body text. Bodies that
// are not valid JSON go straight to the raw text.
func DecodeErrorBody(body []byte) ErrorBody {
	eb := ErrorBody{
		Details:    []string{},
		ModelState: map[string][]string{},
	}
	if len(body) == 0 {
		return eb
	}
	if !gjson.ValidBytes(body) {
		eb.Message = string(body)
		return eb
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		eb.Message = string(body)
		return eb
	}

	switch {
	case truthy(doc.Get("errorMessage")):
		eb.Message = doc.Get("errorMessage").String()
	case truthy(doc.Get("message")):
		eb.Message = doc.Get("message").String()
	default:
		eb.Message = string(body)
	}

	if details := doc.Get("errorDetails"); details.IsArray() {
		details.ForEach(func(_, item gjson.Result) bool {
			eb.Details = append(eb.Details, item.String())
			return true
		})
	}

	if state := doc.Get("modelState"); state.IsObject() {
		state.ForEach(func(key, value gjson.Result) bool {
			var errs []string
			if value.IsArray() {
				value.ForEach(func(_, item gjson.Result) bool {
					errs = append(errs, item.String())
					return true
				})
			} else {
				errs = append(errs, value.String())
			}
			eb.ModelState[key.String()] = errs
			return true
		})
	}

	return eb
}

// truthy reports whether r holds a value JavaScript would treat as true.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.True, gjson.JSON:
		return true
	}
	return false
}
