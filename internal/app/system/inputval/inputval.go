// Package inputval validates decoded request bodies using waffle/pantry/validate.
//
// Define a request struct with validate tags, decode the JSON body into it,
// and call Validate. Fields reports the failures keyed by JSON field name,
// ready for jsonutil.ValidationError.
//
// Example:
//
//	type createRequest struct {
//	    Name    string `json:"name" validate:"required,max=120" label:"Name"`
//	    Feature string `json:"feature" validate:"required,oneof=library discover" label:"Feature"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    jsonutil.ValidationError(w, res.Fields())
//	    return
//	}
package inputval

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/dalemusser/waffle/pantry/validate"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxVideoIDLength bounds the opaque backend video IDs a viewer may submit.
const MaxVideoIDLength = 256

// FieldError is one failed rule, keyed by the JSON field name.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

// Result collects the failures of one Validate call, in field order.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) != 0 }

// First is the first failure message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	var b strings.Builder
	for i, e := range r.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Message)
	}
	return b.String()
}

// Fields maps each failing field to its first message, the shape
// jsonutil.ValidationError expects.
func (r *Result) Fields() map[string]string {
	out := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, dup := out[e.Field]; !dup {
			out[e.Field] = e.Message
		}
	}
	return out
}

var rules = []struct {
	name  string
	check func(string) bool
	text  string
}{
	{"httpurl", IsValidHTTPURL, "must be a valid URL starting with http:// or https://"},
	{"objectid", IsValidObjectID, "is not a valid ID"},
	{"videoid", IsValidVideoID, "must be a video ID of at most " + strconv.Itoa(MaxVideoIDLength) + " characters"},
	{"querystring", IsValidQuery, "is not a valid query string"},
}

var validator = sync.OnceValue(func() *validate.Validator {
	v := validate.New(validate.WithStopOnFirstError())
	for _, r := range rules {
		check := r.check
		v.RegisterRuleFunc(r.name, func(value any) bool {
			s, ok := value.(string)
			return ok && check(s)
		}, r.name)
	}
	return v
})

// Validate checks s against its `validate` tags. `label` tags name fields in
// messages; fields without one use the JSON name.
//
// Besides the pantry/validate built-ins (required, oneof, min, max) the tags
// may use httpurl, objectid, videoid and querystring.
func Validate(s any) *Result {
	res := &Result{}
	errs, ok := validator().Struct(s).(validate.Errors)
	if !ok {
		return res
	}

	labels := labelsOf(s)
	for _, e := range errs {
		label := labels[e.Field]
		if label == "" {
			label = e.Field
		}
		res.Errors = append(res.Errors, FieldError{
			Field:   e.Field,
			Label:   label,
			Message: label + " " + describe(e.Rule, e.Param) + ".",
		})
	}
	return res
}

// labelsOf reads `label` tags keyed the way pantry/validate names fields.
func labelsOf(s any) map[string]string {
	labels := map[string]string{}
	t := reflect.TypeOf(s)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return labels
	}
	for _, f := range reflect.VisibleFields(t) {
		label := f.Tag.Get("label")
		if label == "" {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			name = f.Name
		}
		labels[name] = label
	}
	return labels
}

func describe(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "oneof", "enum":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	}
	for _, r := range rules {
		if r.name == rule {
			return r.text
		}
	}
	return "is invalid"
}

// IsValidHTTPURL reports whether s is an absolute http or https URL with a host.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID reports whether s is a hex MongoDB ObjectID.
func IsValidObjectID(s string) bool {
	_, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return err == nil
}

// IsValidVideoID reports whether s is a non-blank ID within MaxVideoIDLength.
func IsValidVideoID(s string) bool {
	return strings.TrimSpace(s) != "" && len(s) <= MaxVideoIDLength
}

// IsValidQuery reports whether s parses as a URL query string.
func IsValidQuery(s string) bool {
	_, err := url.ParseQuery(s)
	return err == nil
}
