// Package validate provides declarative struct-tag validation for the
// User and Card document schemas.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty, skip all remaining rules for this field
//	email               valid email address
//	url                 valid URL (http or https scheme)
//	boolean             "true","false","1","0" (or an actual bool)
//	numeric             value must be a number
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	between=N,M         min and max combined
//	in=a,b,c            value must be one of the listed items
//
// Nested documents (name, address, image) are validated recursively;
// their violations are reported under dotted field names such as
// "name.first" or "address.zip". A `required` tag on a pointer to a
// nested struct rejects a missing sub-document outright.
//
// All violations for a payload are collected in a single pass, in field
// declaration order. Callers surface Errors.First() to the client.
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Errors holds field-level violations in declaration order.
type Errors struct {
	order []string
	msgs  map[string]string
}

// Any reports whether at least one violation was recorded.
func (e *Errors) Any() bool { return e != nil && len(e.order) > 0 }

// First returns the message of the first violation, or "".
func (e *Errors) First() string {
	if !e.Any() {
		return ""
	}
	return e.msgs[e.order[0]]
}

// Get returns the message recorded for field, or "".
func (e *Errors) Get(field string) string {
	if e == nil {
		return ""
	}
	return e.msgs[field]
}

// Fields returns all violations keyed by dotted field name.
func (e *Errors) Fields() map[string]string {
	if e == nil {
		return map[string]string{}
	}
	return e.msgs
}

func (e *Errors) add(field, msg string) {
	if _, dup := e.msgs[field]; dup {
		return
	}
	e.order = append(e.order, field)
	e.msgs[field] = msg
}

// Struct validates all exported fields of v that carry a `validate` tag,
// recursing into nested structs. v may be a struct or pointer to struct.
func Struct(v interface{}) *Errors {
	errs := &Errors{msgs: make(map[string]string)}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		walkStruct(rv, "", errs)
	}
	return errs
}

func walkStruct(rv reflect.Value, prefix string, errs *Errors) {
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		value := rv.Field(i)
		if !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		if prefix != "" {
			name = prefix + "." + name
		}
		rules := splitRules(field.Tag.Get("validate"))

		// Nested document: *struct or struct (time.Time excluded).
		if sub, ok := nestedStruct(value); ok {
			if !sub.IsValid() {
				// nil pointer — only `required` can fire.
				if hasRule(rules, "required") {
					errs.add(name, fmt.Sprintf("The %s field is required.", name))
				}
				continue
			}
			walkStruct(sub, name, errs)
			continue
		}

		if len(rules) == 0 {
			continue
		}
		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs.add(name, msg)
				break // first failing rule per field
			}
		}
	}
}

// nestedStruct returns the struct value behind v when v is a struct or a
// pointer to one. A nil pointer yields (invalid, true).
func nestedStruct(v reflect.Value) (reflect.Value, bool) {
	switch v.Kind() {
	case reflect.Struct:
		if v.Type().PkgPath() == "time" {
			return reflect.Value{}, false
		}
		return v, true
	case reflect.Ptr:
		if v.Type().Elem().Kind() != reflect.Struct {
			return reflect.Value{}, false
		}
		if v.IsNil() {
			return reflect.Value{}, true
		}
		return v.Elem(), true
	}
	return reflect.Value{}, false
}

// ─── Rule dispatcher ──────────────────────────────────────────────────────────

func applyRule(rule, field string, v reflect.Value) string {
	raw := fmt.Sprintf("%v", v.Interface())
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}

	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}

	case "url":
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}

	case "boolean":
		lower := strings.ToLower(raw)
		if v.Kind() != reflect.Bool && lower != "true" && lower != "false" && lower != "1" && lower != "0" {
			return fmt.Sprintf("The %s field must be true or false.", field)
		}

	case "min":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) < n {
				return fmt.Sprintf("The %s must be at least %s.", field, param)
			}
		} else if float64(len([]rune(raw))) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}

	case "max":
		n := mustParseFloat(param)
		if isNumericKind(v) {
			if toFloat(v) > n {
				return fmt.Sprintf("The %s must not be greater than %s.", field, param)
			}
		} else if float64(len([]rune(raw))) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}

	case "numeric":
		if !isNumericKind(v) {
			if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
				return fmt.Sprintf("The %s must be a number.", field)
			}
		}

	case "between":
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			return ""
		}
		low, high := mustParseFloat(lo), mustParseFloat(hi)
		if isNumericKind(v) {
			if f := toFloat(v); f < low || f > high {
				return fmt.Sprintf("The %s must be between %s and %s.", field, strings.TrimSpace(lo), strings.TrimSpace(hi))
			}
		} else if n := float64(len([]rune(raw))); n < low || n > high {
			return fmt.Sprintf("The %s must be between %s and %s characters.", field, strings.TrimSpace(lo), strings.TrimSpace(hi))
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	}

	return ""
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false // false is a valid boolean value, not empty
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprintf("%v", v.Interface()), 64)
	return f
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

// splitRules splits the validate tag by comma while keeping multi-value
// `in=` parameters intact.
// e.g. "required,in=admin,user,max=100" → ["required","in=admin,user","max=100"]
func splitRules(tag string) []string {
	if tag == "" {
		return nil
	}

	var rules []string
	var current strings.Builder
	inParam := false

	for i := 0; i < len(tag); i++ {
		ch := tag[i]
		if ch == ',' {
			if inParam && !looksLikeNewRule(tag[i+1:]) {
				current.WriteByte(ch)
				continue
			}
			rules = append(rules, current.String())
			current.Reset()
			inParam = false
			continue
		}
		current.WriteByte(ch)
		if !inParam {
			s := current.String()
			if strings.HasSuffix(s, "in=") || strings.HasSuffix(s, "between=") {
				inParam = true
			}
		}
	}
	if current.Len() > 0 {
		rules = append(rules, current.String())
	}
	return rules
}

func looksLikeNewRule(s string) bool {
	known := []string{
		"required", "nullable", "email", "url", "boolean", "numeric",
		"min=", "max=", "in=", "between=",
	}
	for _, k := range known {
		if strings.HasPrefix(s, k) {
			return true
		}
	}
	return false
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
