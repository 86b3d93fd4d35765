package scan

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

var (
	idKeys     = []string{"ID", "id", "ResourceId", "resource_id"}
	reasonKeys = []string{"Reason", "reason", "Description", "description"}
	costKeys   = []string{"Cost", "cost"}
)

// Normalize converts one raw result item into a Finding. It never panics:
// anything that is not record-shaped becomes an "invalid item" finding, and
// every defaulting decision is reported as a warning.
func Normalize(raw interface{}) (Finding, []string) {
	fields, ok := asFields(raw)
	if !ok {
		invalid := Finding{ResourceID: UnknownResourceID, Reason: InvalidItemReason}
		return invalid, []string{fmt.Sprintf("malformed result item of type %T", raw)}
	}

	var warnings []string
	f := Finding{
		ResourceID: UnknownResourceID,
		Reason:     DefaultReason,
	}

	if v, ok := firstString(fields, idKeys); ok {
		f.ResourceID = v
	}
	if v, ok := firstString(fields, reasonKeys); ok {
		f.Reason = v
	}

	if key, v, ok := firstPresent(fields, costKeys); ok {
		if str, isStr := v.(string); isStr {
			v = strings.TrimSpace(str)
		}
		cost, err := cast.ToFloat64E(v)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("unparsable cost %q=%v for %s", key, v, f.ResourceID))
		case math.IsNaN(cost) || math.IsInf(cost, 0):
			warnings = append(warnings, fmt.Sprintf("non-finite cost %q=%v for %s", key, v, f.ResourceID))
		case cost < 0:
			warnings = append(warnings, fmt.Sprintf("negative cost %q=%v for %s", key, v, f.ResourceID))
		default:
			f.MonthlyCost = cost
		}
	}

	return f, warnings
}

// NormalizeAll normalizes a scanner's return value. A nil or non-list value
// yields no findings and a warning; list item order is kept.
func NormalizeAll(raw interface{}) ([]Finding, []string) {
	if raw == nil {
		return []Finding{}, []string{"scanner returned no value"}
	}

	rv := reflect.ValueOf(raw)
	if !isList(rv) {
		return []Finding{}, []string{fmt.Sprintf("scanner returned %T, expected a list", raw)}
	}

	findings := make([]Finding, 0, rv.Len())
	var warnings []string
	for i := 0; i < rv.Len(); i++ {
		f, w := Normalize(rv.Index(i).Interface())
		findings = append(findings, f)
		warnings = append(warnings, w...)
	}
	return findings, warnings
}

func isList(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return true
		}
		return rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return rv.Type().Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}

func asFields(raw interface{}) (map[string]interface{}, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case Record:
		if isNilPointer(v) {
			return nil, false
		}
		fields := v.Fields()
		return fields, fields != nil
	case map[string]interface{}:
		return v, v != nil
	case map[string]string:
		out := make(map[string]interface{}, len(v))
		for k, s := range v {
			out[k] = s
		}
		return out, true
	case string, []byte:
		return nil, false
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	if m, err := cast.ToStringMapE(raw); err == nil {
		return m, true
	}
	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
	}
	return out, true
}

func isNilPointer(v interface{}) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// firstPresent returns the first key in keys whose value is non-empty.
// Zero numbers count as empty, so {"Cost": 0, "cost": 5} costs 5.
func firstPresent(fields map[string]interface{}, keys []string) (string, interface{}, bool) {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || isEmpty(v) {
			continue
		}
		return k, v, true
	}
	return "", nil, false
}

func firstString(fields map[string]interface{}, keys []string) (string, bool) {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || isEmpty(v) {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			s = fmt.Sprint(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s, true
		}
	}
	return "", false
}

func isEmpty(v interface{}) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	}
	return false
}
