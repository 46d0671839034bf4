package analysis

import (
	"fmt"
	"math"
	"strconv"
)

// Validate checks obj against s. Every missing field is reported, then
// type and range issues, then percentage-group sums. Unknown keys are ignored.
func Validate(obj map[string]any, s *Schema) error {
	v := &validator{}
	v.object("", obj, s)
	invalid := append(v.invalid, v.groups...)
	if len(v.missing) == 0 && len(invalid) == 0 {
		return nil
	}
	return &ValidationError{MissingFields: v.missing, InvalidFields: invalid}
}

type validator struct {
	missing []string
	invalid []FieldIssue
	groups  []FieldIssue
}

func (v *validator) object(prefix string, obj map[string]any, s *Schema) {
	if s == nil {
		return
	}
	for _, f := range s.Fields {
		path := join(prefix, f.Name)
		val, ok := obj[f.Name]
		if !ok || val == nil {
			if !f.Optional {
				v.missing = append(v.missing, path)
			}
			continue
		}
		v.field(path, f, val)
	}
	for _, g := range s.Groups {
		v.group(prefix, obj, g)
	}
}

func (v *validator) field(path string, f Field, val any) {
	switch f.Type {
	case TypeNumber:
		n, ok := val.(float64)
		if !ok {
			v.issue(path, "must be a number")
			return
		}
		if f.Integer && n != math.Trunc(n) {
			v.issue(path, "must be an integer")
		}
		if f.Range != nil && (n < f.Range.Min || n > f.Range.Max) {
			v.issue(path, fmt.Sprintf("must be between %s and %s", trimFloat(f.Range.Min), trimFloat(f.Range.Max)))
		}
	case TypeBoolean:
		if _, ok := val.(bool); !ok {
			v.issue(path, "must be a boolean")
		}
	case TypeString:
		if _, ok := val.(string); !ok {
			v.issue(path, "must be a string")
		}
	case TypeStringArray:
		items, ok := val.([]any)
		if !ok {
			v.issue(path, "must be an array of strings")
			return
		}
		for i, item := range items {
			if _, ok := item.(string); !ok {
				v.issue(fmt.Sprintf("%s[%d]", path, i), "must be a string")
			}
		}
	case TypeObject:
		obj, ok := val.(map[string]any)
		if !ok {
			v.issue(path, "must be an object")
			return
		}
		v.object(path, obj, f.Schema)
	case TypeObjectArray:
		items, ok := val.([]any)
		if !ok {
			v.issue(path, "must be an array of objects")
			return
		}
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			obj, ok := item.(map[string]any)
			if !ok {
				v.issue(itemPath, "must be an object")
				continue
			}
			v.object(itemPath, obj, f.Schema)
		}
	}
}

// group only sums members that are present integer numbers; other member
// problems are already reported by field checks.
func (v *validator) group(prefix string, obj map[string]any, g PercentageGroup) {
	sum := 0.0
	for _, m := range g.Members {
		n, ok := obj[m].(float64)
		if !ok || n != math.Trunc(n) {
			return
		}
		sum += n
	}
	tol := float64(g.Tolerance)
	if math.Abs(sum-100) > tol {
		name := prefix
		if name == "" {
			name = "(root)"
		}
		v.groups = append(v.groups, FieldIssue{
			Field: name,
			Issue: fmt.Sprintf("percentages must sum to 100, got %s", trimFloat(sum)),
		})
	}
}

func (v *validator) issue(path, msg string) {
	v.invalid = append(v.invalid, FieldIssue{Field: path, Issue: msg})
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
