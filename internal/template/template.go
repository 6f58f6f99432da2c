// Package template substitutes {{name}} placeholders from layered variable scopes.
package template

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/spf13/cast"
)

// DateLayout is how dates render inside templates and SQL fragments
const DateLayout = "2006-01-02"

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Scope maps placeholder names to values
type Scope map[string]any

// Merge overlays scopes in increasing priority; a later scope's key wins
func Merge(scopes ...Scope) Scope {
	merged := make(Scope)
	for _, s := range scopes {
		for k, v := range s {
			merged[k] = v
		}
	}
	return merged
}

// Render replaces every {{identifier}} found in the merged scopes.
// Unresolved placeholders are left as they are. Substituted text is never rescanned.
func Render(tmpl string, scopes ...Scope) string {
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	vars := Merge(scopes...)

	return placeholderRe.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := m[2 : len(m)-2]
		v, ok := vars[name]
		if !ok {
			return m
		}
		return Stringify(v)
	})
}

// Placeholders returns the distinct identifiers used in tmpl, in order of first appearance
func Placeholders(tmpl string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// SystemScope returns the lowest-priority values derived from now
func SystemScope(now time.Time) Scope {
	return Scope{
		"today":         now.Format(DateLayout),
		"current_date":  now.Format(DateLayout),
		"yesterday":     now.AddDate(0, 0, -1).Format(DateLayout),
		"tomorrow":      now.AddDate(0, 0, 1).Format(DateLayout),
		"now":           now.Format(time.RFC3339),
		"current_time":  now.Format("15:04:05"),
		"current_year":  now.Year(),
		"current_month": fmt.Sprintf("%02d", int(now.Month())),
		"current_day":   fmt.Sprintf("%02d", now.Day()),
	}
}

// Layered builds the standard scope order: system, then dashboard, then local block values
func Layered(now time.Time, dashboard, local models.Variables) []Scope {
	return []Scope{SystemScope(now), Scope(dashboard), Scope(local)}
}

// Stringify converts a scope value into template text
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(DateLayout)
	case *time.Time:
		if val == nil {
			return ""
		}
		return val.Format(DateLayout)
	}

	if items, ok := models.AsSlice(v); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	}

	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	return fmt.Sprint(v)
}
