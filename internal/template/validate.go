package template

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	bracedRe = regexp.MustCompile(`\{\{([^{}]*)\}\}`)
	wordRe   = regexp.MustCompile(`^\w+$`)
)

// Warning describes a template problem that does not stop rendering
type Warning struct {
	Offset  int
	Message string
}

func (w Warning) String() string {
	if w.Offset < 0 {
		return w.Message
	}
	return fmt.Sprintf("offset %d: %s", w.Offset, w.Message)
}

// Validate reports unbalanced braces and placeholders that Render will not resolve
// because their identifier contains non-word characters
func Validate(tmpl string) []Warning {
	var warnings []Warning

	opens := strings.Count(tmpl, "{{")
	closes := strings.Count(tmpl, "}}")
	if opens != closes {
		warnings = append(warnings, Warning{
			Offset:  -1,
			Message: fmt.Sprintf("unbalanced placeholders: %d '{{' vs %d '}}'", opens, closes),
		})
	}

	for _, loc := range bracedRe.FindAllStringSubmatchIndex(tmpl, -1) {
		ident := tmpl[loc[2]:loc[3]]
		if wordRe.MatchString(ident) {
			continue
		}
		warnings = append(warnings, Warning{
			Offset:  loc[0],
			Message: fmt.Sprintf("placeholder %q contains non-word characters", tmpl[loc[0]:loc[1]]),
		})
	}

	return warnings
}
