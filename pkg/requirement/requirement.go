// Package requirement parses and renders PEP 508 dependency specifiers
// such as "build==1.0.5", "black[jupyter]>=24.1; python_version >= '3.9'"
// or "pkg @ https://example.com/pkg.whl".
//
// Only the structure needed to rewrite a version pin is modelled. Markers
// and URLs are validated for presence and kept verbatim; versions are
// checked against the PEP 440 grammar but never compared.
package requirement

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// Requirement is a parsed dependency specifier.
type Requirement struct {
	Name       string      // Project name as written (not normalized)
	Extras     []string    // Requested extras, in written order
	Specifiers []Specifier // Version constraints, in written order
	URL        string      // Direct reference after '@' (mutually exclusive with Specifiers)
	Marker     string      // Environment marker after ';', trimmed, unevaluated
}

// ParseError reports text that is not a valid requirement.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid requirement %q: %s", e.Text, e.Reason)
}

var (
	nameRE       = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?`)
	identifierRE = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?$`)
)

// Parse parses text as a PEP 508 requirement. Surrounding whitespace is
// ignored. The error is always a *ParseError.
func Parse(text string) (*Requirement, error) {
	fail := func(format string, args ...any) (*Requirement, error) {
		return nil, &ParseError{Text: text, Reason: fmt.Sprintf(format, args...)}
	}

	s := strings.TrimSpace(text)
	if s == "" {
		return fail("empty requirement")
	}

	name := nameRE.FindString(s)
	if name == "" {
		return fail("expected package name")
	}
	r := &Requirement{Name: name}
	rest := trimLeft(s[len(name):])

	if strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return fail("unclosed extras")
		}
		extras, reason := parseExtras(rest[1:end])
		if reason != "" {
			return fail("%s", reason)
		}
		r.Extras = extras
		rest = trimLeft(rest[end+1:])
	}

	if strings.HasPrefix(rest, "@") {
		rest = trimLeft(rest[1:])
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			end = len(rest)
		}
		if end == 0 {
			return fail("expected URL after '@'")
		}
		r.URL = rest[:end]
		rest = trimLeft(rest[end:])
	} else {
		specText := rest
		rest = ""
		if i := strings.IndexByte(specText, ';'); i >= 0 {
			specText, rest = specText[:i], specText[i:]
		}
		specs, reason := parseSpecifiers(specText)
		if reason != "" {
			return fail("%s", reason)
		}
		r.Specifiers = specs
	}

	if rest != "" {
		if rest[0] != ';' {
			return fail("unexpected text %q", rest)
		}
		r.Marker = strings.TrimSpace(rest[1:])
		if r.Marker == "" {
			return fail("expected marker after ';'")
		}
	}

	return r, nil
}

// Pin replaces the specifier set with a single exact-equality specifier.
func (r *Requirement) Pin(version string) {
	r.Specifiers = []Specifier{{Operator: OpEqual, Version: version}}
}

// String renders the requirement in canonical form: extras sorted and
// comma-joined, no whitespace around operators, and "; " before the marker.
func (r *Requirement) String() string {
	var b strings.Builder
	b.WriteString(r.Name)

	if len(r.Extras) > 0 {
		extras := slices.Clone(r.Extras)
		slices.Sort(extras)
		b.WriteString("[" + strings.Join(extras, ",") + "]")
	}

	for i, spec := range r.Specifiers {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(spec.String())
	}

	if r.URL != "" {
		b.WriteString(" @ " + r.URL)
		if r.Marker != "" {
			b.WriteByte(' ')
		}
	}

	if r.Marker != "" {
		b.WriteString("; " + r.Marker)
	}
	return b.String()
}

func parseExtras(s string) ([]string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ""
	}
	var extras []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if !identifierRE.MatchString(item) {
			return nil, fmt.Sprintf("invalid extra %q", item)
		}
		extras = append(extras, item)
	}
	return extras, ""
}

func trimLeft(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}
