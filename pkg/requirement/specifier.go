package requirement

import (
	"fmt"
	"regexp"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// Comparison operators, per PEP 440.
const (
	OpCompatible = "~="
	OpEqual      = "=="
	OpNotEqual   = "!="
	OpLessEq     = "<="
	OpGreaterEq  = ">="
	OpLess       = "<"
	OpGreater    = ">"
	OpArbitrary  = "==="
)

// Longest tokens first so that "===" is not read as "==" followed by "=".
var operators = []string{OpArbitrary, OpCompatible, OpEqual, OpNotEqual, OpLessEq, OpGreaterEq, OpLess, OpGreater}

// Specifier is a single (operator, version) constraint. The version is an
// opaque token.
type Specifier struct {
	Operator string
	Version  string
}

func (s Specifier) String() string { return s.Operator + s.Version }

var arbitraryRE = regexp.MustCompile(`^[^\s;,()]+$`)

func parseSpecifiers(s string) ([]Specifier, string) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") {
		if !strings.HasSuffix(s, ")") {
			return nil, "unclosed '(' in version specifier"
		}
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" {
		return nil, ""
	}

	var specs []Specifier
	for _, item := range strings.Split(s, ",") {
		spec, reason := parseSpecifier(strings.TrimSpace(item))
		if reason != "" {
			return nil, reason
		}
		specs = append(specs, spec)
	}
	return specs, ""
}

func parseSpecifier(s string) (Specifier, string) {
	if s == "" {
		return Specifier{}, "empty version specifier"
	}

	var op string
	for _, candidate := range operators {
		if strings.HasPrefix(s, candidate) {
			op = candidate
			break
		}
	}
	if op == "" {
		return Specifier{}, fmt.Sprintf("expected version operator in %q", s)
	}

	version := strings.TrimSpace(s[len(op):])
	if !validVersion(op, version) {
		return Specifier{}, fmt.Sprintf("invalid version %q for operator %s", version, op)
	}
	return Specifier{Operator: op, Version: version}, ""
}

func validVersion(op, version string) bool {
	switch op {
	case OpArbitrary:
		return arbitraryRE.MatchString(version)
	case OpEqual, OpNotEqual:
		if prefix, ok := strings.CutSuffix(version, ".*"); ok {
			release, rest := splitRelease(prefix)
			return release != "" && rest == ""
		}
		_, err := pep440.Parse(version)
		return err == nil
	}

	// Ordered and compatible comparisons take public versions only.
	if strings.Contains(version, "+") {
		return false
	}
	if _, err := pep440.Parse(version); err != nil {
		return false
	}
	if op == OpCompatible {
		release, _ := splitRelease(version)
		return strings.Contains(release, ".")
	}
	return true
}

// splitRelease returns the dotted release segment of version, without a
// leading "v" or epoch, and whatever follows it.
func splitRelease(version string) (release, rest string) {
	v := strings.TrimPrefix(strings.TrimPrefix(version, "v"), "V")
	if i := strings.IndexByte(v, '!'); i >= 0 {
		v = v[i+1:]
	}
	end := strings.IndexFunc(v, func(r rune) bool { return r != '.' && (r < '0' || r > '9') })
	if end < 0 {
		end = len(v)
	}
	release, rest = v[:end], v[end:]
	for strings.HasSuffix(release, ".") {
		release = release[:len(release)-1]
		rest = "." + rest
	}
	return release, rest
}
