// Package bump decides whether a single requirement string can be moved to
// the latest published version, and produces the rewritten text.
//
// A [Bumper] evaluates a fixed decision table per requirement:
//
//  1. Comment lines (leading '#') are skipped without a lookup.
//  2. Text that is not a valid requirement is reported and kept.
//  3. Packages the registry does not know are reported and kept.
//  4. Anything but a single "==" specifier, after dropping repeats, is
//     reported and kept.
//  5. Pins already at the latest version are reported and kept.
//  6. Everything else is rewritten to "==<latest>".
//
// Every decision is passed to a [Reporter] before Bump returns.
package bump

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/pinbump/pkg/requirement"
)

// VersionSource reports the latest published version of a package.
// ok is false when the package is unknown; err is reserved for failures
// that should abort the run. *pypi.Client implements it.
type VersionSource interface {
	LatestVersion(ctx context.Context, name string) (version string, ok bool, err error)
}

// Reporter receives every decision made by a [Bumper].
type Reporter interface {
	Report(Result)
}

// ReporterFunc adapts a function to the [Reporter] interface.
type ReporterFunc func(Result)

// Report calls f(r).
func (f ReporterFunc) Report(r Result) { f(r) }

// Outcome classifies what happened to a requirement.
type Outcome int

const (
	Skipped       Outcome = iota // comment line, no lookup
	Invalid                      // not a valid requirement
	Unknown                      // registry has no version for it
	Ambiguous                    // zero or several specifiers
	WrongOperator                // single specifier that is not "=="
	Current                      // already pinned to the latest version
	Bumped                       // rewritten to the latest version
)

var outcomeNames = [...]string{
	Skipped:       "skipped",
	Invalid:       "invalid",
	Unknown:       "unknown",
	Ambiguous:     "ambiguous",
	WrongOperator: "wrong-operator",
	Current:       "current",
	Bumped:        "bumped",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "outcome(" + strconv.Itoa(int(o)) + ")"
	}
	return outcomeNames[o]
}

// Result describes one requirement decision.
type Result struct {
	Input   string  // Text as given to Bump
	Output  string  // Text to write back; equals Input unless Outcome is Bumped
	Outcome Outcome // Which branch of the decision table applied
	Name    string  // Parsed project name; empty for Skipped and Invalid
	From    string  // Version of the single specifier, when there is one
	Latest  string  // Registry version; empty for Skipped, Invalid and Unknown
}

// Changed reports whether Output differs from Input.
func (r Result) Changed() bool { return r.Output != r.Input }

// Bumper applies the decision table against a [VersionSource].
type Bumper struct {
	source   VersionSource
	reporter Reporter
}

// New returns a Bumper. A nil reporter discards results.
func New(source VersionSource, reporter Reporter) *Bumper {
	if reporter == nil {
		reporter = ReporterFunc(func(Result) {})
	}
	return &Bumper{source: source, reporter: reporter}
}

// Bump evaluates text and returns the decision. The returned error is
// non-nil only when the version source fails; in that case nothing is
// reported and the caller should stop.
func (b *Bumper) Bump(ctx context.Context, text string) (Result, error) {
	res, err := b.decide(ctx, text)
	if err != nil {
		return Result{}, err
	}
	b.reporter.Report(res)
	return res, nil
}

func (b *Bumper) decide(ctx context.Context, text string) (Result, error) {
	res := Result{Input: text, Output: text}

	if strings.HasPrefix(strings.TrimSpace(text), "#") {
		res.Outcome = Skipped
		return res, nil
	}

	req, err := requirement.Parse(text)
	if err != nil {
		var perr *requirement.ParseError
		if !errors.As(err, &perr) {
			return Result{}, err
		}
		res.Outcome = Invalid
		return res, nil
	}
	res.Name = req.Name

	latest, ok, err := b.source.LatestVersion(ctx, req.Name)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		res.Outcome = Unknown
		return res, nil
	}
	res.Latest = latest

	specs := distinct(req.Specifiers)
	if len(specs) != 1 {
		res.Outcome = Ambiguous
		return res, nil
	}

	spec := specs[0]
	res.From = spec.Version
	switch {
	case spec.Operator != requirement.OpEqual:
		res.Outcome = WrongOperator
	case spec.Version == latest:
		res.Outcome = Current
	default:
		req.Pin(latest)
		res.Output = req.String()
		res.Outcome = Bumped
	}
	return res, nil
}

// distinct drops repeated specifiers, so "==1.0,==1.0" counts as one pin.
func distinct(specs []requirement.Specifier) []requirement.Specifier {
	var out []requirement.Specifier
	for _, s := range specs {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
