package manifest

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/matzehuels/pinbump/pkg/bump"
	pberrors "github.com/matzehuels/pinbump/pkg/errors"
)

// Tox updates the deps value of every section in tox.ini.
type Tox struct {
	Options
}

func (t *Tox) Filename() string { return ToxFile }

func (t *Tox) Update(ctx context.Context, dir string, b *bump.Bumper) (*Report, error) {
	path := filepath.Join(dir, ToxFile)
	report := &Report{Path: path}

	doc, err := LoadTox(path)
	if isNotExist(err) {
		report.Skipped = true
		return report, nil
	}
	if err != nil {
		return nil, err
	}

	for _, section := range doc.Sections() {
		if len(section.Deps) == 0 {
			continue
		}
		t.section(section.DisplayName())
		for _, dep := range section.Deps {
			res, err := b.Bump(ctx, dep.Text)
			if err != nil {
				return nil, err
			}
			report.Results = append(report.Results, res)
			if res.Changed() {
				doc.Replace(dep, res.Output)
			}
		}
	}

	return report, t.commit(path, doc.src, doc.Bytes(), report)
}

// ToxDoc is an editable, line-based view of a tox.ini file. Requirements
// are replaced within their line; indentation, comments and line endings
// are kept.
type ToxDoc struct {
	src      []byte
	lines    []string
	sections []ToxSection
}

// ToxSection is a section header and the requirement lines of its deps
// value.
type ToxSection struct {
	Name string
	Deps []ToxDep
}

// DisplayName returns the section name up to the first '{', so that
// "testenv:py{38,39}" displays as "testenv:py".
func (s ToxSection) DisplayName() string {
	name, _, _ := strings.Cut(s.Name, "{")
	return name
}

// ToxDep is one line of a deps value.
type ToxDep struct {
	Text  string // Trimmed requirement text
	line  int
	start int
	end   int
}

// LoadTox reads and parses the tox.ini at path.
func LoadTox(path string) (*ToxDoc, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTox(path, data)
}

// ParseTox parses data as a tox.ini document. Values follow Python
// configparser rules: a value continues on every following line indented
// deeper than its key, blank lines and comment lines included. name is used
// in error messages only.
func ParseTox(name string, data []byte) (*ToxDoc, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		InsensitiveKeys:            true,
		IgnoreInlineComment:        true,
		SkipUnrecognizableLines:    true,
	}, data)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidManifest, err, "parse %s", name)
	}

	doc := &ToxDoc{src: data, lines: splitLines(data)}
	if err := doc.scan(); err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidManifest, err, "parse %s", name)
	}

	located := make(map[string]bool, len(doc.sections))
	for _, s := range doc.sections {
		if s.hasDeps() {
			located[s.Name] = true
		}
	}
	for _, s := range cfg.Sections() {
		if s.HasKey("deps") && strings.TrimSpace(s.Key("deps").Value()) != "" && !located[s.Name()] {
			return nil, pberrors.New(pberrors.ErrCodeInvalidManifest,
				"%s: cannot locate deps of section [%s]", name, s.Name())
		}
	}
	return doc, nil
}

// Sections returns the sections in file order.
func (d *ToxDoc) Sections() []ToxSection { return d.sections }

// Replace substitutes text for the requirement dep refers to.
func (d *ToxDoc) Replace(dep ToxDep, text string) {
	line := d.lines[dep.line]
	d.lines[dep.line] = line[:dep.start] + text + line[dep.end:]
}

// Bytes renders the document with all replacements applied.
func (d *ToxDoc) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(len(d.src))
	for _, line := range d.lines {
		buf.WriteString(line)
	}
	return buf.Bytes()
}

func (s ToxSection) hasDeps() bool {
	for _, dep := range s.Deps {
		if dep.Text != "" {
			return true
		}
	}
	return false
}

type syntaxError struct {
	line int
	msg  string
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.line+1, e.msg)
}

// scan builds the section list from d.lines.
func (d *ToxDoc) scan() error {
	var (
		cur       = -1 // index into d.sections
		inValue   bool // inside a key's value
		inDeps    bool // ...and that key is deps
		keyIndent int
	)

	for i, raw := range d.lines {
		content := strings.TrimRight(raw, "\r\n")
		trimmed := strings.TrimSpace(content)
		indent := len(content) - len(strings.TrimLeft(content, " \t\f"))
		comment := strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";")

		if inValue {
			switch {
			case trimmed == "":
				continue
			case comment && indent == 0:
				continue
			case indent > keyIndent:
				if inDeps && !strings.HasPrefix(trimmed, ";") {
					d.addDep(cur, i, indent, trimmed)
				}
				continue
			}
			inValue, inDeps = false, false
		}

		if trimmed == "" || comment {
			continue
		}

		if trimmed[0] == '[' {
			end := strings.LastIndexByte(trimmed, ']')
			if end < 0 {
				return &syntaxError{i, "unclosed section header"}
			}
			d.sections = append(d.sections, ToxSection{Name: trimmed[1:end]})
			cur = len(d.sections) - 1
			continue
		}

		delim := strings.IndexAny(content, "=:")
		if delim < 0 {
			continue
		}
		if cur < 0 {
			return &syntaxError{i, "key outside of any section"}
		}

		inValue, keyIndent = true, indent
		inDeps = strings.EqualFold(strings.TrimSpace(content[:delim]), "deps")
		if !inDeps {
			continue
		}

		value := content[delim+1:]
		if text := strings.TrimSpace(value); text != "" {
			d.addDep(cur, i, delim+1+strings.Index(value, text), text)
		}
	}
	return nil
}

func (d *ToxDoc) addDep(section, line, start int, text string) {
	d.sections[section].Deps = append(d.sections[section].Deps, ToxDep{
		Text:  text,
		line:  line,
		start: start,
		end:   start + len(text),
	})
}

// splitLines splits data after each '\n', keeping the terminators so that
// joining the result reproduces data exactly.
func splitLines(data []byte) []string {
	var lines []string
	s := string(data)
	for s != "" {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i+1])
		s = s[i+1:]
	}
	return lines
}
