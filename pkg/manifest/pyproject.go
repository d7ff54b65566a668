package manifest

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"

	"github.com/matzehuels/pinbump/pkg/bump"
	pberrors "github.com/matzehuels/pinbump/pkg/errors"
)

// Pyproject updates the build-system.requires array of pyproject.toml.
type Pyproject struct {
	Options
}

func (p *Pyproject) Filename() string { return PyprojectFile }

func (p *Pyproject) Update(ctx context.Context, dir string, b *bump.Bumper) (*Report, error) {
	path := filepath.Join(dir, PyprojectFile)
	report := &Report{Path: path}

	doc, err := LoadPyproject(path)
	if isNotExist(err) {
		report.Skipped = true
		return report, nil
	}
	if err != nil {
		return nil, err
	}

	requires := doc.Requires()
	if len(requires) == 0 {
		return report, nil
	}

	p.section("build-system.requires")
	for i, req := range requires {
		res, err := b.Bump(ctx, req)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)
		if res.Changed() {
			doc.SetRequire(i, res.Output)
		}
	}

	return report, p.commit(path, doc.src, doc.Bytes(), report)
}

// PyprojectDoc is an editable view of a pyproject.toml file. Only the
// string literals of build-system.requires can be changed; every other
// byte is written back as it was read.
type PyprojectDoc struct {
	src      []byte
	requires []tomlString
}

// tomlString is one string literal located in the source.
type tomlString struct {
	value   string // decoded value
	offset  int    // start of the literal, quotes included
	length  int    // length of the literal, quotes included
	literal bool   // single-quoted
	edit    string // replacement value; empty when unchanged
}

var requiresPath = []string{"build-system", "requires"}

// LoadPyproject reads and parses the pyproject.toml at path.
func LoadPyproject(path string) (*PyprojectDoc, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePyproject(path, data)
}

// ParsePyproject parses data as a pyproject.toml document. name is used in
// error messages only.
func ParsePyproject(name string, data []byte) (*PyprojectDoc, error) {
	var decoded struct {
		BuildSystem struct {
			Requires []string `toml:"requires"`
		} `toml:"build-system"`
	}
	md, err := toml.Decode(string(data), &decoded)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidManifest, err, "parse %s", name)
	}
	// BurntSushi lets an empty array be redefined; go-toml tracks every key.
	if err := gotoml.Unmarshal(data, new(map[string]any)); err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidManifest, err, "parse %s", name)
	}

	doc := &PyprojectDoc{src: data}
	if !md.IsDefined(requiresPath...) {
		return doc, nil
	}

	located, err := locateRequires(data)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidManifest, err, "parse %s", name)
	}
	want := decoded.BuildSystem.Requires
	if len(located) != len(want) {
		return nil, pberrors.New(pberrors.ErrCodeInvalidManifest,
			"%s: found %d of %d build-system.requires entries", name, len(located), len(want))
	}
	for i, s := range located {
		if s.value != want[i] {
			return nil, pberrors.New(pberrors.ErrCodeInvalidManifest,
				"%s: build-system.requires entry %d is %q, located %q", name, i, want[i], s.value)
		}
	}

	doc.requires = located
	return doc, nil
}

// Requires returns the current build-system.requires values, including
// pending edits.
func (d *PyprojectDoc) Requires() []string {
	out := make([]string, len(d.requires))
	for i, s := range d.requires {
		out[i] = s.value
		if s.edit != "" {
			out[i] = s.edit
		}
	}
	return out
}

// SetRequire replaces entry i of build-system.requires.
func (d *PyprojectDoc) SetRequire(i int, value string) {
	if value == d.requires[i].value {
		d.requires[i].edit = ""
		return
	}
	d.requires[i].edit = value
}

// Bytes renders the document with all edits applied.
func (d *PyprojectDoc) Bytes() []byte {
	out := make([]byte, 0, len(d.src))
	pos := 0
	for _, s := range d.requires {
		if s.edit == "" {
			continue
		}
		out = append(out, d.src[pos:s.offset]...)
		out = append(out, quoteTOML(s.edit, s.literal)...)
		pos = s.offset + s.length
	}
	return append(out, d.src[pos:]...)
}

// locateRequires walks the raw TOML expressions and returns every string
// literal of the build-system.requires array in document order. The array
// may be declared under a [build-system] table, with a dotted key, or
// inside an inline table.
func locateRequires(data []byte) ([]tomlString, error) {
	var (
		p     unstable.Parser
		table []string
		found []tomlString
	)
	p.Reset(data)
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table:
			table = keyPath(nil, e.Key())
		case unstable.ArrayTable:
			// Never a prefix of requiresPath.
			table = append(keyPath(nil, e.Key()), "[]")
		case unstable.KeyValue:
			found = collectStrings(&p, found, keyPath(slices.Clone(table), e.Key()), e.Value())
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return found, nil
}

func keyPath(prefix []string, it unstable.Iterator) []string {
	for it.Next() {
		prefix = append(prefix, string(it.Node().Data))
	}
	return prefix
}

func collectStrings(p *unstable.Parser, found []tomlString, path []string, value *unstable.Node) []tomlString {
	switch value.Kind {
	case unstable.Array:
		if !slices.Equal(path, requiresPath) {
			return found
		}
		it := value.Children()
		for it.Next() {
			n := it.Node()
			if n.Kind != unstable.String {
				continue
			}
			raw := p.Raw(n.Raw)
			found = append(found, tomlString{
				value:   string(n.Data),
				offset:  int(n.Raw.Offset),
				length:  int(n.Raw.Length),
				literal: raw[0] == '\'',
			})
		}
	case unstable.InlineTable:
		if len(path) >= len(requiresPath) || !slices.Equal(path, requiresPath[:len(path)]) {
			return found
		}
		it := value.Children()
		for it.Next() {
			kv := it.Node()
			found = collectStrings(p, found, keyPath(slices.Clone(path), kv.Key()), kv.Value())
		}
	}
	return found
}

// quoteTOML renders s as a single-line TOML string. Literal (single-quoted)
// form is kept when s can be written in it.
func quoteTOML(s string, literal bool) string {
	if literal && !strings.ContainsFunc(s, func(r rune) bool {
		return r == '\'' || (r < 0x20 && r != '\t') || r == 0x7f
	}) {
		return "'" + s + "'"
	}

	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04X`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
