package requirement

import (
	"errors"
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input  string
		name   string
		extras []string
		specs  []Specifier
		url    string
		marker string
		canon  string
	}{
		{
			input: "build==1.0.5",
			name:  "build",
			specs: []Specifier{{"==", "1.0.5"}},
			canon: "build==1.0.5",
		},
		{
			input: "  setuptools_scm >= 8 , < 9  ",
			name:  "setuptools_scm",
			specs: []Specifier{{">=", "8"}, {"<", "9"}},
			canon: "setuptools_scm>=8,<9",
		},
		{
			input: "black[jupyter,d]==24.1.0",
			name:  "black",
			extras: []string{"jupyter", "d"},
			specs: []Specifier{{"==", "24.1.0"}},
			canon: "black[d,jupyter]==24.1.0",
		},
		{
			input:  "tomli==2.0.1; python_version < '3.11'",
			name:   "tomli",
			specs:  []Specifier{{"==", "2.0.1"}},
			marker: "python_version < '3.11'",
			canon:  "tomli==2.0.1; python_version < '3.11'",
		},
		{
			input:  "pytest (==7.4.0)   ;sys_platform=='linux'",
			name:   "pytest",
			specs:  []Specifier{{"==", "7.4.0"}},
			marker: "sys_platform=='linux'",
			canon:  "pytest==7.4.0; sys_platform=='linux'",
		},
		{
			input: "hatchling",
			name:  "hatchling",
			canon: "hatchling",
		},
		{
			input: "pkg===weird-build",
			name:  "pkg",
			specs: []Specifier{{"===", "weird-build"}},
			canon: "pkg===weird-build",
		},
		{
			input: "django~=4.2",
			name:  "django",
			specs: []Specifier{{"~=", "4.2"}},
			canon: "django~=4.2",
		},
		{
			input: "numpy!=1.24.*",
			name:  "numpy",
			specs: []Specifier{{"!=", "1.24.*"}},
			canon: "numpy!=1.24.*",
		},
		{
			input: "torch==2.1.0+cpu",
			name:  "torch",
			specs: []Specifier{{"==", "2.1.0+cpu"}},
			canon: "torch==2.1.0+cpu",
		},
		{
			input: "mypkg @ https://example.com/mypkg-1.0.whl",
			name:  "mypkg",
			url:   "https://example.com/mypkg-1.0.whl",
			canon: "mypkg @ https://example.com/mypkg-1.0.whl",
		},
		{
			input:  "mypkg@https://example.com/m.whl ; os_name == 'nt'",
			name:   "mypkg",
			url:    "https://example.com/m.whl",
			marker: "os_name == 'nt'",
			canon:  "mypkg @ https://example.com/m.whl ; os_name == 'nt'",
		},
		{
			input: "pkg==1!2.0.post1",
			name:  "pkg",
			specs: []Specifier{{"==", "1!2.0.post1"}},
			canon: "pkg==1!2.0.post1",
		},
		{
			input: "pkg>=v1.0rc1,~=1.0.post1",
			name:  "pkg",
			specs: []Specifier{{">=", "v1.0rc1"}, {"~=", "1.0.post1"}},
			canon: "pkg>=v1.0rc1,~=1.0.post1",
		},
		{
			input: "Zope.Interface==6.0rc1.post2.dev3",
			name:  "Zope.Interface",
			specs: []Specifier{{"==", "6.0rc1.post2.dev3"}},
			canon: "Zope.Interface==6.0rc1.post2.dev3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if r.Name != tt.name {
				t.Errorf("Name = %q, want %q", r.Name, tt.name)
			}
			if !slices.Equal(r.Extras, tt.extras) {
				t.Errorf("Extras = %v, want %v", r.Extras, tt.extras)
			}
			if !slices.Equal(r.Specifiers, tt.specs) {
				t.Errorf("Specifiers = %v, want %v", r.Specifiers, tt.specs)
			}
			if r.URL != tt.url {
				t.Errorf("URL = %q, want %q", r.URL, tt.url)
			}
			if r.Marker != tt.marker {
				t.Errorf("Marker = %q, want %q", r.Marker, tt.marker)
			}
			if got := r.String(); got != tt.canon {
				t.Errorf("String() = %q, want %q", got, tt.canon)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not a requirement!!",
		"-leading-dash==1.0",
		"pkg==",
		"pkg==1.0,",
		"pkg=1.0",
		"pkg==not.a.version",
		"pkg~=1",
		"pkg>=1.0.*",
		"pkg==1.0rc1.*",
		"pkg>=1.0+local",
		"pkg~=1.0+local",
		"pkg<2.0.dev1.bogus",
		"pkg[extra==1.0",
		"pkg[bad extra]==1.0",
		"pkg (==1.0",
		"pkg==1.0;",
		"pkg @ ",
		"pkg @ https://example.com/x.whl trailing",
		"pkg==1.0 # comment",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", input)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error type = %T, want *ParseError", err)
			}
			if pe.Text != input {
				t.Errorf("ParseError.Text = %q, want %q", pe.Text, input)
			}
		})
	}
}

func TestPin(t *testing.T) {
	r, err := Parse("requests[socks]==2.30.0; python_version >= '3.8'")
	if err != nil {
		t.Fatal(err)
	}
	r.Pin("2.32.3")

	want := "requests[socks]==2.32.3; python_version >= '3.8'"
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestStringReparses(t *testing.T) {
	inputs := []string{
		"black [ d , jupyter ] == 24.1.0 ; python_version>'3.8'",
		"pkg>=1,<2",
		"pkg @ file:///tmp/pkg.tar.gz",
	}
	for _, input := range inputs {
		r, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		again, err := Parse(r.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", r.String(), err)
		}
		if again.String() != r.String() {
			t.Errorf("canonical form not stable: %q then %q", r.String(), again.String())
		}
	}
}
