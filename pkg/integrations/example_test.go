package integrations_test

import (
	"fmt"

	"github.com/matzehuels/pinbump/pkg/integrations"
)

func ExampleNormalizePkgName() {
	// Separator runs collapse to a single hyphen, so all of these share one
	// index lookup.
	fmt.Println(integrations.NormalizePkgName("Setuptools_SCM"))
	fmt.Println(integrations.NormalizePkgName("zope.interface"))
	fmt.Println(integrations.NormalizePkgName("  my__-package  "))
	// Output:
	// setuptools-scm
	// zope-interface
	// my-package
}
