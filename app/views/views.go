// Package views holds the HTML templates compiled into the binary.
//
// Every page is parsed together with layout.html and all partials. Partials
// are files whose name starts with an underscore; they are referenced by
// file name, e.g. {{template "_comment.html" .}}, so their names must be
// unique across directories.
package views

import "embed"

//go:embed *.html */*.html
var FS embed.FS
