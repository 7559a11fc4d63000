// Package changelog regenerates the changelog document from version
// directives embedded in source doc comments.
//
// A directive line has the form ".. versionadded:: 3.1.6 description" (or
// versionchanged/versionremoved), optionally followed by indented
// continuation lines. The scanner collects directives from package docs and
// top-level declaration comments, and the writer renders one section per
// version in descending version order.
//
// The package also runs an external generator script for repositories that
// bring their own tooling; the release pipeline picks one of the two.
package changelog
