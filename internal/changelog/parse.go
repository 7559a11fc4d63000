package changelog

import (
	"strings"
	"unicode"
)

// Kind is the RST role used when cross-referencing the documented item.
type Kind string

const (
	KindFunc     Kind = "func"
	KindMethod   Kind = "meth"
	KindClass    Kind = "class"
	KindVariable Kind = "variable"
	KindModule   Kind = "mod"
)

// Entry is one changelog line: a change of some kind to a named item in a
// specific version.
type Entry struct {
	Version     string
	Change      string
	Description string
	Name        string
	Ref         string
	Kind        Kind
}

const noDescription = "(no description provided)"

type directive struct {
	change      string
	version     string
	description string
}

// parseDirectives extracts version directives from one doc comment. A
// directive opens with ".. version<change>:: <version> [description]";
// following non-blank lines that do not start with ".." continue the
// description, and a blank line closes the block.
func parseDirectives(doc string) []directive {
	var (
		out     []directive
		current *directive
		desc    []string
		inBlock bool
	)

	flush := func() {
		if current == nil {
			return
		}
		current.description = strings.TrimSpace(strings.Join(desc, " "))
		if current.description == "" {
			current.description = noDescription
		}
		out = append(out, *current)
		current = nil
		desc = nil
	}

	for _, raw := range strings.Split(doc, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, ".. version"):
			flush()
			inBlock = true
			left, right, found := strings.Cut(line, "::")
			if !found {
				continue
			}
			words := strings.Fields(left)
			if len(words) == 0 {
				continue
			}
			change := strings.TrimPrefix(strings.ToLower(words[len(words)-1]), "version")
			rest := strings.TrimSpace(right)
			if rest == "" {
				continue
			}
			version, inline := rest, ""
			if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
				version, inline = rest[:i], strings.TrimSpace(rest[i:])
			}
			current = &directive{change: change, version: version}
			if inline != "" {
				desc = []string{inline}
			}
		case inBlock && line != "" && !strings.HasPrefix(line, ".."):
			if current != nil {
				desc = append(desc, line)
			}
		case inBlock && line == "":
			inBlock = false
		}
	}
	flush()
	return out
}
