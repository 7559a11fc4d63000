package changelog

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path/filepath"
	"strings"
)

// Scan walks dir for Go source files and collects version directives from
// package docs and top-level declaration comments. Entries in exclude are
// paths relative to dir and are pruned from the walk along with hidden
// directories and _test.go files.
func Scan(dir string, exclude []string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || excluded(rel, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") || strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}
		file, parseErr := parser.ParseFile(token.NewFileSet(), path, nil, parser.ParseComments)
		if parseErr != nil {
			// Files that do not parse contribute nothing.
			return nil
		}
		entries = append(entries, scanFile(file, modulePath(rel, file.Name.Name))...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func excluded(rel string, exclude []string) bool {
	rel = filepath.ToSlash(rel)
	for _, e := range exclude {
		e = strings.Trim(filepath.ToSlash(e), "/")
		if e == "" {
			continue
		}
		if rel == e || strings.HasPrefix(rel, e+"/") {
			return true
		}
	}
	return false
}

// modulePath derives the dotted reference prefix for a file: the directory
// path relative to the scan root, or the package name for root-level files.
func modulePath(relFile, pkgName string) string {
	d := filepath.Dir(relFile)
	if d == "." {
		return pkgName
	}
	return strings.ReplaceAll(filepath.ToSlash(d), "/", ".")
}

func scanFile(file *ast.File, module string) []Entry {
	var entries []Entry
	add := func(doc *ast.CommentGroup, name, ref string, kind Kind) {
		if doc == nil {
			return
		}
		for _, d := range parseDirectives(doc.Text()) {
			entries = append(entries, Entry{
				Version:     d.version,
				Change:      d.change,
				Description: d.description,
				Name:        name,
				Ref:         ref,
				Kind:        kind,
			})
		}
	}

	add(file.Doc, file.Name.Name, module, KindModule)

	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.FuncDecl:
			if decl.Recv != nil {
				ref := module + "." + decl.Name.Name
				if recv := receiverName(decl.Recv); recv != "" {
					ref = module + "." + recv + "." + decl.Name.Name
				}
				add(decl.Doc, decl.Name.Name, ref, KindMethod)
				continue
			}
			add(decl.Doc, decl.Name.Name, module+"."+decl.Name.Name, KindFunc)
		case *ast.GenDecl:
			scanGenDecl(decl, module, add)
		}
	}
	return entries
}

func scanGenDecl(decl *ast.GenDecl, module string, add func(*ast.CommentGroup, string, string, Kind)) {
	switch decl.Tok {
	case token.TYPE:
		for _, spec := range decl.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			doc := ts.Doc
			if doc == nil && len(decl.Specs) == 1 {
				doc = decl.Doc
			}
			add(doc, ts.Name.Name, module+"."+ts.Name.Name, KindClass)
		}
	case token.CONST, token.VAR:
		for _, spec := range decl.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok || len(vs.Names) == 0 {
				continue
			}
			doc := vs.Doc
			if doc == nil && len(decl.Specs) == 1 {
				doc = decl.Doc
			}
			name := vs.Names[0].Name
			add(doc, name, module+"."+name, KindVariable)
		}
	}
}

// receiverName resolves the named type of a method receiver, unwrapping
// pointers and type parameter lists.
func receiverName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}
	t := recv.List[0].Type
	for {
		switch v := t.(type) {
		case *ast.StarExpr:
			t = v.X
		case *ast.IndexExpr:
			t = v.X
		case *ast.IndexListExpr:
			t = v.X
		case *ast.Ident:
			return v.Name
		default:
			return ""
		}
	}
}
