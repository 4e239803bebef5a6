package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"braces.dev/throw"
)

const _throwImport = "braces.dev/throw"

// _captureFuncs are the functions that record their call site.
// Each has a counterpart with an "At" suffix
// that takes the site as its first argument.
var _captureFuncs = map[string]struct{}{
	"Raise":  {},
	"Up":     {},
	"New":    {},
	"Errorf": {},
	"Wrap":   {},
	"Wrap2":  {},
	"Wrap3":  {},
}

// parsedFile is a file that's been parsed
// along with the inserts needed to rewrite it.
type parsedFile struct {
	src  []byte
	fset *token.FileSet
	file *ast.File

	importsThrow bool     // whether the file imports throw
	inserts      []insert // inserts to make, in any order
}

// parseFile parses src and finds the capture calls to rewrite.
//
// pkgPath is the import path used in scopes.
// If empty, the package name is used instead.
func (cmd *mainCmd) parseFile(filename string, src []byte, pkgPath string) (parsedFile, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return parsedFile{}, throw.Wrap(err)
	}

	throwPkg := "throw" // name the throw package is referenced by
	var importsThrow bool
	for _, imp := range f.Imports {
		if imp.Path.Value == strconv.Quote(_throwImport) {
			importsThrow = true
			if imp.Name != nil {
				throwPkg = imp.Name.Name
			}
			break
		}
	}

	parsed := parsedFile{
		src:          src,
		fset:         fset,
		file:         f,
		importsThrow: importsThrow,
	}

	// Files that don't import throw, or import it only for side effects,
	// have nothing to rewrite.
	if !importsThrow || throwPkg == "_" {
		return parsed, nil
	}

	w := walker{
		fset:     fset,
		filename: filename,
		throwPkg: throwPkg,
		optouts:  optoutLines(fset, f.Comments),
		inserts:  &parsed.inserts,
	}
	w.walkFile(f, scopePrefix(f, pkgPath))

	// Look for unused optouts and warn about them.
	if len(w.optouts) > 0 {
		unusedOptouts := make([]int, 0, len(w.optouts))
		for line, used := range w.optouts {
			if used == 0 {
				unusedOptouts = append(unusedOptouts, line)
			}
		}
		sort.Ints(unusedOptouts)

		for _, line := range unusedOptouts {
			cmd.log.Printf("%s:%d:unused throw:skip", filename, line)
		}
	}

	return parsed, nil
}

// rewriteFile writes the source of f to out with its inserts applied.
func (cmd *mainCmd) rewriteFile(f parsedFile, out io.Writer) error {
	inserts := f.inserts
	sort.SliceStable(inserts, func(i, j int) bool {
		return inserts[i].Pos() < inserts[j].Pos()
	})

	var (
		lastOffset int
		errs       []error
	)
	write := func(b []byte) {
		if _, err := out.Write(b); err != nil {
			errs = append(errs, err)
		}
	}

	filePos := f.fset.File(f.file.Pos()) // position information for this file
	for _, it := range inserts {
		offset := filePos.Offset(it.Pos())
		write(f.src[lastOffset:offset])
		lastOffset = offset

		switch it := it.(type) {
		case *insertAtSuffix:
			write([]byte("At"))

		case *insertPoint:
			write([]byte(it.Literal + ", "))

		default:
			cmd.log.Panicf("unhandled insertion type %T", it)
		}
	}
	write(f.src[lastOffset:]) // flush remaining

	if len(errs) > 0 {
		return throw.Wrap(errs[0])
	}
	return nil
}

type walker struct {
	fset     *token.FileSet // file set for positional information
	filename string         // file name recorded in points
	throwPkg string         // name of the throw package, "." if dot-imported

	optouts map[int]int // map from line to number of uses

	// inserts is the list of inserts to make.
	inserts *[]insert
}

// walkFile visits every declaration in f,
// naming scopes the way the runtime names functions.
func (w *walker) walkFile(f *ast.File, prefix string) {
	var inits, initClosures int
	for _, decl := range f.Decls {
		switch decl := decl.(type) {
		case *ast.FuncDecl:
			if decl.Body == nil {
				continue
			}

			name := funcName(decl)
			if name == "init" && decl.Recv == nil {
				name = "init." + strconv.Itoa(inits)
				inits++
			}
			var closures int
			w.walkFunc(decl.Body, prefix+"."+name, false, &closures)

		case *ast.GenDecl:
			// Package level variables are initialized by the package's init.
			w.walkFunc(decl, prefix+".init", false, &initClosures)
		}
	}
}

// walkFunc visits the body of a function named scope.
// Function literals inside it are visited with their own scope:
// scope.func1, scope.func2, and so on for the outermost function,
// scope.1, scope.2 for function literals nested in other literals.
// closures counts the function literals numbered so far in scope.
func (w *walker) walkFunc(body ast.Node, scope string, nested bool, closures *int) {
	ast.Inspect(body, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.FuncLit:
			*closures++
			child := scope + ".func" + strconv.Itoa(*closures)
			if nested {
				child = scope + "." + strconv.Itoa(*closures)
			}
			var inner int
			w.walkFunc(n.Body, child, true, &inner)
			return false

		case *ast.CallExpr:
			w.callExpr(n, scope)
		}
		return true
	})
}

// callExpr records the inserts to rewrite n if it's a capture call.
//
//	throw.Up(err)
//	throw.Raise[error](err)
//
// become
//
//	throw.UpAt(throw.Point{...}, err)
//	throw.RaiseAt[error](throw.Point{...}, err)
func (w *walker) callExpr(n *ast.CallExpr, scope string) {
	fun := n.Fun
	switch f := fun.(type) {
	case *ast.IndexExpr:
		fun = f.X
	case *ast.IndexListExpr:
		fun = f.X
	}

	name, ok := w.captureName(fun)
	if !ok || len(n.Args) == 0 {
		return
	}

	// A multi-value call can't be spread after another argument,
	// so Wrap2(f()) and Wrap3(f()) keep capturing at run time.
	if len(n.Args) == 1 && (name.Name == "Wrap2" || name.Name == "Wrap3") {
		return
	}

	if w.optout(n.Pos()) {
		return
	}

	pos := w.fset.Position(n.Pos())
	pointType := "Point"
	if w.throwPkg != "." {
		pointType = w.throwPkg + ".Point"
	}
	literal := fmt.Sprintf("%s{Line: %d, Column: %d, Scope: %s, File: %s}",
		pointType, pos.Line, pos.Column, strconv.Quote(scope), strconv.Quote(w.filename))

	*w.inserts = append(*w.inserts,
		&insertAtSuffix{After: name.End()},
		&insertPoint{Literal: literal, After: n.Lparen + 1},
	)
}

// captureName returns the identifier of the capture function
// referenced by fun, if any.
func (w *walker) captureName(fun ast.Expr) (*ast.Ident, bool) {
	var name *ast.Ident
	if w.throwPkg == "." {
		name, _ = fun.(*ast.Ident)
	} else if sel, ok := fun.(*ast.SelectorExpr); ok && isIdent(sel.X, w.throwPkg) {
		name = sel.Sel
	}
	if name == nil {
		return nil, false
	}

	_, ok := _captureFuncs[name.Name]
	return name, ok
}

// optout reports whether the line at the given position
// is opted out of rewriting, incrementing uses if so.
func (w *walker) optout(pos token.Pos) bool {
	line := w.fset.Position(pos).Line
	_, ok := w.optouts[line]
	if ok {
		w.optouts[line]++
	}
	return ok
}

// insert is a request to add something to the source code.
type insert interface {
	Pos() token.Pos // position to insert at
	String() string // description for debugging
}

// insertAtSuffix turns the name of a capture function
// into the name of its "At" counterpart.
//
//	throw.Up -> throw.UpAt
type insertAtSuffix struct {
	After token.Pos // position right after the function name
}

func (e *insertAtSuffix) Pos() token.Pos {
	return e.After
}

func (e *insertAtSuffix) String() string {
	return "<At>"
}

// insertPoint adds the call site as the first argument of a call.
//
//	throw.UpAt(err) -> throw.UpAt(throw.Point{...}, err)
type insertPoint struct {
	Literal string    // throw.Point literal
	After   token.Pos // position right after the opening parenthesis
}

func (e *insertPoint) Pos() token.Pos {
	return e.After
}

func (e *insertPoint) String() string {
	return e.Literal
}

// scopePrefix returns the package part of scopes in f.
// The runtime names functions of main packages "main.F"
// whatever their import path.
func scopePrefix(f *ast.File, pkgPath string) string {
	if f.Name.Name == "main" || pkgPath == "" {
		return f.Name.Name
	}
	return pkgPath
}

// funcName returns the name of a declared function
// the way the runtime reports it, without the package.
//
//	func F()           F
//	func G[T any]()    G[...]
//	func (T) M()       T.M
//	func (*T) M()      (*T).M
//	func (*L[E]) M()   (*L[...]).M
func funcName(decl *ast.FuncDecl) string {
	name := decl.Name.Name
	if decl.Type.TypeParams != nil && len(decl.Type.TypeParams.List) > 0 {
		name += "[...]"
	}

	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		return name
	}

	typ := decl.Recv.List[0].Type
	star, ptr := typ.(*ast.StarExpr)
	if ptr {
		typ = star.X
	}

	var generic bool
	switch t := typ.(type) {
	case *ast.IndexExpr:
		typ, generic = t.X, true
	case *ast.IndexListExpr:
		typ, generic = t.X, true
	}

	recv := "?"
	if ident, ok := typ.(*ast.Ident); ok {
		recv = ident.Name
	}
	if generic {
		recv += "[...]"
	}

	if ptr {
		return "(*" + recv + ")." + name
	}
	return recv + "." + name
}

func isIdent(expr ast.Expr, name string) bool {
	ident, ok := expr.(*ast.Ident)
	return ok && ident.Name == name
}

var _throwSkip = regexp.MustCompile(`(^| )//throw:skip($|[ \(])`)

// optoutLines returns the line numbers
// that have a comment in the form:
//
//	//throw:skip
//
// It may be followed by other text, e.g.,
//
//	//throw:skip // for reasons
func optoutLines(
	fset *token.FileSet,
	comments []*ast.CommentGroup,
) map[int]int {
	lines := make(map[int]int)
	for _, cg := range comments {
		if len(cg.List) > 1 {
			// skip multiline comments which are full line comments, not tied to a call.
			continue
		}

		c := cg.List[0]
		if _throwSkip.MatchString(c.Text) {
			lineNo := fset.Position(c.Pos()).Line
			lines[lineNo] = 0
		}
	}
	return lines
}

// trimTestSuffix drops the " [pkg.test]" suffix
// the go command adds to import paths of packages built for tests.
func trimTestSuffix(pkg string) string {
	pkg, _, _ = strings.Cut(pkg, " ")
	return pkg
}
