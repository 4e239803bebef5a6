// Package throwcheck defines an analyzer that reports traced errors
// returned without recording the call site.
//
// A function returning *throw.Error[E] is expected to return
// the result of a capture call:
//
//	return throw.Raise(err) // first observed here
//	return throw.Up(err)    // passed through here
//
// Returning a traced error from a callee as-is
// leaves a hole in its trace:
//
//	func load() *throw.Error[error] {
//		return readConfig() // want throw.Up(readConfig())
//	}
//
// Local variables are fine as long as every assignment to them
// is a capture call or nil.
//
// # Configuration
//
// Functions that capture call sites themselves,
// for example helpers built with throw.GetCaller,
// can be listed in a YAML file passed with -config:
//
//	helpers:
//	  - example.com/app/errs.Fail
//	  - (*example.com/app/errs.Builder).Raise
package throwcheck

import (
	"fmt"
	"go/ast"
	"go/types"
	"os"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"
	"gopkg.in/yaml.v3"
)

const doc = `throwcheck reports traced errors returned without recording the call site

Functions returning *throw.Error[E] must return nil or the result of
a capture call such as throw.Raise or throw.Up.`

const _throwPkg = "braces.dev/throw"

// _captureFuncs are the throw functions that record a call site.
var _captureFuncs = map[string]struct{}{
	"Raise":    {},
	"RaiseAt":  {},
	"Up":       {},
	"UpAt":     {},
	"New":      {},
	"NewAt":    {},
	"Errorf":   {},
	"ErrorfAt": {},
}

// Analyzer reports traced errors returned without recording the call site.
var Analyzer = &analysis.Analyzer{
	Name:     "throwcheck",
	Doc:      doc,
	URL:      "https://pkg.go.dev/braces.dev/throw/passes/throwcheck",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var _configPath string

func init() {
	Analyzer.Flags.StringVar(&_configPath, "config", "",
		"path to a YAML file listing extra capture helpers")
}

// Config is the configuration read from the -config file.
type Config struct {
	// Helpers are functions that record their call site,
	// named by their full name, e.g. "example.com/app/errs.Fail".
	Helpers []string `yaml:"helpers"`
}

// LoadConfig reads the configuration at path.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %v: %w", path, err)
	}
	return &cfg, nil
}

func run(pass *analysis.Pass) (any, error) {
	helpers := make(map[string]struct{})
	if _configPath != "" {
		cfg, err := LoadConfig(_configPath)
		if err != nil {
			return nil, err
		}
		for _, h := range cfg.Helpers {
			helpers[h] = struct{}{}
		}
	}

	pector := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.FuncDecl)(nil),
		(*ast.FuncLit)(nil),
	}

	pector.Preorder(nodeFilter, func(node ast.Node) {
		var (
			typ  *ast.FuncType
			body *ast.BlockStmt
		)
		switch n := node.(type) {
		case *ast.FuncDecl:
			typ, body = n.Type, n.Body
		case *ast.FuncLit:
			typ, body = n.Type, n.Body
		}
		if body == nil {
			return
		}

		c := checker{pass: pass, helpers: helpers}
		c.checkFunc(typ, body)
	})

	return nil, nil
}

type checker struct {
	pass    *analysis.Pass
	helpers map[string]struct{}

	// assigned holds every value assigned to local variables
	// of the function being checked.
	assigned map[*types.Var][]ast.Expr
}

func (c *checker) checkFunc(typ *ast.FuncType, body *ast.BlockStmt) {
	traced := c.tracedResults(typ)
	if len(traced) == 0 {
		return
	}

	c.assigned = make(map[*types.Var][]ast.Expr)
	inspectBody(body, func(n ast.Node) {
		switch n := n.(type) {
		case *ast.AssignStmt:
			c.recordAssign(n.Lhs, n.Rhs)
		case *ast.ValueSpec:
			lhs := make([]ast.Expr, len(n.Names))
			for i, name := range n.Names {
				lhs[i] = name
			}
			c.recordAssign(lhs, n.Values)
		}
	})

	inspectBody(body, func(n ast.Node) {
		ret, ok := n.(*ast.ReturnStmt)
		if !ok || len(ret.Results) == 0 {
			return
		}

		// return f() with f returning all the results.
		if len(ret.Results) == 1 && typ.Results.NumFields() > 1 {
			if !c.isCapture(ret.Results[0]) {
				c.report(ret.Results[0])
			}
			return
		}

		for _, idx := range traced {
			if idx >= len(ret.Results) {
				continue
			}
			expr := ret.Results[idx]
			if !c.recorded(expr, nil) {
				c.report(expr)
			}
		}
	})
}

func (c *checker) report(expr ast.Expr) {
	c.pass.Reportf(expr.Pos(), "traced error returned without recording the call site: use throw.Up")
}

// tracedResults returns the indices of results of type *throw.Error[E].
func (c *checker) tracedResults(typ *ast.FuncType) []int {
	if typ.Results == nil {
		return nil
	}

	var (
		indices []int
		idx     int
	)
	for _, field := range typ.Results.List {
		n := max(len(field.Names), 1)
		isTraced := isTracedType(c.pass.TypesInfo.TypeOf(field.Type))
		for range n {
			if isTraced {
				indices = append(indices, idx)
			}
			idx++
		}
	}
	return indices
}

func (c *checker) recordAssign(lhs, rhs []ast.Expr) {
	for i, l := range lhs {
		ident, ok := l.(*ast.Ident)
		if !ok {
			continue
		}
		v, ok := c.pass.TypesInfo.ObjectOf(ident).(*types.Var)
		if !ok || !isTracedType(v.Type()) {
			continue
		}

		switch {
		case len(lhs) == len(rhs):
			c.assigned[v] = append(c.assigned[v], rhs[i])
		case len(rhs) == 1:
			// v, err := f()
			c.assigned[v] = append(c.assigned[v], rhs[0])
		}
	}
}

// recorded reports whether expr is a traced error
// whose latest site was recorded in this function.
// seen guards against cycles through variables.
func (c *checker) recorded(expr ast.Expr, seen map[*types.Var]bool) bool {
	expr = ast.Unparen(expr)

	if isNil(c.pass.TypesInfo, expr) {
		return true
	}
	if c.isCapture(expr) {
		return true
	}

	ident, ok := expr.(*ast.Ident)
	if !ok {
		return false
	}
	v, ok := c.pass.TypesInfo.ObjectOf(ident).(*types.Var)
	if !ok {
		return false
	}
	values, ok := c.assigned[v]
	if !ok {
		// Parameters and variables from other scopes
		// were never recorded here.
		return false
	}

	if seen == nil {
		seen = make(map[*types.Var]bool)
	}
	if seen[v] {
		return true
	}
	seen[v] = true

	for _, val := range values {
		if !c.recorded(val, seen) {
			return false
		}
	}
	return true
}

// isCapture reports whether expr is a call that records a call site.
// throw.Convert counts if its argument does.
func (c *checker) isCapture(expr ast.Expr) bool {
	call, ok := ast.Unparen(expr).(*ast.CallExpr)
	if !ok {
		return false
	}

	fn, ok := callee(c.pass.TypesInfo, call).(*types.Func)
	if !ok {
		return false
	}

	if _, ok := c.helpers[fn.FullName()]; ok {
		return true
	}
	if fn.Pkg() == nil || fn.Pkg().Path() != _throwPkg {
		return false
	}
	if fn.Name() == "Convert" && len(call.Args) > 0 {
		return c.recorded(call.Args[0], nil)
	}
	_, ok = _captureFuncs[fn.Name()]
	return ok
}

// isTracedType reports whether t is *throw.Error[E].
func isTracedType(t types.Type) bool {
	ptr, ok := t.(*types.Pointer)
	if !ok {
		return false
	}
	named, ok := ptr.Elem().(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Name() == "Error" && obj.Pkg() != nil && obj.Pkg().Path() == _throwPkg
}

func isNil(info *types.Info, expr ast.Expr) bool {
	tv, ok := info.Types[expr]
	return ok && tv.IsNil()
}

// inspectBody calls fn for every node in body,
// not descending into function literals: they're checked on their own.
func inspectBody(body *ast.BlockStmt, fn func(ast.Node)) {
	ast.Inspect(body, func(n ast.Node) bool {
		if _, ok := n.(*ast.FuncLit); ok {
			return false
		}
		if n != nil {
			fn(n)
		}
		return true
	})
}

// callee returns the function called by call, if static.
// Generic functions resolve to their origin.
func callee(info *types.Info, call *ast.CallExpr) types.Object {
	obj := typeutil.Callee(info, call)
	if fn, ok := obj.(*types.Func); ok {
		return fn.Origin()
	}
	return obj
}
