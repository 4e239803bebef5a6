// throw compiles call sites into throw traces.
//
// By default, throw.Raise, throw.Up and the other capture functions
// find their call site from the program counter at run time.
// The throw tool rewrites those calls into their "At" forms
// with the call site written out as a literal throw.Point,
// which also records the column of the call:
//
//	return throw.Up(err)
//	// becomes
//	return throw.UpAt(throw.Point{Line: 12, Column: 10, Scope: "example.com/app.load", File: "app/load.go"}, err)
//
// The rewrite never changes line numbers.
// Wrap2 and Wrap3 calls that forward a multi-value call,
// as in throw.Wrap2(strconv.Atoi(s)), keep capturing at run time.
//
// # Installation
//
// Install throw with:
//
//	go install braces.dev/throw/cmd/throw@latest
//
// # Usage
//
//	throw [options] <source files | patterns>
//
// This will transform source files and write them to the standard output.
//
// If instead of source files, Go package patterns are given,
// throw will transform all the files that match those patterns.
// For example, 'throw ./...' will transform all files in the current
// package and all subpackages.
//
// Use the following flags to control the output:
//
//	-format
//	      whether to format output; one of: [auto, always, never].
//	      auto is the default and will format if the output is being written to a file.
//	-w    write result to the given source files instead of stdout.
//	-l    list files that would be modified without making any changes.
//	-pkg  import path used for scopes of the given source files.
//
// Calls followed by a //throw:skip comment on the same line are left alone.
//
// # Toolexec
//
// throw can also rewrite files while they're compiled,
// leaving the sources untouched:
//
//	go build -toolexec=throw ./...
//
// Only packages that import braces.dev/throw are rewritten.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	gofmt "go/format"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"braces.dev/throw"
)

func main() {
	cmd := &mainCmd{
		Stdin:  os.Stdin,
		Stderr: os.Stderr,
		Stdout: os.Stdout,
		Getenv: os.Getenv,
	}

	exitCode, handled := cmd.handleToolExec(os.Args[1:])
	if !handled {
		exitCode = cmd.Run(os.Args[1:])
	}
	os.Exit(exitCode)
}

type mainParams struct {
	Write    bool     // -w
	List     bool     // -l
	Format   format   // -format
	Pkg      string   // -pkg
	Patterns []string // list of files to process

	ImplicitStdin bool // whether stdin was picked because there were no args
}

func (p *mainParams) shouldFormat() bool {
	switch p.Format {
	case formatAuto:
		return p.Write
	case formatAlways:
		return true
	case formatNever:
		return false
	default:
		panic(fmt.Sprintf("unknown format %q", p.Format))
	}
}

func (p *mainParams) Parse(w io.Writer, args []string) error {
	flag := flag.NewFlagSet("throw", flag.ContinueOnError)
	flag.SetOutput(w)
	flag.Usage = func() {
		fmt.Fprintln(w, "usage: throw [options] <source files | patterns>")
		flag.PrintDefaults()
	}

	flag.Var(&p.Format, "format", "whether to format output; one of: [auto, always, never].\n"+
		"auto is the default and will format if the output is being written to a file.")
	flag.BoolVar(&p.Write, "w", false,
		"write result to the given source files instead of stdout.")
	flag.BoolVar(&p.List, "l", false,
		"list files that would be modified without making any changes.")
	flag.StringVar(&p.Pkg, "pkg", "",
		"import path used for scopes of the given source files.\n"+
			"Defaults to the package name. Packages matched by patterns use their import path.")

	if err := flag.Parse(args); err != nil {
		return throw.Wrap(err)
	}

	p.Patterns = flag.Args()
	if len(p.Patterns) == 0 {
		// Read file from stdin when there's no args, similar to gofmt.
		p.Patterns = []string{"-"}
		p.ImplicitStdin = true
	}

	return nil
}

// format specifies whether the output should be gofmt'd.
type format int

var _ flag.Getter = (*format)(nil)

const (
	// formatAuto formats the output
	// if it's being written to a file
	// but not if it's being written to stdout.
	//
	// This is the default.
	formatAuto format = iota

	// formatAlways always formats the output.
	formatAlways

	// formatNever never formats the output.
	formatNever
)

func (f *format) Get() any {
	return *f
}

// IsBoolFlag tells the flag package that plain "-format" is a valid flag.
// When "-format" is used without a value,
// the flag package will call Set("true") on the flag.
func (f *format) IsBoolFlag() bool {
	return true
}

func (f *format) Set(s string) error {
	switch s {
	case "auto":
		*f = formatAuto
	case "always", "true": // "true" comes from "-format" without a value
		*f = formatAlways
	case "never":
		*f = formatNever
	default:
		return throw.Errorf("invalid format %q is not one of [auto, always, never]", s)
	}
	return nil
}

func (f *format) String() string {
	switch *f {
	case formatAuto:
		return "auto"
	case formatAlways:
		return "always"
	case formatNever:
		return "never"
	default:
		return fmt.Sprintf("format(%d)", *f)
	}
}

type mainCmd struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string

	log *log.Logger
}

func (cmd *mainCmd) Run(args []string) (exitCode int) {
	cmd.log = log.New(cmd.Stderr, "", 0)

	var p mainParams
	if err := p.Parse(cmd.Stderr, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		cmd.log.Printf("throw: %+v", err)
		return 1
	}

	files, err := expandPatterns(p.Patterns)
	if err != nil {
		cmd.log.Printf("throw: %+v", err)
		return 1
	}

	// Paths will be printed relative to CWD.
	// Paths outside it will be printed as-is.
	var workDir string
	if wd, err := os.Getwd(); err == nil {
		workDir = wd + string(filepath.Separator)
	}

	for _, file := range files {
		display := file.Path
		if workDir != "" {
			// Not using filepath.Rel
			// because we don't want any ".."s in the path.
			display = strings.TrimPrefix(file.Path, workDir)
		}
		if display == "-" {
			display = "stdin"
		}

		pkg := file.ImportPath
		if pkg == "" {
			pkg = p.Pkg
		}

		req := fileRequest{
			Format:        p.shouldFormat(),
			Write:         p.Write,
			List:          p.List,
			Filename:      display,
			Filepath:      file.Path,
			ImportPath:    pkg,
			ImplicitStdin: p.ImplicitStdin,
		}
		if err := cmd.processFile(req); err != nil {
			cmd.log.Printf("%s:%+v", display, err)
			exitCode = 1
		}
	}

	return exitCode
}

// sourceFile is a file to process
// along with the import path of its package, if known.
type sourceFile struct {
	Path       string
	ImportPath string
}

// expandPatterns turns the given list of patterns and files
// into a list of paths to files.
//
// Arguments that are already files are returned as-is.
// Arguments that are patterns are expanded using 'go list'.
// As a special case for stdin, "-" is returned as-is.
func expandPatterns(args []string) ([]sourceFile, error) {
	var (
		files    []sourceFile
		patterns []string
	)
	for _, arg := range args {
		if arg == "-" {
			files = append(files, sourceFile{Path: arg})
			continue
		}

		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			files = append(files, sourceFile{Path: arg})
			continue
		}

		patterns = append(patterns, arg)
	}

	if len(patterns) > 0 {
		pkgFiles, err := goListFiles(patterns)
		if err != nil {
			return nil, throw.Wrap(fmt.Errorf("go list: %w", err))
		}

		files = append(files, pkgFiles...)
	}

	return files, nil
}

var _execCommand = exec.Command

func goListFiles(patterns []string) (files []sourceFile, err error) {
	// The -e flag makes 'go list' include erroneous packages.
	// This will even include packages that have all files excluded
	// by build constraints if explicitly requested.
	// (with "path/to/pkg" instead of "./...")
	args := []string{"list", "-find", "-e", "-json"}
	args = append(args, patterns...)

	var stderr bytes.Buffer
	cmd := _execCommand("go", args...)
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, throw.Wrap(fmt.Errorf("create stdout pipe: %w", err))
	}

	if err := cmd.Start(); err != nil {
		return nil, throw.Wrap(fmt.Errorf("start command: %w", err))
	}

	type packageInfo struct {
		Dir            string
		ImportPath     string
		Name           string
		GoFiles        []string
		CgoFiles       []string
		TestGoFiles    []string
		XTestGoFiles   []string
		IgnoredGoFiles []string
	}

	decoder := json.NewDecoder(stdout)
	for decoder.More() {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			return nil, throw.Wrap(fmt.Errorf("output malformed: %w", err))
		}

		for _, group := range []struct {
			files      []string
			importPath string
		}{
			{pkg.GoFiles, pkg.ImportPath},
			{pkg.CgoFiles, pkg.ImportPath},
			{pkg.TestGoFiles, pkg.ImportPath},
			{pkg.XTestGoFiles, pkg.ImportPath + "_test"},
			{pkg.IgnoredGoFiles, pkg.ImportPath},
		} {
			for _, f := range group.files {
				files = append(files, sourceFile{
					Path:       filepath.Join(pkg.Dir, f),
					ImportPath: group.importPath,
				})
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		return nil, throw.Wrap(fmt.Errorf("%w\n%s", err, stderr.String()))
	}

	return files, nil
}

type fileRequest struct {
	Format bool
	Write  bool
	List   bool

	Filename   string // name displayed to the user and recorded in points
	Filepath   string // actual location on disk, or "-" for stdin
	ImportPath string // import path of the package, if known

	ImplicitStdin bool
}

// processFile processes a single file.
// This operates in two phases:
//
// First, it parses the file and finds all the calls that need to be rewritten.
// The collected inserts are then applied to the original source,
// which keeps its layout, comments and line numbers.
func (cmd *mainCmd) processFile(r fileRequest) error {
	src, err := cmd.readFile(r)
	if err != nil {
		return throw.Wrap(err)
	}

	f, err := cmd.parseFile(r.Filename, src, r.ImportPath)
	if err != nil {
		return throw.Wrap(err)
	}

	if r.List {
		if len(f.inserts) > 0 {
			_, err = fmt.Fprintf(cmd.Stdout, "%s\n", r.Filename)
		}
		return throw.Wrap(err)
	}

	var out bytes.Buffer
	if err := cmd.rewriteFile(f, &out); err != nil {
		return throw.Wrap(err)
	}

	outSrc := out.Bytes()
	if r.Format {
		outSrc, err = gofmt.Source(outSrc)
		if err != nil {
			return throw.Wrap(fmt.Errorf("format: %w", err))
		}
	}

	if r.Write {
		err = os.WriteFile(r.Filepath, outSrc, 0o644)
	} else {
		_, err = cmd.Stdout.Write(outSrc)
	}
	return throw.Wrap(err)
}

func (cmd *mainCmd) readFile(r fileRequest) ([]byte, error) {
	if r.Filepath != "-" {
		return throw.Wrap2(os.ReadFile(r.Filepath))
	}

	if r.Write {
		return nil, throw.New("can't use -w with stdin")
	}

	if r.ImplicitStdin {
		// Running with no args reads from stdin, but this is not obvious
		// so print a usage hint to stderr, if we think stdin is a TTY.
		// Best-effort check for a TTY by looking for a character device.
		type statter interface {
			Stat() (os.FileInfo, error)
		}
		if st, ok := cmd.Stdin.(statter); ok {
			if fi, err := st.Stat(); err == nil &&
				fi.Mode()&os.ModeCharDevice == os.ModeCharDevice {
				cmd.log.Println("reading from stdin; use '-h' for help")
			}
		}
	}

	return throw.Wrap2(io.ReadAll(cmd.Stdin))
}
