package main

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"braces.dev/throw"
)

// _toolExecVersion is appended to the compiler's version
// so that the build cache tells rewritten builds apart.
// It must change whenever the rewrite changes.
const _toolExecVersion = "throw1"

func (cmd *mainCmd) handleToolExec(args []string) (exitCode int, handled bool) {
	// In toolexec mode, we're passed the original command + arguments.
	if len(args) == 0 || !filepath.IsAbs(args[0]) {
		return -1, false
	}

	if cmd.log == nil {
		cmd.log = log.New(cmd.Stderr, "throw: ", 0)
	}

	for _, arg := range args {
		if arg == "-V=full" {
			// compile is run first with "-V=full" to get a version number
			// for caching build IDs.
			// No TOOLEXEC_IMPORTPATH is set in this case.
			return cmd.toolExecVersion(args), true
		}
	}

	if cmd.Getenv == nil {
		cmd.Getenv = os.Getenv
	}
	// When "-toolexec" is used, the go cmd sets the package being compiled in the env.
	if pkg := cmd.Getenv("TOOLEXEC_IMPORTPATH"); pkg != "" {
		return cmd.toolExecRewrite(trimTestSuffix(pkg), args), true
	}

	return -1, false
}

func (cmd *mainCmd) toolExecVersion(args []string) int {
	tool := exec.Command(args[0], args[1:]...)
	var stdout bytes.Buffer
	tool.Stdout = &stdout
	tool.Stderr = cmd.Stderr
	if err := tool.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}

		fmt.Fprintf(cmd.Stderr, "%v failed: %v", args[0], err)
		return 1
	}

	fmt.Fprintf(cmd.Stdout, "%s-%s\n", strings.TrimSpace(stdout.String()), _toolExecVersion)
	return 0
}

func (cmd *mainCmd) toolExecRewrite(pkg string, args []string) (exitCode int) {
	// We only need to modify the arguments for "compile" calls which work with .go files.
	if !isCompile(args[0]) {
		return cmd.runOriginal(args)
	}

	// We only modify files that import throw, so stdlib is never eligible.
	// To avoid unnecessary parsing, use a heuristic to detect stdlib packages:
	// whether the name contains ".".
	// throw itself only refers to the "At" functions.
	if !strings.Contains(pkg, ".") || pkg == _throwImport {
		return cmd.runOriginal(args)
	}

	exitCode, err := cmd.rewriteCompile(pkg, args)
	if err != nil {
		cmd.log.Printf("%+v", err)
		return 1
	}

	return exitCode
}

func (cmd *mainCmd) rewriteCompile(pkg string, args []string) (exitCode int, _ error) {
	parsed := make(map[string]parsedFile)
	paths := make(map[string]string) // arg to absolute path
	var needRewrite bool
	for _, arg := range args {
		if !isGoFile(arg) {
			continue
		}

		contents, err := os.ReadFile(arg)
		if err != nil {
			return -1, throw.Wrap(err)
		}

		// Points refer to files by absolute path
		// the same way the runtime reports them.
		path, err := filepath.Abs(arg)
		if err != nil {
			return -1, throw.Wrap(err)
		}

		path = filepath.ToSlash(path)
		paths[arg] = path

		f, err := cmd.parseFile(path, contents, pkg)
		if err != nil {
			return -1, throw.Wrap(err)
		}
		parsed[arg] = f

		if f.importsThrow && len(f.inserts) > 0 {
			needRewrite = true
		}
	}

	if !needRewrite {
		return cmd.runOriginal(args), nil
	}

	// Use a temporary directory per-package that is rewritten.
	tempDir, err := os.MkdirTemp("", filepath.Base(pkg))
	if err != nil {
		return -1, throw.Wrap(err)
	}
	defer os.RemoveAll(tempDir) //nolint:errcheck // best-effort removal of temp files.

	newArgs := make([]string, 0, len(args))
	for _, arg := range args {
		f, ok := parsed[arg]
		if !ok || len(f.inserts) == 0 {
			newArgs = append(newArgs, arg)
			continue
		}

		// Add a //line directive so the original filepath is used in errors and panics.
		var out bytes.Buffer
		_, _ = fmt.Fprintf(&out, "//line %v:1\n", paths[arg])

		if err := cmd.rewriteFile(f, &out); err != nil {
			return -1, throw.Wrap(err)
		}

		newFile := filepath.Join(tempDir, filepath.Base(arg))
		if err := os.WriteFile(newFile, out.Bytes(), 0o666); err != nil {
			return -1, throw.Wrap(err)
		}

		newArgs = append(newArgs, newFile)
	}

	return cmd.runOriginal(newArgs), nil
}

func isCompile(arg string) bool {
	if runtime.GOOS == "windows" {
		arg = strings.TrimSuffix(arg, ".exe")
	}
	return strings.HasSuffix(arg, "compile")
}

func isGoFile(arg string) bool {
	return strings.HasSuffix(arg, ".go")
}

func (cmd *mainCmd) runOriginal(args []string) (exitCode int) {
	tool := exec.Command(args[0], args[1:]...)
	tool.Stdin = cmd.Stdin
	tool.Stdout = cmd.Stdout
	tool.Stderr = cmd.Stderr

	if err := tool.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(cmd.Stderr, "tool failed: %v", err)
		return 1
	}

	return 0
}
