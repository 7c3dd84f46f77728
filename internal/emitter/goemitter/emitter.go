// Package goemitter renders a generation plan into a Go client package:
// model structs, shared field mixins, named enum types and one typed method
// per operation. Output is deterministic; emitting the same plan twice
// produces byte-identical files.
package goemitter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gridwatch/bmrsgen/internal/generator"
)

// runtimeModule is the module providing the decode runtime the emitted
// client imports.
const runtimeModule = "github.com/gridwatch/bmrsgen"

// Options controls how the Go emitter renders a client package.
type Options struct {
	OutDir      string // required; target directory to write the package
	PackageName string // emitted package name; defaults to "bmrs"
	ModuleName  string // emitted go module name; defaults to PackageName
	Force       bool   // overwrite a non-empty output directory
	DryRun      bool   // don't write, only plan
	Verbose     bool
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the planned files and final resolved names.
type Result struct {
	PackageName string
	ModuleName  string
	Planned     []PlannedFile
}

// Emit renders the client package for a completed generation plan.
func Emit(ctx context.Context, plan *generator.Result, opts Options) (*Result, error) {
	_ = ctx
	if plan == nil {
		return nil, fmt.Errorf("goemitter: nil plan")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("goemitter: OutDir is required")
	}
	pkg := sanitizePackageName(opts.PackageName)
	if pkg == "" {
		pkg = "bmrs"
	}
	moduleName := strings.TrimSpace(opts.ModuleName)
	if moduleName == "" {
		moduleName = pkg
	}

	data := newTemplateData(pkg, moduleName, plan)

	files := map[string][]byte{}
	files["go.mod"] = []byte(renderGoMod(data))
	files["README.md"] = []byte(renderReadme(data))
	files["GENERATION_REPORT.md"] = []byte(renderReport(data))
	files[filepath.Join(pkg, "enums.go")] = []byte(renderEnumsGo(data))
	files[filepath.Join(pkg, "mixins.go")] = []byte(renderMixinsGo(data))
	files[filepath.Join(pkg, "models.go")] = []byte(renderModelsGo(data))
	files[filepath.Join(pkg, "client.go")] = []byte(renderClientGo(data))

	rels := make([]string, 0, len(files))
	for p := range files {
		rels = append(rels, filepath.ToSlash(p))
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
	}

	if !opts.DryRun {
		if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
			return nil, err
		}
	}

	return &Result{PackageName: pkg, ModuleName: moduleName, Planned: planned}, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("goemitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
		// atomic write via temp file + rename
		tmp := p + ".tmp-" + time.Now().Format("20060102150405")
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write temp %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", rel, err)
		}
	}
	return nil
}

func sanitizePackageName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	b := strings.Builder{}
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	out := strings.Trim(b.String(), "_")
	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "p" + out
	}
	return out
}
