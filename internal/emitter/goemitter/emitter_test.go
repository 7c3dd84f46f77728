package goemitter

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/gridwatch/bmrsgen/internal/generator"
	"github.com/gridwatch/bmrsgen/internal/spec"
)

func minimalPlan(t *testing.T) *generator.Result {
	t.Helper()

	field := func(schema, wire, kind string) spec.FieldDef {
		return spec.FieldDef{
			Name:     spec.LogicalName(wire),
			WireName: wire,
			Type:     spec.FieldType{Kind: kind},
			Schema:   schema,
		}
	}
	row := &spec.SchemaDef{
		Name:       "AbucRow",
		SourcePath: "#/components/schemas/AbucRow",
		Fields: []spec.FieldDef{
			field("AbucRow", "dataset", "string"),
			field("AbucRow", "settlementDate", "string"),
			field("AbucRow", "quantity", "number"),
		},
	}
	g := &spec.Graph{
		Title:       "Sample Insights",
		Version:     "1.0",
		Schemas:     map[string]*spec.SchemaDef{"AbucRow": row},
		SchemaNames: []string{"AbucRow"},
		Operations: []spec.OperationDef{
			{
				ID: "get /datasets/ABUC", Method: spec.GET, Path: "/datasets/ABUC",
				Parameters: []spec.ParamDef{
					{Name: "settlement_date", WireName: "settlementDate", In: "query", Required: true, Type: spec.FieldType{Kind: "string"}},
					{Name: "format", WireName: "format", In: "query", Type: spec.FieldType{Kind: "string"}},
				},
				Response:  &spec.SchemaNode{Kind: "array", Items: &spec.SchemaNode{Ref: "AbucRow"}},
				MediaType: "application/json",
			},
		},
	}
	res, err := generator.Run(context.Background(), g, generator.DefaultOptions())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	return res
}

func TestEmitDryRunPlan(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	res, err := Emit(ctx, minimalPlan(t), Options{
		OutDir:      dir,
		PackageName: "bmrs",
		ModuleName:  "example.com/bmrsclient",
		DryRun:      true,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.PackageName != "bmrs" || res.ModuleName != "example.com/bmrsclient" {
		t.Fatalf("names mismatch: %+v", res)
	}

	want := []string{
		"GENERATION_REPORT.md",
		"README.md",
		filepath.ToSlash(filepath.Join("bmrs", "client.go")),
		filepath.ToSlash(filepath.Join("bmrs", "enums.go")),
		filepath.ToSlash(filepath.Join("bmrs", "mixins.go")),
		filepath.ToSlash(filepath.Join("bmrs", "models.go")),
		"go.mod",
	}
	got := make([]string, 0, len(res.Planned))
	for _, pf := range res.Planned {
		got = append(got, pf.RelPath)
	}
	sort.Strings(got)
	if len(got) != len(want) {
		t.Fatalf("planned files mismatch:\n got %v\nwant %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("planned files mismatch:\n got %v\nwant %v", got, want)
		}
	}

	// Dry run writes nothing.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty output dir, got %d entries", len(entries))
	}
}

func TestEmitWritesDeterministically(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	plan := minimalPlan(t)

	emitTo := func(dir string) map[string]string {
		if _, err := Emit(ctx, plan, Options{OutDir: dir, PackageName: "bmrs"}); err != nil {
			t.Fatalf("emit: %v", err)
		}
		out := map[string]string{}
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return err
			}
			data, rerr := os.ReadFile(path)
			if rerr != nil {
				return rerr
			}
			rel, rerr := filepath.Rel(dir, path)
			if rerr != nil {
				return rerr
			}
			out[filepath.ToSlash(rel)] = string(data)
			return nil
		})
		if err != nil {
			t.Fatalf("walk: %v", err)
		}
		return out
	}

	first := emitTo(t.TempDir())
	second := emitTo(t.TempDir())
	if len(first) != len(second) {
		t.Fatalf("file count differs: %d vs %d", len(first), len(second))
	}
	for rel, content := range first {
		if second[rel] != content {
			t.Fatalf("file %s differs between runs", rel)
		}
	}
}

func TestEmitRefusesNonEmptyDirWithoutForce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed dir: %v", err)
	}

	_, err := Emit(ctx, minimalPlan(t), Options{OutDir: dir})
	if err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Fatalf("expected non-empty dir error, got %v", err)
	}

	if _, err := Emit(ctx, minimalPlan(t), Options{OutDir: dir, Force: true}); err != nil {
		t.Fatalf("emit with force: %v", err)
	}
}

func TestEmittedModelsContainExpectedDeclarations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	if _, err := Emit(ctx, minimalPlan(t), Options{OutDir: dir, PackageName: "bmrs"}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	models, err := os.ReadFile(filepath.Join(dir, "bmrs", "models.go"))
	if err != nil {
		t.Fatalf("read models.go: %v", err)
	}
	for _, snippet := range []string{
		"type AbucRow struct {",
		"`json:\"dataset\"`",
		"`json:\"settlementDate\"`",
	} {
		if !strings.Contains(string(models), snippet) {
			t.Errorf("models.go missing %q", snippet)
		}
	}

	client, err := os.ReadFile(filepath.Join(dir, "bmrs", "client.go"))
	if err != nil {
		t.Fatalf("read client.go: %v", err)
	}
	for _, snippet := range []string{
		"func NewClient(",
		"func (c *Client) GetDatasetsAbuc(ctx context.Context, settlementDate string, opts *GetDatasetsAbucOptions)",
		"respond.Result[[]AbucRow]",
		"q.Set(\"settlementDate\", fmt.Sprint(settlementDate))",
	} {
		if !strings.Contains(string(client), snippet) {
			t.Errorf("client.go missing %q", snippet)
		}
	}
}

func TestSanitizePackageName(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"BMRS Client", "bmrsclient"},
		{"", ""},
		{"9grid", "p9grid"},
		{"_pad_", "pad"},
	}
	for _, tc := range cases {
		if got := sanitizePackageName(tc.in); got != tc.want {
			t.Errorf("sanitizePackageName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
