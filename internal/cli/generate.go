package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	goemitter "github.com/gridwatch/bmrsgen/internal/emitter/goemitter"
	"github.com/gridwatch/bmrsgen/internal/generator"
	genspec "github.com/gridwatch/bmrsgen/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command
// after merging defaults, environment, config file values, and CLI
// overrides.
type GenerateConfig struct {
	Input         string `env:"BMRSGEN_INPUT"`
	Out           string `env:"BMRSGEN_OUT"`
	PackageName   string `env:"BMRSGEN_PACKAGE"`
	ModuleName    string `env:"BMRSGEN_MODULE"`
	Threshold     int    `env:"BMRSGEN_THRESHOLD"`
	OverridesFile string `env:"BMRSGEN_OVERRIDES"`
	ConfigPath    string `env:"-"`
	DryRun        bool   `env:"BMRSGEN_DRY_RUN"`
	Force         bool   `env:"BMRSGEN_FORCE"`
	Verbose       bool   `env:"BMRSGEN_VERBOSE"`
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{Threshold: generator.DefaultThreshold}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a typed Go client package from an OpenAPI document",
		Long: "Generate a typed Go client package from an OpenAPI document. " +
			"Options can be provided via flags, config files, environment variables, or defaults.",
		Example: strings.TrimSpace(`  bmrsgen generate --input openapi.yaml --out ./client
  bmrsgen --config bmrsgen.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the OpenAPI document")
	flags.String("out", "", "Output directory (derived from document title when omitted)")
	flags.String("package-name", "", "Emitted package name (defaults to bmrs)")
	flags.String("module-name", "", "Emitted go module name (defaults to the package name)")
	flags.Int("threshold", generator.DefaultThreshold, "Minimum schema count before a shared field becomes a mixin")
	flags.String("overrides", "", "Path to a required-field override file (YAML)")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	if err := env.Parse(&cfg); err != nil {
		return nil, newUsageError(fmt.Sprintf("generate: environment: %v", err))
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("package-name") {
		value, err := flags.GetString("package-name")
		if err != nil {
			return err
		}
		cfg.PackageName = strings.TrimSpace(value)
	}
	if flags.Changed("module-name") {
		value, err := flags.GetString("module-name")
		if err != nil {
			return err
		}
		cfg.ModuleName = strings.TrimSpace(value)
	}
	if flags.Changed("threshold") {
		value, err := flags.GetInt("threshold")
		if err != nil {
			return err
		}
		cfg.Threshold = value
	}
	if flags.Changed("overrides") {
		value, err := flags.GetString("overrides")
		if err != nil {
			return err
		}
		cfg.OverridesFile = strings.TrimSpace(value)
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		cfg.Verbose = value
	}

	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.PackageName = strings.TrimSpace(c.PackageName)
	c.ModuleName = strings.TrimSpace(c.ModuleName)
	c.OverridesFile = strings.TrimSpace(c.OverridesFile)
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag, config file, or BMRSGEN_INPUT)")
	}
	if c.Threshold < 1 {
		return newUsageError(fmt.Sprintf("generate: --threshold must be at least 1, got %d", c.Threshold))
	}
	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	log := newLogger(cfg.Verbose)
	defer func() { _ = log.Sync() }()

	doc, err := genspec.Load(ctx, cfg.Input)
	if err != nil {
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}

	graph, err := genspec.BuildGraph(doc)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	opts := generator.DefaultOptions()
	opts.Threshold = cfg.Threshold
	opts.Logger = log
	if cfg.OverridesFile != "" {
		extra, err := loadOverridesFile(cfg.OverridesFile)
		if err != nil {
			return err
		}
		// file entries come last so they beat the built-in table
		opts.Overrides = append(opts.Overrides, extra...)
	}

	plan, err := generator.Run(ctx, graph, opts)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	outDir := cfg.Out
	if outDir == "" {
		outDir = deriveOutDir(graph.Title)
	}
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	res, err := goemitter.Emit(ctx, plan, goemitter.Options{
		OutDir:      outDir,
		PackageName: cfg.PackageName,
		ModuleName:  cfg.ModuleName,
		Force:       cfg.Force,
		DryRun:      cfg.DryRun,
		Verbose:     cfg.Verbose,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	if cfg.DryRun {
		printPlan(absOut, len(res.Planned), func() []string {
			paths := make([]string, 0, len(res.Planned))
			for _, p := range res.Planned {
				paths = append(paths, p.RelPath)
			}
			return paths
		}())
		return nil
	}

	fmt.Fprintf(os.Stdout, "Generated %d models, %d mixins, %d enums, %d methods in %s\n",
		len(plan.Models), len(plan.Mixins), len(plan.Enums), len(plan.Methods), absOut)
	if n := len(plan.Report.Warnings()); n > 0 {
		fmt.Fprintf(os.Stdout, "%d warning(s); see GENERATION_REPORT.md\n", n)
	}
	return nil
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func deriveOutDir(title string) string {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" {
		return "client"
	}
	repl := strings.NewReplacer("/", " ", "_", " ", ".", " ", ",", " ", ":", " ")
	parts := strings.Fields(repl.Replace(t))
	if len(parts) == 0 {
		return "client"
	}
	return strings.Join(parts, "-")
}

// overrideEntry is one row of the required-field override file. Value
// defaults to true when omitted.
type overrideEntry struct {
	Schema string `yaml:"schema"`
	Field  string `yaml:"field"`
	Value  *bool  `yaml:"value"`
}

func loadOverridesFile(path string) ([]generator.Override, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("read overrides file %q: %v", path, err))
	}
	var entries []overrideEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, newUsageError(fmt.Sprintf("parse overrides file %q: %v", path, err))
	}
	out := make([]generator.Override, 0, len(entries))
	for i, e := range entries {
		field := strings.TrimSpace(e.Field)
		if field == "" {
			return nil, newUsageError(fmt.Sprintf("overrides file %q: entry %d has no field", path, i))
		}
		value := true
		if e.Value != nil {
			value = *e.Value
		}
		out = append(out, generator.Override{
			Schema: strings.TrimSpace(e.Schema),
			Field:  field,
			Value:  value,
		})
	}
	return out, nil
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	for key, value := range raw {
		normalized := normalizeKey(key)
		switch normalized {
		case "input":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Input = str
		case "out":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Out = str
		case "packagename":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.PackageName = str
		case "modulename":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.ModuleName = str
		case "threshold":
			n, err := valueAsInt(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Threshold = n
		case "overrides":
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.OverridesFile = str
		case "dryrun":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.DryRun = val
		case "force":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Force = val
		case "verbose":
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			cfg.Verbose = val
		default:
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsInt(v any) (int, error) {
	switch val := v.(type) {
	case int:
		return val, nil
	case float64:
		return int(val), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}
