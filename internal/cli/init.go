package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath    string
	OverridesPath string
	Force         bool
	Verbose       bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample bmrsgen configuration and override file",
		Long:  "Scaffold a commented bmrsgen configuration file plus a required-field override table that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			overrides, err := cmd.Flags().GetString("overrides-out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath:    out,
				OverridesPath: overrides,
				Force:         force,
				Verbose:       verbose,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", "bmrsgen.yaml", "Where to write the sample config file")
	cmd.Flags().String("overrides-out", "overrides.yaml", "Where to write the sample override table (empty to skip)")
	cmd.Flags().Bool("force", false, "Overwrite the target files if they already exist")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "bmrsgen.yaml"
	}
	if err := writeScaffold(out, sampleConfigYAML, cfg.Force); err != nil {
		return err
	}

	if overrides := strings.TrimSpace(cfg.OverridesPath); overrides != "" {
		if err := writeScaffold(overrides, sampleOverridesYAML, cfg.Force); err != nil {
			return err
		}
	}
	return nil
}

func writeScaffold(path, content string, force bool) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	body := strings.TrimSpace(content) + "\n"

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(body), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# bmrsgen configuration (YAML)
# All fields are optional. Command-line flags override config values, which
# override BMRSGEN_* environment variables.

# Path or URL to the OpenAPI document (http/https or local file).
# input: ./openapi.yaml

# Output directory. When omitted, derived from the document title.
# out: ./client

# Emitted package name. Defaults to bmrs.
# packageName: bmrs

# Emitted go module name. Defaults to the package name.
# moduleName: example.com/bmrsclient

# Minimum number of schemas sharing a field before it becomes a mixin.
# threshold: 3

# Path to a required-field override table (see overrides.yaml).
# overrides: ./overrides.yaml

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite non-empty output directory.
# force: false

# Enable verbose logging.
# verbose: false
`

// sampleOverridesYAML documents the required-field override table format.
const sampleOverridesYAML = `# Required-field overrides (YAML list).
# Each entry pins one field's requiredness, beating both the document's
# declared required list and the example-presence heuristic.
#
# schema: exact schema name, or "*" (default) to match all schemas
# field:  wire name of the field, as spelled in the document
# value:  true (default) or false
#
# - field: settlementDate
# - schema: Abuc
#   field: quantity
#   value: false
`
