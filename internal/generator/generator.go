// Package generator plans typed client code from a schema graph: shared
// field mixins, named enums, model descriptors and client method plans. The
// plan is deterministic; running twice over the same graph with the same
// options yields identical output.
package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/gridwatch/bmrsgen/internal/spec"
)

// DefaultThreshold is the minimum number of consuming schemas before a
// shared signature is promoted to a mixin.
const DefaultThreshold = 3

// Options configure one generation run.
type Options struct {
	Threshold  int
	PairGroups []PairGroup
	Behaviors  []BehaviorRule
	Overrides  []Override
	Logger     *zap.Logger
}

// DefaultOptions returns the built-in BMRS-tuned configuration.
func DefaultOptions() Options {
	return Options{
		Threshold:  DefaultThreshold,
		PairGroups: DefaultPairGroups(),
		Behaviors:  DefaultBehaviors(),
		Overrides:  DefaultOverrides(),
	}
}

// Result is the completed plan handed to an emitter.
type Result struct {
	Graph       *spec.Graph
	Mixins      []MixinDef
	Enums       []EnumDef
	EnumByField map[string]string
	Models      []ModelDescriptor
	Methods     []MethodDescriptor
	Wrappers    []WrapperDef
	Renames     []Rename
	Report      *Report
}

// Run executes the full planning pipeline: catalog, mixins, enums, models,
// endpoints. All naming flows through one registry so no two artifacts of
// any kind share a name.
func Run(ctx context.Context, g *spec.Graph, opts Options) (*Result, error) {
	if g == nil {
		return nil, &spec.SpecError{Code: spec.InputError, Message: "generator: nil graph"}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}

	reg := NewRegistry()
	rep := &Report{}

	cat := BuildCatalog(g, opts.PairGroups)
	log.Info("catalog built",
		zap.Int("schemas", len(g.SchemaNames)),
		zap.Int("signatures", len(cat.Signatures())),
		zap.Int("pairs", len(cat.Pairs())))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mixins := ExtractMixins(cat, opts.Threshold, opts.Behaviors, reg, rep)
	log.Info("mixins extracted", zap.Int("count", len(mixins)))

	enums, enumByField := SynthesizeEnums(g, reg, rep)
	log.Info("enums synthesized", zap.Int("count", len(enums)))

	overrides := NewOverrideTable(opts.Overrides)
	models := SynthesizeModels(g, mixins, enumByField, overrides, reg, rep)
	log.Info("models synthesized", zap.Int("count", len(models)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	modelNames := make(map[string]string, len(models))
	for _, m := range models {
		modelNames[m.Schema.Name] = m.Name
	}
	methods, wrappers, err := ResolveEndpoints(g, modelNames, reg, rep)
	if err != nil {
		return nil, err
	}
	log.Info("endpoints resolved",
		zap.Int("methods", len(methods)),
		zap.Int("wrappers", len(wrappers)))

	for _, d := range rep.Warnings() {
		log.Warn(d.Message,
			zap.String("category", d.Category),
			zap.String("subject", d.Subject))
	}

	return &Result{
		Graph:       g,
		Mixins:      mixins,
		Enums:       enums,
		EnumByField: enumByField,
		Models:      models,
		Methods:     methods,
		Wrappers:    wrappers,
		Renames:     reg.Renames(),
		Report:      rep,
	}, nil
}
