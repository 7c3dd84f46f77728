package generator

import (
	"fmt"
	"strings"

	"github.com/gridwatch/bmrsgen/internal/spec"
)

// MethodDescriptor is the plan for one generated client method.
type MethodDescriptor struct {
	Name          string
	Operation     spec.OperationDef
	Shape         spec.ResponseShape
	Result        string // model or wrapper type; element type for list shapes
	Primitive     string // canonical primitive kind for ListOfPrimitive
	PathParams    []spec.ParamDef
	RequiredQuery []spec.ParamDef
	OptionalQuery []spec.ParamDef
}

// WrapperDef is a synthesized envelope type for a wrapped response: the
// typed payload under "data" plus whatever sibling properties the inline
// response object declares.
type WrapperDef struct {
	Name string
	Item string // payload model
	List bool   // payload is an array of Item
	Meta []string // sibling property wire names, document order
}

// wrapperPayloadProp is the inline response property holding the typed
// payload.
const wrapperPayloadProp = "data"

// pathPrefixes are leading path segments carrying no meaning for method
// names.
var pathPrefixes = []string{"api", "v1", "bmrs"}

// ResolveEndpoints turns the graph's operations into client method plans.
// modelNames maps raw schema names to their final generated names. Wrapper
// types are minted here, one per distinct payload model and payload
// arity, with names claimed through the registry.
func ResolveEndpoints(g *spec.Graph, modelNames map[string]string, reg *Registry, rep *Report) ([]MethodDescriptor, []WrapperDef, error) {
	var methods []MethodDescriptor
	var wrappers []WrapperDef
	wrapperByKey := make(map[string]string)

	for _, op := range g.Operations {
		name := claimMethodName(op, reg, rep)

		md := MethodDescriptor{Name: name, Operation: op}
		for _, p := range op.Parameters {
			switch {
			case p.In == "path":
				md.PathParams = append(md.PathParams, p)
			case p.In != "query":
				// header parameters are not surfaced in method signatures
			case p.Required:
				md.RequiredQuery = append(md.RequiredQuery, p)
			default:
				md.OptionalQuery = append(md.OptionalQuery, p)
			}
		}

		shape, result, prim, wrap, err := classifyResponse(g, op, modelNames)
		if err != nil {
			return nil, nil, err
		}
		if wrap != nil {
			key := fmt.Sprintf("%s\x00%t", wrap.Item, wrap.List)
			if existing, ok := wrapperByKey[key]; ok {
				result = existing
			} else {
				wrap.Name = claimName(reg, rep, wrap.Name, "wrapper")
				wrapperByKey[key] = wrap.Name
				wrappers = append(wrappers, *wrap)
				result = wrap.Name
			}
		}
		if shape == spec.Untyped {
			rep.add(SeverityInfo, CategoryUntyped, op.ID,
				"response has no resolvable type; the method returns the raw payload")
		}
		md.Shape = shape
		md.Result = result
		md.Primitive = prim
		methods = append(methods, md)
	}
	return methods, wrappers, nil
}

// classifyResponse decides the five-way response shape for one operation.
// A reference to a schema the document never defines is fatal; everything
// the classifier cannot type degrades to Untyped and is reported, never
// rejected.
func classifyResponse(g *spec.Graph, op spec.OperationDef, modelNames map[string]string) (spec.ResponseShape, string, string, *WrapperDef, error) {
	node := op.Response
	if node == nil || !strings.Contains(op.MediaType, "json") && op.MediaType != "" {
		return spec.Untyped, "", "", nil, nil
	}

	if node.Ref != "" {
		model, err := lookupModel(g, modelNames, node.Ref, op)
		if err != nil {
			return "", "", "", nil, err
		}
		if model == "" {
			return spec.Untyped, "", "", nil, nil
		}
		return spec.SingleModel, model, "", nil, nil
	}

	if node.Kind == "array" {
		item := node.Items
		if item == nil {
			return spec.Untyped, "", "", nil, nil
		}
		if item.Ref != "" {
			model, err := lookupModel(g, modelNames, item.Ref, op)
			if err != nil {
				return "", "", "", nil, err
			}
			if model == "" {
				return spec.Untyped, "", "", nil, nil
			}
			return spec.ListOfModel, model, "", nil, nil
		}
		if item.Kind != "" && item.Kind != "object" && item.Kind != "array" {
			return spec.ListOfPrimitive, "", item.Kind, nil, nil
		}
		return spec.Untyped, "", "", nil, nil
	}

	if node.Kind == "object" || len(node.Properties) > 0 {
		payload := node.Properties[wrapperPayloadProp]
		if payload == nil {
			return spec.Untyped, "", "", nil, nil
		}
		ref, list := payload.Ref, false
		if ref == "" && payload.Kind == "array" && payload.Items != nil {
			ref, list = payload.Items.Ref, true
		}
		if ref == "" {
			return spec.Untyped, "", "", nil, nil
		}
		model, err := lookupModel(g, modelNames, ref, op)
		if err != nil {
			return "", "", "", nil, err
		}
		if model == "" {
			return spec.Untyped, "", "", nil, nil
		}
		var meta []string
		for _, prop := range node.PropOrder {
			if prop != wrapperPayloadProp {
				meta = append(meta, prop)
			}
		}
		wrap := &WrapperDef{Name: model + "_Response", Item: model, List: list, Meta: meta}
		return spec.WrappedModel, "", "", wrap, nil
	}

	return spec.Untyped, "", "", nil, nil
}

// lookupModel resolves a response reference to a final model name. The empty
// string means the reference exists but yields no usable type (an empty
// schema); a missing definition is an error.
func lookupModel(g *spec.Graph, modelNames map[string]string, raw string, op spec.OperationDef) (string, error) {
	def, ok := g.Schemas[raw]
	if !ok {
		return "", &spec.SpecError{
			Code:     spec.ReferenceError,
			Message:  fmt.Sprintf("response of %q references undefined schema %q", op.ID, raw),
			Location: op.Path,
		}
	}
	if def.Empty {
		return "", nil
	}
	name, ok := modelNames[raw]
	if !ok {
		return "", &spec.SpecError{
			Code:     spec.ReferenceError,
			Message:  fmt.Sprintf("no model generated for schema %q referenced by %q", raw, op.ID),
			Location: op.Path,
		}
	}
	return name, nil
}

// claimMethodName derives a client method name from the verb and path and
// claims it. Renames from colliding paths are surfaced as warnings.
func claimMethodName(op spec.OperationDef, reg *Registry, rep *Report) string {
	requested := methodName(op.Method, op.Path)
	name := reg.Claim(requested, "method")
	if name != requested {
		rep.add(SeverityWarning, CategoryMethodRename, op.ID,
			"method name %q already taken; assigned %q", requested, name)
	}
	return name
}

var verbPrefix = map[spec.HttpMethod]string{
	spec.GET:    "Get",
	spec.POST:   "Create",
	spec.PUT:    "Update",
	spec.PATCH:  "Update",
	spec.DELETE: "Delete",
}

// methodName builds the exported method name: verb prefix plus the path's
// meaningful segments camel-cased. Parameter segments and the common API
// prefix are dropped.
func methodName(method spec.HttpMethod, path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for len(segs) > 0 && isPrefixSegment(segs[0]) {
		segs = segs[1:]
	}
	var b strings.Builder
	prefix, ok := verbPrefix[method]
	if !ok {
		prefix = spec.ExportedName(string(method))
	}
	b.WriteString(prefix)
	for _, seg := range segs {
		if seg == "" || strings.HasPrefix(seg, "{") {
			continue
		}
		b.WriteString(spec.ExportedName(spec.LogicalName(seg)))
	}
	if b.Len() == len(prefix) {
		b.WriteString("Root")
	}
	return b.String()
}

func isPrefixSegment(seg string) bool {
	for _, p := range pathPrefixes {
		if strings.EqualFold(seg, p) {
			return true
		}
	}
	return false
}
