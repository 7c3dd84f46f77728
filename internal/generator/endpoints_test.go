package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridwatch/bmrsgen/internal/spec"
)

func resolve(t *testing.T, g *spec.Graph) ([]MethodDescriptor, []WrapperDef, *Report) {
	t.Helper()
	names := make(map[string]string, len(g.SchemaNames))
	for _, raw := range g.SchemaNames {
		names[raw] = spec.ModelName(raw)
	}
	rep := &Report{}
	methods, wrappers, err := ResolveEndpoints(g, names, NewRegistry(), rep)
	require.NoError(t, err)
	return methods, wrappers, rep
}

func op(method spec.HttpMethod, path string, resp *spec.SchemaNode) spec.OperationDef {
	return spec.OperationDef{
		ID:        string(method) + " " + path,
		Method:    method,
		Path:      path,
		Response:  resp,
		MediaType: "application/json",
	}
}

func TestResolveListOfModel(t *testing.T) {
	t.Parallel()

	g := testGraph(schemaDef("AbucRow", strField("AbucRow", "dataset")))
	g.Operations = []spec.OperationDef{
		op(spec.GET, "/datasets/ABUC/stream", &spec.SchemaNode{Kind: "array", Items: &spec.SchemaNode{Ref: "AbucRow"}}),
	}

	methods, wrappers, _ := resolve(t, g)
	require.Len(t, methods, 1)
	assert.Empty(t, wrappers)

	m := methods[0]
	assert.Equal(t, "GetDatasetsAbucStream", m.Name)
	assert.Equal(t, spec.ListOfModel, m.Shape)
	assert.Equal(t, "AbucRow", m.Result)
}

func TestResolveSingleModel(t *testing.T) {
	t.Parallel()

	g := testGraph(schemaDef("Summary", strField("Summary", "dataset")))
	g.Operations = []spec.OperationDef{
		op(spec.GET, "/summary", &spec.SchemaNode{Ref: "Summary"}),
	}

	methods, _, _ := resolve(t, g)
	require.Len(t, methods, 1)
	assert.Equal(t, spec.SingleModel, methods[0].Shape)
	assert.Equal(t, "Summary", methods[0].Result)
}

func TestResolveWrappedModel(t *testing.T) {
	t.Parallel()

	g := testGraph(schemaDef("AbucRow", strField("AbucRow", "dataset")))
	wrapped := &spec.SchemaNode{
		Kind: "object",
		Properties: map[string]*spec.SchemaNode{
			"data":         {Kind: "array", Items: &spec.SchemaNode{Ref: "AbucRow"}},
			"metadata":     {Kind: "object"},
			"totalRecords": {Kind: "integer"},
		},
		PropOrder: []string{"data", "metadata", "totalRecords"},
	}
	g.Operations = []spec.OperationDef{op(spec.GET, "/datasets/ABUC", wrapped)}

	methods, wrappers, _ := resolve(t, g)
	require.Len(t, methods, 1)
	require.Len(t, wrappers, 1)

	assert.Equal(t, spec.WrappedModel, methods[0].Shape)
	assert.Equal(t, "AbucRow_Response", methods[0].Result)

	w := wrappers[0]
	assert.Equal(t, "AbucRow_Response", w.Name)
	assert.Equal(t, "AbucRow", w.Item)
	assert.True(t, w.List)
	assert.Equal(t, []string{"metadata", "totalRecords"}, w.Meta)
}

func TestResolveWrapperDeduplicated(t *testing.T) {
	t.Parallel()

	g := testGraph(schemaDef("Row", strField("Row", "dataset")))
	wrapped := func() *spec.SchemaNode {
		return &spec.SchemaNode{
			Kind:       "object",
			Properties: map[string]*spec.SchemaNode{"data": {Kind: "array", Items: &spec.SchemaNode{Ref: "Row"}}},
			PropOrder:  []string{"data"},
		}
	}
	g.Operations = []spec.OperationDef{
		op(spec.GET, "/one", wrapped()),
		op(spec.GET, "/two", wrapped()),
	}

	methods, wrappers, _ := resolve(t, g)
	require.Len(t, methods, 2)
	require.Len(t, wrappers, 1)
	assert.Equal(t, methods[0].Result, methods[1].Result)
}

func TestResolveListOfPrimitive(t *testing.T) {
	t.Parallel()

	g := testGraph()
	g.Operations = []spec.OperationDef{
		op(spec.GET, "/fuel-types", &spec.SchemaNode{Kind: "array", Items: &spec.SchemaNode{Kind: "string"}}),
	}
	methods, _, _ := resolve(t, g)
	require.Len(t, methods, 1)
	assert.Equal(t, spec.ListOfPrimitive, methods[0].Shape)
	assert.Equal(t, "string", methods[0].Primitive)
}

func TestResolveUntypedVariants(t *testing.T) {
	t.Parallel()

	g := testGraph(schemaDef("Nothing"))
	g.Operations = []spec.OperationDef{
		// No response schema at all.
		op(spec.GET, "/no-schema", nil),
		// Inline object without a data payload.
		op(spec.GET, "/plain-object", &spec.SchemaNode{Kind: "object", Properties: map[string]*spec.SchemaNode{"x": {Kind: "string"}}, PropOrder: []string{"x"}}),
		// Reference to an empty schema.
		op(spec.GET, "/empty-ref", &spec.SchemaNode{Ref: "Nothing"}),
	}
	methods, _, rep := resolve(t, g)
	require.Len(t, methods, 3)
	for _, m := range methods {
		assert.Equal(t, spec.Untyped, m.Shape, m.Name)
	}
	assert.Equal(t, 3, rep.Count(CategoryUntyped))
}

func TestResolveNonJSONIsUntyped(t *testing.T) {
	t.Parallel()

	g := testGraph(schemaDef("Row", strField("Row", "dataset")))
	o := op(spec.GET, "/csv", &spec.SchemaNode{Ref: "Row"})
	o.MediaType = "text/csv"
	g.Operations = []spec.OperationDef{o}

	methods, _, _ := resolve(t, g)
	require.Len(t, methods, 1)
	assert.Equal(t, spec.Untyped, methods[0].Shape)
}

func TestResolveDanglingRefFails(t *testing.T) {
	t.Parallel()

	g := testGraph()
	g.Operations = []spec.OperationDef{
		op(spec.GET, "/broken", &spec.SchemaNode{Ref: "Missing"}),
	}
	_, _, err := ResolveEndpoints(g, map[string]string{}, NewRegistry(), &Report{})
	var se *spec.SpecError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, spec.ReferenceError, se.Code)
}

func TestResolveMethodNaming(t *testing.T) {
	t.Parallel()

	g := testGraph()
	g.Operations = []spec.OperationDef{
		op(spec.GET, "/balancing/settlement/market-index/{settlementDate}", nil),
		op(spec.GET, "/", nil),
	}
	methods, _, _ := resolve(t, g)
	require.Len(t, methods, 2)
	assert.Equal(t, "GetBalancingSettlementMarketIndex", methods[0].Name)
	assert.Equal(t, "GetRoot", methods[1].Name)
}

func TestResolveMethodRenameOnCollision(t *testing.T) {
	t.Parallel()

	g := testGraph()
	g.Operations = []spec.OperationDef{
		// Both collapse to the same method name once parameters are dropped.
		op(spec.GET, "/demand/{id}", nil),
		op(spec.GET, "/demand", nil),
	}
	methods, _, rep := resolve(t, g)
	require.Len(t, methods, 2)
	assert.Equal(t, "GetDemand", methods[0].Name)
	assert.Equal(t, "GetDemand_2", methods[1].Name)
	assert.Equal(t, 1, rep.Count(CategoryMethodRename))
}

func TestResolveParameterGrouping(t *testing.T) {
	t.Parallel()

	g := testGraph()
	o := op(spec.GET, "/balancing/{bmUnit}", nil)
	o.Parameters = []spec.ParamDef{
		{Name: "format", WireName: "format", In: "query"},
		{Name: "bm_unit", WireName: "bmUnit", In: "path", Required: true},
		{Name: "from", WireName: "from", In: "query", Required: true},
		{Name: "x_trace", WireName: "X-Trace", In: "header"},
	}
	g.Operations = []spec.OperationDef{o}

	methods, _, _ := resolve(t, g)
	require.Len(t, methods, 1)
	m := methods[0]
	require.Len(t, m.PathParams, 1)
	assert.Equal(t, "bmUnit", m.PathParams[0].WireName)
	require.Len(t, m.RequiredQuery, 1)
	assert.Equal(t, "from", m.RequiredQuery[0].WireName)
	require.Len(t, m.OptionalQuery, 1)
	assert.Equal(t, "format", m.OptionalQuery[0].WireName)
}
