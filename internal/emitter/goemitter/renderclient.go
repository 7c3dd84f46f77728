package goemitter

import (
	"fmt"
	"strings"

	"github.com/gridwatch/bmrsgen/internal/generator"
	"github.com/gridwatch/bmrsgen/internal/spec"
)

// defaultBaseURL is the production endpoint of the upstream API.
const defaultBaseURL = "https://data.elexon.co.uk/bmrs/api/v1"

func renderClientGo(d *templateData) string {
	var b strings.Builder

	b.WriteString(clientCore(d))
	for _, m := range d.Plan.Methods {
		b.WriteString(d.renderMethod(m))
	}

	usesJSON, usesRespond := false, false
	for _, m := range d.Plan.Methods {
		if m.Shape == spec.Untyped {
			usesJSON = true
		} else {
			usesRespond = true
		}
	}
	imports := []string{"context"}
	if usesJSON {
		imports = append(imports, "encoding/json")
	}
	imports = append(imports, "fmt", "io", "net/http", "net/url", "strings")
	if usesRespond {
		imports = append(imports, "", runtimeModule+"/pkg/respond")
	}
	return headerGrouped(d, imports) + b.String()
}

// headerGrouped renders the file preamble with a blank-line separated import
// block; an empty element starts a new group.
func headerGrouped(d *templateData, imports []string) string {
	var b strings.Builder
	b.WriteString("// Code generated by bmrsgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", d.Pkg)
	b.WriteString("import (\n")
	for _, imp := range imports {
		if imp == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "\t%q\n", imp)
	}
	b.WriteString(")\n\n")
	return b.String()
}

func clientCore(d *templateData) string {
	g := d.Plan.Graph
	var b strings.Builder
	fmt.Fprintf(&b, "// Client calls %s (version %s).\n", orUnknown(g.Title), orUnknown(g.Version))
	b.WriteString(`type Client struct {
	baseURL string
	httpc   *http.Client
}

// DefaultBaseURL is the upstream API root used when no override is given.
const DefaultBaseURL = ` + fmt.Sprintf("%q", defaultBaseURL) + `

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient supplies the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpc = h }
}

// NewClient builds a Client with the given options.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{baseURL: DefaultBaseURL, httpc: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx upstream response. The body is preserved verbatim.
type APIError struct {
	Status int
	Body   []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: unexpected status %d: %s", e.Status, string(e.Body))
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}

`)
	return b.String()
}

// paramGoType maps a parameter type to its Go argument type. Array
// parameters are accepted as string slices and repeated in the query.
func paramGoType(t spec.FieldType) string {
	if t.Array {
		return "[]string"
	}
	return primitiveGoType(t.Kind, t.Format)
}

func (d *templateData) renderMethod(m generator.MethodDescriptor) string {
	var b strings.Builder

	optsType := ""
	if len(m.OptionalQuery) > 0 {
		optsType = m.Name + "Options"
		fmt.Fprintf(&b, "// %s holds the optional query parameters of %s.\n", optsType, m.Name)
		fmt.Fprintf(&b, "type %s struct {\n", optsType)
		for _, p := range m.OptionalQuery {
			typ := paramGoType(p.Type)
			if !strings.HasPrefix(typ, "[]") {
				typ = "*" + typ
			}
			fmt.Fprintf(&b, "\t%s %s\n", spec.ExportedName(p.Name), typ)
		}
		b.WriteString("}\n\n")
	}

	retType, retZero := methodReturn(m)
	fmt.Fprintf(&b, "// %s requests %s %s.\n", m.Name, strings.ToUpper(string(m.Operation.Method)), m.Operation.Path)
	if s := strings.TrimSpace(m.Operation.Summary); s != "" {
		fmt.Fprintf(&b, "// %s\n", s)
	}
	fmt.Fprintf(&b, "func (c *Client) %s(ctx context.Context", m.Name)
	for _, p := range m.PathParams {
		fmt.Fprintf(&b, ", %s %s", spec.ParamIdent(p.Name), paramGoType(p.Type))
	}
	for _, p := range m.RequiredQuery {
		fmt.Fprintf(&b, ", %s %s", spec.ParamIdent(p.Name), paramGoType(p.Type))
	}
	if optsType != "" {
		fmt.Fprintf(&b, ", opts *%s", optsType)
	}
	fmt.Fprintf(&b, ") (%s, error) {\n", retType)

	b.WriteString(pathExpr(m))

	if len(m.RequiredQuery) > 0 || optsType != "" {
		b.WriteString("\tq := url.Values{}\n")
	} else {
		b.WriteString("\tq := url.Values(nil)\n")
	}
	for _, p := range m.RequiredQuery {
		writeQuerySet(&b, p, spec.ParamIdent(p.Name), "\t")
	}
	if optsType != "" {
		b.WriteString("\tif opts != nil {\n")
		for _, p := range m.OptionalQuery {
			field := "opts." + spec.ExportedName(p.Name)
			if p.Type.Array {
				writeQuerySet(&b, p, field, "\t\t")
			} else {
				fmt.Fprintf(&b, "\t\tif %s != nil {\n", field)
				fmt.Fprintf(&b, "\t\t\tq.Set(%q, fmt.Sprint(*%s))\n", p.WireName, field)
				b.WriteString("\t\t}\n")
			}
		}
		b.WriteString("\t}\n")
	}

	b.WriteString("\tbody, err := c.get(ctx, path, q)\n")
	fmt.Fprintf(&b, "\tif err != nil {\n\t\treturn %s, err\n\t}\n", retZero)
	switch m.Shape {
	case spec.Untyped:
		b.WriteString("\treturn json.RawMessage(body), nil\n")
	default:
		elem := resultElem(m)
		fmt.Fprintf(&b, "\treturn respond.Decode[%s](body), nil\n", elem)
	}
	b.WriteString("}\n\n")
	return b.String()
}

// pathExpr renders the path-building statement, substituting path
// parameters in place.
func pathExpr(m generator.MethodDescriptor) string {
	path := m.Operation.Path
	if len(m.PathParams) == 0 {
		return fmt.Sprintf("\tpath := %q\n", path)
	}
	var args []string
	for _, p := range m.PathParams {
		path = strings.Replace(path, "{"+p.WireName+"}", "%s", 1)
		args = append(args, fmt.Sprintf("url.PathEscape(fmt.Sprint(%s))", spec.ParamIdent(p.Name)))
	}
	return fmt.Sprintf("\tpath := fmt.Sprintf(%q, %s)\n", path, strings.Join(args, ", "))
}

func writeQuerySet(b *strings.Builder, p spec.ParamDef, expr, indent string) {
	if p.Type.Array {
		fmt.Fprintf(b, "%sfor _, v := range %s {\n", indent, expr)
		fmt.Fprintf(b, "%s\tq.Add(%q, v)\n", indent, p.WireName)
		fmt.Fprintf(b, "%s}\n", indent)
		return
	}
	fmt.Fprintf(b, "%sq.Set(%q, fmt.Sprint(%s))\n", indent, p.WireName, expr)
}

// resultElem is the type parameter handed to respond.Decode.
func resultElem(m generator.MethodDescriptor) string {
	switch m.Shape {
	case spec.SingleModel, spec.WrappedModel:
		return m.Result
	case spec.ListOfModel:
		return "[]" + m.Result
	case spec.ListOfPrimitive:
		return "[]" + primitiveGoType(m.Primitive, "")
	}
	return "json.RawMessage"
}

// methodReturn gives the declared return type and its zero-value
// expression.
func methodReturn(m generator.MethodDescriptor) (string, string) {
	if m.Shape == spec.Untyped {
		return "json.RawMessage", "nil"
	}
	elem := resultElem(m)
	t := "respond.Result[" + elem + "]"
	return t, t + "{}"
}
