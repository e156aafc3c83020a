// Package openapi provides reflective OpenAPI 3.0 specification generation
// for the read-only inventory API.
package openapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

// =============================================================================
// Generator
// =============================================================================

// Generator produces OpenAPI 3.0 specifications by reflecting on registered resources.
type Generator struct {
	title       string
	version     string
	description string
	servers     []string
	resources   []ResourceInfo
	mu          sync.RWMutex
	cachedSpec  *openapi3.T
}

// ResourceInfo holds information about a registered listing resource.
type ResourceInfo struct {
	Name       string   // Collection name (e.g., "deployments")
	Model      any      // Item model for schema extraction
	SortFields []string // Accepted values of the sort parameter
	Filters    []Filter // Structured filters besides the keyword
}

// Filter describes a structured listing filter.
// List filters accept repeated or comma separated values.
type Filter struct {
	Name        string
	Description string
	Type        string // "integer", "boolean" or "string"
	List        bool
	Enum        []string
}

// Option configures the generator.
type Option func(*Generator)

// WithTitle sets the API title.
func WithTitle(title string) Option {
	return func(g *Generator) {
		g.title = title
	}
}

// WithVersion sets the API version.
func WithVersion(version string) Option {
	return func(g *Generator) {
		g.version = version
	}
}

// WithDescription sets the API description.
func WithDescription(description string) Option {
	return func(g *Generator) {
		g.description = description
	}
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(g *Generator) {
		g.servers = append(g.servers, url)
	}
}

// NewGenerator creates a new OpenAPI generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		title:       "hwdb API",
		version:     "1.0.0",
		description: "Terminal inventory API",
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// RegisterResource adds a resource to the generator for spec generation.
func (g *Generator) RegisterResource(info ResourceInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resources = append(g.resources, info)
	g.cachedSpec = nil
}

// Generate produces the complete OpenAPI 3.0 specification.
func (g *Generator) Generate() *openapi3.T {
	g.mu.RLock()
	if g.cachedSpec != nil {
		spec := g.cachedSpec
		g.mu.RUnlock()
		return spec
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	// Double-check after acquiring write lock
	if g.cachedSpec != nil {
		return g.cachedSpec
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       g.title,
			Version:     g.version,
			Description: g.description,
		},
		Servers: make(openapi3.Servers, 0, len(g.servers)),
		Paths:   &openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}

	for _, url := range g.servers {
		spec.Servers = append(spec.Servers, &openapi3.Server{URL: url})
	}

	spec.Components.Schemas["Error"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": stringSchema(),
				"code":  stringSchema(),
			},
			Required: []string{"error", "code"},
		},
	}

	for _, res := range g.resources {
		g.addResourceToSpec(spec, res)
	}

	g.cachedSpec = spec
	return spec
}

// Handler returns an HTTP handler that serves the OpenAPI specification.
func (g *Generator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := g.Generate()

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(spec); err != nil {
			http.Error(w, "Failed to encode OpenAPI spec", http.StatusInternalServerError)
		}
	}
}

// =============================================================================
// Paths
// =============================================================================

// addResourceToSpec adds the list and get paths of a resource.
func (g *Generator) addResourceToSpec(spec *openapi3.T, res ResourceInfo) {
	basePath := "/api/v1/" + res.Name
	schemaName := capitalize(singularize(res.Name))

	spec.Components.Schemas[schemaName] = extractSchema(reflect.TypeOf(res.Model))
	spec.Components.Schemas[schemaName+"List"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				res.Name: {
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: schemaRef(schemaName),
					},
				},
				"total":      integerSchema(),
				"limit":      integerSchema(),
				"offset":     integerSchema(),
				"query":      stringSchema(),
				"sort":       stringSchema(),
				"descending": {Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}},
			},
		},
	}

	spec.Paths.Set(basePath, &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "list" + capitalize(res.Name),
			Summary:     "List " + res.Name + ", filtered by keyword and sorted by field",
			Tags:        []string{capitalize(res.Name)},
			Parameters:  listParameters(res.SortFields, res.Filters),
			Responses:   responses(schemaName+"List", "Matching "+res.Name),
		},
	})

	spec.Paths.Set(basePath+"/{id}", &openapi3.PathItem{
		Parameters: openapi3.Parameters{
			&openapi3.ParameterRef{
				Value: &openapi3.Parameter{
					Name:     "id",
					In:       "path",
					Required: true,
					Schema:   &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}},
				},
			},
		},
		Get: &openapi3.Operation{
			OperationID: "get" + schemaName,
			Summary:     "Get a " + singularize(res.Name),
			Tags:        []string{capitalize(res.Name)},
			Responses:   responses(schemaName, "The "+singularize(res.Name)),
		},
	})
}

func listParameters(sortFields []string, filters []Filter) openapi3.Parameters {
	sortEnum := make([]any, 0, len(sortFields))
	for _, f := range sortFields {
		sortEnum = append(sortEnum, f)
	}

	query := func(name, description string, schema *openapi3.Schema) *openapi3.ParameterRef {
		return &openapi3.ParameterRef{
			Value: &openapi3.Parameter{
				Name:        name,
				In:          "query",
				Description: description,
				Schema:      &openapi3.SchemaRef{Value: schema},
			},
		}
	}

	params := openapi3.Parameters{
		query("q", `Keyword: "#<id>" or "<id>!" selects by id, anything else is a case-insensitive substring`,
			&openapi3.Schema{Type: &openapi3.Types{"string"}}),
		query("sort", "Sort field, case-insensitive; unknown fields keep store order",
			&openapi3.Schema{Type: &openapi3.Types{"string"}, Enum: sortEnum}),
		query("desc", "Sort descending",
			&openapi3.Schema{Type: &openapi3.Types{"boolean"}, Default: false}),
		query("limit", "Page size",
			&openapi3.Schema{Type: &openapi3.Types{"integer"}, Default: 100}),
		query("offset", "Page offset",
			&openapi3.Schema{Type: &openapi3.Types{"integer"}, Default: 0}),
	}

	for _, f := range filters {
		schema := &openapi3.Schema{Type: &openapi3.Types{f.Type}}
		for _, v := range f.Enum {
			schema.Enum = append(schema.Enum, v)
		}
		if f.List {
			schema = &openapi3.Schema{
				Type:  &openapi3.Types{"array"},
				Items: &openapi3.SchemaRef{Value: schema},
			}
		}
		params = append(params, query(f.Name, f.Description, schema))
	}

	return params
}

func responses(schemaName, description string) *openapi3.Responses {
	resp := &openapi3.Responses{}
	resp.Set("200", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(schemaRef(schemaName)),
	})
	resp.Set("default", &openapi3.ResponseRef{
		Value: openapi3.NewResponse().WithDescription("Error").WithJSONSchemaRef(schemaRef("Error")),
	})
	return resp
}

// =============================================================================
// Schema Extraction
// =============================================================================

var timeType = reflect.TypeOf(time.Time{})

// extractSchema converts a Go type into an OpenAPI schema following its JSON tags.
func extractSchema(t reflect.Type) *openapi3.SchemaRef {
	switch t.Kind() {
	case reflect.Pointer:
		schema := extractSchema(t.Elem())
		if schema.Value != nil {
			schema.Value.Nullable = true
		}
		return schema

	case reflect.String:
		return stringSchema()

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}}

	case reflect.Int64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}}

	case reflect.Bool:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}

	case reflect.Slice, reflect.Array:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"array"}, Items: extractSchema(t.Elem())}}

	case reflect.Struct:
		if t == timeType {
			return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}}
		}
		schema := &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: make(openapi3.Schemas),
		}
		addStructFields(schema, t)
		return &openapi3.SchemaRef{Value: schema}
	}

	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}}
}

// addStructFields adds the JSON-visible fields of t, flattening embedded structs.
func addStructFields(schema *openapi3.Schema, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}

		if field.Anonymous && name == "" && field.Type.Kind() == reflect.Struct {
			addStructFields(schema, field.Type)
			continue
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}

		schema.Properties[name] = extractSchema(field.Type)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func schemaRef(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name}
}

func stringSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}
}

func integerSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}}}
}

// capitalize returns the string with the first letter capitalized.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// singularize removes a trailing 's'.
func singularize(s string) string {
	return strings.TrimSuffix(s, "s")
}
