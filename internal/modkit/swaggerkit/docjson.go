package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	docs "launchpipe/internal/services/api/docs"
)

// docReader is a seam so tests can inject invalid JSON
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// run triggering operations can also be skipped by a held lease or fail on a backend
var postErrors = map[string]string{
	"409": "Run skipped, another ingestion holds the lease",
	"503": "Run failed or a backend is unavailable",
}

// serveDocJSON serves the generated spec with servers, the error schema and
// the shared failure responses filled in
func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var spec map[string]any
		if err := json.Unmarshal([]byte(docReader()), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}
		pinVersion(spec, "/v1")
		child(child(spec, "components"), "schemas")["ErrorResponse"] = errorSchema
		addErrorResponses(spec)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// pinVersion serves OAS 3.0.3 (the UI cannot render 3.1) and defaults the servers block
func pinVersion(spec map[string]any, url string) {
	delete(spec, "swagger")
	if v, ok := spec["openapi"].(string); !ok || strings.HasPrefix(v, "3.1") {
		spec["openapi"] = "3.0.3"
	}
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{map[string]any{"url": url}}
	}
}

// errorSchema mirrors phttp.Envelope for failures
var errorSchema = map[string]any{
	"type":        "object",
	"description": "Error envelope",
	"properties": map[string]any{
		"status_code": map[string]any{"type": "integer", "format": "int32"},
		"status":      map[string]any{"type": "string"},
		"code":        map[string]any{"type": "integer", "format": "int32"},
		"error":       map[string]any{"type": "string"},
		"field":       map[string]any{"type": "string"},
		"request_id":  map[string]any{"type": "string"},
	},
	"required": []any{"status_code", "status"},
}

func errorResponse(desc string) map[string]any {
	return map[string]any{
		"description": desc,
		"content": map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
			},
		},
	}
}

// addErrorResponses gives every operation a 500 and every POST the run outcomes
// it can report, leaving documented responses alone
func addErrorResponses(spec map[string]any) {
	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for method, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			responses := child(op, "responses")
			setDefault(responses, "500", "Internal Server Error")
			if strings.EqualFold(method, http.MethodPost) {
				for code, desc := range postErrors {
					setDefault(responses, code, desc)
				}
			}
		}
	}
}

func setDefault(responses map[string]any, code, desc string) {
	if _, ok := responses[code]; !ok {
		responses[code] = errorResponse(desc)
	}
}

// child returns m[key] as an object, creating it when absent
func child(m map[string]any, key string) map[string]any {
	if c, ok := m[key].(map[string]any); ok {
		return c
	}
	c := map[string]any{}
	m[key] = c
	return c
}
