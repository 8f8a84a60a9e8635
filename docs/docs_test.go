package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerRegistered(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	var spec struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &spec); err != nil {
		t.Fatalf("swagger doc is not valid json: %v", err)
	}
	for _, p := range []string{"/api/v1/status", "/api/v1/pause", "/api/v1/continue", "/api/v1/extractions", "/healthz", "/readyz"} {
		if _, ok := spec.Paths[p]; !ok {
			t.Fatalf("missing path %s", p)
		}
	}
}
