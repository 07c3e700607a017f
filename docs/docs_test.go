package docs

import (
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocRegistered(t *testing.T) {
	if SwaggerInfo.Title != "CryptoOracle API" {
		t.Fatalf("unexpected title %q", SwaggerInfo.Title)
	}

	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	for _, route := range []string{"/api/coins", "/api/coins/{id}/forecast", "/api/coins/{id}/news", "/ws/dashboard"} {
		if !strings.Contains(doc, `"`+route+`"`) {
			t.Errorf("doc missing route %s", route)
		}
	}
}
