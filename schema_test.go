package trisync

import (
	"encoding/json"
	"testing"
)

func TestCodeSchema(t *testing.T) {
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(codeSchema), &schema); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}

	if schema["type"] != "object" {
		t.Errorf("Expected object schema, got %v", schema["type"])
	}
	if schema["additionalProperties"] != false {
		t.Errorf("Expected additionalProperties false, got %v", schema["additionalProperties"])
	}

	props, ok := schema["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("Schema missing properties")
	}
	want := map[string]string{
		"code":            "string",
		"symbols":         "array",
		"notebookSymbols": "array",
	}
	for name, typ := range want {
		prop, ok := props[name].(map[string]interface{})
		if !ok {
			t.Errorf("Property %s missing", name)
			continue
		}
		if prop["type"] != typ {
			t.Errorf("Property %s type = %v, want %s", name, prop["type"], typ)
		}
	}

	required, ok := schema["required"].([]interface{})
	if !ok || len(required) != 3 {
		t.Errorf("Expected 3 required fields, got %v", schema["required"])
	}
}

type taggedSample struct {
	Name  string `json:"name"`
	Extra string `json:"extra,omitempty"`
	Skip  string `json:"-"`
}

func TestGenerateJSONSchemaOmitempty(t *testing.T) {
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(generateJSONSchema[taggedSample]()), &schema); err != nil {
		t.Fatalf("Schema is not valid JSON: %v", err)
	}

	props := schema["properties"].(map[string]interface{})
	if _, ok := props["skip"]; ok {
		t.Error("Skipped field leaked into properties")
	}
	if _, ok := props["extra"]; !ok {
		t.Error("Omitempty field missing from properties")
	}

	required := schema["required"].([]interface{})
	if len(required) != 1 || required[0] != "name" {
		t.Errorf("Expected required [name], got %v", required)
	}
}
