package codegen

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// APIScript emits an HTTP-call-and-assert Playwright test for a single
// endpoint. Assertions cover each top-level key of the response schema with a
// runtime-type check; schema keys are sorted so output stays deterministic.
func (g *Generator) APIScript(endpoint, method string, requestBody, responseSchema map[string]interface{}) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "GET"
	}

	var b strings.Builder
	b.WriteString("import { test, expect } from '@playwright/test';\n\n")
	fmt.Fprintf(&b, "test(%s, async ({ request }) => {\n", jsString(method+" "+endpoint))

	verb := strings.ToLower(method)
	if len(requestBody) > 0 {
		fmt.Fprintf(&b, "  const response = await request.%s(%s, {\n", verb, jsString(endpoint))
		fmt.Fprintf(&b, "    data: %s,\n", jsObject(requestBody, "    "))
		b.WriteString("  });\n")
	} else {
		fmt.Fprintf(&b, "  const response = await request.%s(%s);\n", verb, jsString(endpoint))
	}

	b.WriteString("  expect(response.ok()).toBeTruthy();\n")

	if len(responseSchema) > 0 {
		b.WriteString("  const body = await response.json();\n")
		for _, key := range sortedKeys(responseSchema) {
			writeTypeAssertion(&b, key, responseSchema[key])
		}
	}

	b.WriteString("});\n")
	return b.String()
}

// writeTypeAssertion emits a runtime-type check for one top-level schema key.
// Arrays need Array.isArray since typeof reports them as 'object'.
func writeTypeAssertion(b *strings.Builder, key string, value interface{}) {
	if isArraySchema(value) {
		fmt.Fprintf(b, "  expect(Array.isArray(body[%s])).toBeTruthy();\n", jsString(key))
		return
	}
	fmt.Fprintf(b, "  expect(typeof body[%s]).toBe(%s);\n", jsString(key), jsString(jsTypeOf(value)))
}

func isArraySchema(value interface{}) bool {
	if _, ok := value.([]interface{}); ok {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.EqualFold(strings.TrimSpace(s), "array")
	}
	return false
}

// jsTypeOf maps a schema value to the typeof result the generated assertion
// expects. Schemas may state the type by name ("string", "number", ...) or
// by example value.
func jsTypeOf(value interface{}) string {
	switch v := value.(type) {
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "string", "number", "boolean", "object":
			return strings.ToLower(strings.TrimSpace(v))
		case "int", "integer", "float", "double":
			return "number"
		case "bool":
			return "boolean"
		default:
			return "string"
		}
	case float64, int, int64:
		return "number"
	case bool:
		return "boolean"
	case map[string]interface{}:
		return "object"
	default:
		return "object"
	}
}

// jsObject renders a JSON-compatible map as a stable, indented object
// literal. encoding/json sorts map keys, which keeps output deterministic.
func jsObject(m map[string]interface{}, indent string) string {
	raw, err := json.MarshalIndent(m, indent, "  ")
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
