package helpers

import (
	"fmt"
	"strings"
)

// PayloadCase is a named response body.
type PayloadCase struct {
	Name string
	Body string
}

// StatusCase is a named error response.
type StatusCase struct {
	Name   string
	Status int
	Body   string
}

// JSONGenerator generates adversarial Discord API payloads
type JSONGenerator struct{}

// NewJSONGenerator creates a new JSON generator
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// GenerateMalformedTokenResponses creates 200 token responses a client must
// reject: missing required fields, wrong types and broken JSON.
func (g *JSONGenerator) GenerateMalformedTokenResponses() []PayloadCase {
	return []PayloadCase{
		// Missing required fields
		{"empty object", `{}`},
		{"only access token", `{"access_token": "tok"}`},
		{"missing scope", `{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600}`},
		{"missing expiry", `{"access_token": "tok", "token_type": "Bearer", "scope": "identify"}`},
		{"missing token type", `{"access_token": "tok", "expires_in": 3600, "scope": "identify"}`},
		{"null access token", `{"access_token": null, "token_type": "Bearer", "expires_in": 3600, "scope": "identify"}`},
		{"error body with 200", `{"error": "invalid_grant"}`},

		// Invalid types
		{"expiry not a number", `{"access_token": "tok", "token_type": "Bearer", "expires_in": "not_a_number", "scope": "identify"}`},
		{"expiry array", `{"access_token": "tok", "token_type": "Bearer", "expires_in": [], "scope": "identify"}`},
		{"expiry float", `{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600.5, "scope": "identify"}`},
		{"access token number", `{"access_token": 123, "token_type": "Bearer", "expires_in": 3600, "scope": "identify"}`},
		{"scope array", `{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600, "scope": ["identify"]}`},
		{"guild id object", `{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600, "scope": "bot", "guild_id": {}}`},

		// Malformed JSON
		{"truncated", `{"access_token": "tok", "expires_in": 3600`},
		{"unquoted key", `{access_token: "tok"}`},
		{"trailing comma", `{"access_token": "tok",}`},
		{"not json", `<html>OK</html>`},
		{"array", `[]`},
	}
}

// GenerateUnusualTokenResponses creates token responses that look odd but
// are valid and must be accepted.
func (g *JSONGenerator) GenerateUnusualTokenResponses() []PayloadCase {
	return []PayloadCase{
		{"expiry as string", `{"access_token": "tok", "token_type": "Bearer", "expires_in": "3600", "scope": "identify"}`},
		{"zero expiry", `{"access_token": "tok", "token_type": "Bearer", "expires_in": 0, "scope": "identify"}`},
		{"unknown scope", `{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600, "scope": "identify some.future.scope"}`},
		{"empty scope", `{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600, "scope": ""}`},
		{"extra fields", `{"access_token": "tok", "token_type": "Bearer", "expires_in": 3600, "scope": "identify", "webhook": null, "x": [1, 2]}`},
		{"huge token", fmt.Sprintf(`{"access_token": "%s", "token_type": "Bearer", "expires_in": 3600, "scope": "identify"}`, strings.Repeat("A", 10000))},
		{"escaped characters", `{"access_token": "tok\nwith\u0000escapes", "token_type": "Bearer", "expires_in": 3600, "scope": "identify"}`},
	}
}

// GenerateErrorResponses creates non-2xx responses in the shapes Discord and
// intermediaries produce.
func (g *JSONGenerator) GenerateErrorResponses() []StatusCase {
	return []StatusCase{
		{"oauth error", 400, `{"error": "invalid_grant", "error_description": "Invalid \"code\" in request."}`},
		{"rest error", 401, `{"message": "401: Unauthorized", "code": 0}`},
		{"rate limited", 429, `{"message": "You are being rate limited.", "retry_after": 64.57, "global": false}`},
		{"html page", 502, `<html><body>Bad Gateway</body></html>`},
		{"empty body", 503, ``},
		{"truncated json", 500, `{"message": "Internal`},
		{"huge body", 500, strings.Repeat("x", 1<<20)},
	}
}

// GenerateMalformedUsers creates current user bodies missing required fields
// or with wrong types.
func (g *JSONGenerator) GenerateMalformedUsers() []PayloadCase {
	return []PayloadCase{
		{"empty object", `{}`},
		{"missing username", `{"id": "80351110224678912", "discriminator": "0"}`},
		{"invalid snowflake", `{"id": "not-a-number", "username": "nelly", "discriminator": "0"}`},
		{"negative snowflake", `{"id": "-1", "username": "nelly", "discriminator": "0"}`},
		{"snowflake object", `{"id": {}, "username": "nelly", "discriminator": "0"}`},
		{"null body", `null`},
	}
}
