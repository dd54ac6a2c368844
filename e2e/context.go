package e2e

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// TestContext carries HTTP state across the steps of one scenario.
type TestContext struct {
	BaseURL string
	client  *http.Client

	suffix     string
	lastStatus int
	lastBody   []byte
	lastHeader http.Header
	tokens     map[string]string
	ids        map[string]string
}

func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears scenario state and picks a fresh suffix so data created by
// one run never collides with another.
func (tc *TestContext) Reset() {
	b := make([]byte, 3)
	_, _ = rand.Read(b)
	tc.suffix = strings.ToUpper(hex.EncodeToString(b))
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastHeader = nil
	tc.tokens = make(map[string]string)
	tc.ids = make(map[string]string)
}

// Unique decorates an identifier with the scenario suffix. Emails keep
// their domain; everything else is upper-cased so course ids stay valid.
func (tc *TestContext) Unique(value string) string {
	if local, domain, ok := strings.Cut(value, "@"); ok {
		return fmt.Sprintf("%s+%s@%s", local, strings.ToLower(tc.suffix), domain)
	}
	return strings.ToUpper(value) + "-" + tc.suffix
}

func (tc *TestContext) Do(method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastHeader = resp.Header
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) POST(path string, body any, headers map[string]string) error {
	return tc.Do(http.MethodPost, path, body, headers)
}

func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.Do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) DELETE(path string, headers map[string]string) error {
	return tc.Do(http.MethodDelete, path, nil, headers)
}

// GetResponseField reads a top-level field from the last JSON body.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var payload map[string]any
	if err := json.Unmarshal(tc.lastBody, &payload); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.lastBody)
	}
	v, ok := payload[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response: %s", field, tc.lastBody)
	}
	return v, nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	return tc.lastStatus
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

func (tc *TestContext) GetLastResponseHeader(key string) string {
	if tc.lastHeader == nil {
		return ""
	}
	return tc.lastHeader.Get(key)
}

// BearerFor returns the Authorization header for a logged-in alias.
func (tc *TestContext) BearerFor(alias string) (map[string]string, error) {
	token, ok := tc.tokens[alias]
	if !ok {
		return nil, fmt.Errorf("%q has not logged in", alias)
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

func (tc *TestContext) SetAccessToken(alias, token string) {
	tc.tokens[alias] = token
}

// Remember stores scenario-scoped values such as generated emails.
func (tc *TestContext) Remember(key, value string) {
	tc.ids[key] = value
}

func (tc *TestContext) Recall(key string) string {
	return tc.ids[key]
}
