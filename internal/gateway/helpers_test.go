package gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/toolclaw/internal/agent"
	"github.com/flemzord/toolclaw/internal/core"
	"github.com/flemzord/toolclaw/internal/telemetry"
	"github.com/flemzord/toolclaw/internal/tool"
	"github.com/flemzord/toolclaw/internal/tool/tooltest"
)

const testToken = "test-token"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

// testServices registers a registry with an "echo" tool, an agent and a
// metrics collector on a fresh AppContext.
func testServices(t *testing.T) *core.AppContext {
	t.Helper()
	appCtx := core.NewAppContext(testLogger(), t.TempDir(), t.TempDir())

	reg := tool.NewRegistry()
	if err := reg.Register(tooltest.EchoTool("echo")); err != nil {
		t.Fatal(err)
	}
	metrics := telemetry.NewMetrics()
	reg.AddObserver(metrics)

	appCtx.RegisterService(core.ServiceToolRegistry, reg)
	appCtx.RegisterService(core.ServiceMetrics, metrics)
	appCtx.RegisterService(core.ServiceAgent, agent.New(agent.Options{
		Registry: reg,
		Planner:  agent.TextPlanner(),
		Logger:   testLogger(),
		Observer: metrics,
	}))
	return appCtx
}

// newTestServer provisions a gateway against appCtx and serves its router
// through httptest.
func newTestServer(t *testing.T, appCtx *core.AppContext, cfg Config) (*Gateway, *httptest.Server) {
	t.Helper()
	g := &Gateway{config: cfg}
	if err := g.Provision(appCtx); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	g.resolve()
	srv := httptest.NewServer(g.buildRouter())
	t.Cleanup(srv.Close)
	return g, srv
}

// do sends a request with the test bearer token and decodes the JSON
// response into out when out is non-nil.
func do(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer "+testToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func decodeBody(resp *http.Response, out any) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

// mustYAMLNode parses YAML text into a *yaml.Node for Configure calls.
func mustYAMLNode(t *testing.T, text string) *yaml.Node {
	t.Helper()
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		t.Fatalf("YAML parse: %v", err)
	}
	if len(node.Content) > 0 {
		return node.Content[0]
	}
	return &node
}
