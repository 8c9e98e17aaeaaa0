package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/prislang/pris/pkg/api"
	"github.com/prislang/pris/pkg/resources"
	"github.com/prislang/pris/pkg/store"
)

// testFontManifest is the font setup used across the integration tests: a
// metrics-only monospace-ish face at 600 units per glyph.
const testFontManifest = `
fonts:
  - family: Cantarell
    style: Regular
    units_per_em: 1000
    advance: 600
  - family: Cantarell
    style: Bold
    units_per_em: 1000
    advance: 650
`

// newTestApp builds a full server with the test fonts and an empty store.
func newTestApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	fonts, err := resources.ParseFontMap([]byte(testFontManifest))
	if err != nil {
		t.Fatalf("font manifest: %v", err)
	}
	s := store.New()
	return api.New(s, fonts).App(), s
}

func postJSON(t *testing.T, app *fiber.App, url string, body interface{}) (int, []byte) {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest("POST", url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, respBody
}

// compileSource compiles a document through the API and returns the scene.
func compileSource(t *testing.T, app *fiber.App, source string) map[string]interface{} {
	t.Helper()
	code, body := postJSON(t, app, "/v1/compile", map[string]string{"source": source})
	if code != 200 {
		t.Fatalf("compile failed with status %d: %s", code, body)
	}
	var scene map[string]interface{}
	if err := json.Unmarshal(body, &scene); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return scene
}

// compileExpectError compiles a document expected to fail and returns the
// error object.
func compileExpectError(t *testing.T, app *fiber.App, source string) map[string]interface{} {
	t.Helper()
	code, body := postJSON(t, app, "/v1/compile", map[string]string{"source": source})
	if code != 400 {
		t.Fatalf("expected status 400, got %d: %s", code, body)
	}
	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("no error object in response: %s", body)
	}
	return errObj
}

// sceneElements returns the scene's element list.
func sceneElements(t *testing.T, scene map[string]interface{}) []map[string]interface{} {
	t.Helper()
	raw, ok := scene["elements"].([]interface{})
	if !ok {
		t.Fatalf("no elements in scene: %v", scene)
	}
	elements := make([]map[string]interface{}, len(raw))
	for i, e := range raw {
		elements[i] = e.(map[string]interface{})
	}
	return elements
}

// waitForRender polls a render resource until it reaches a terminal state.
func waitForRender(t *testing.T, app *fiber.App, name string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		if time.Now().After(deadline) {
			t.Fatalf("render %s did not complete", name)
		}
		req := httptest.NewRequest("GET", "/v1/"+name, nil)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		var render map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&render); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if state := render["state"]; state == "SUCCEEDED" || state == "FAILED" {
			return render
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func offsetOf(elem map[string]interface{}) (x, y float64) {
	off := elem["offset"].([]interface{})
	return off[0].(float64), off[1].(float64)
}
