// Package api implements the REST API of the Pris compile service:
// stateless lexing and compilation endpoints, plus a document store with
// per-revision renders.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/prislang/pris/pkg/ast"
	"github.com/prislang/pris/pkg/lexer"
	"github.com/prislang/pris/pkg/parser"
	"github.com/prislang/pris/pkg/resources"
	"github.com/prislang/pris/pkg/runtime"
	"github.com/prislang/pris/pkg/stdlib"
	"github.com/prislang/pris/pkg/store"
	"github.com/prislang/pris/pkg/types"
)

// Server is the API server for the Pris compile service.
type Server struct {
	app   *fiber.App
	store *store.Store
	fonts *resources.FontMap
}

// New creates a new API server. The font map may be nil for a server
// without any fonts configured.
func New(s *store.Store, fonts *resources.FontMap) *Server {
	if fonts == nil {
		fonts = resources.NewFontMap()
	}
	srv := &Server{
		store: s,
		fonts: fonts,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Get("/healthz", srv.health)

	// Stateless compilation API
	app.Post("/v1/lex", srv.lexSource)
	app.Post("/v1/compile", srv.compileSource)

	// Documents API
	app.Post("/v1/documents", srv.createDocument)
	app.Get("/v1/documents/:document", srv.getDocument)
	app.Get("/v1/documents", srv.listDocuments)
	app.Patch("/v1/documents/:document", srv.updateDocument)
	app.Delete("/v1/documents/:document", srv.deleteDocument)

	// Renders API
	app.Post("/v1/documents/:document/renders", srv.createRender)
	app.Get("/v1/documents/:document/renders/:render", srv.getRender)
	app.Get("/v1/documents/:document/renders", srv.listRenders)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// --- Stateless Handlers ---

type sourceRequest struct {
	Source string `json:"source"`
}

type tokenJSON struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
}

func (s *Server) lexSource(c *fiber.Ctx) error {
	req, ok := parseSourceRequest(c)
	if !ok {
		return nil
	}

	src := []byte(req.Source)
	tokens, err := lexer.Lex(src)
	if err != nil {
		return sourceErrorJSON(c, src, err)
	}

	items := make([]tokenJSON, len(tokens))
	for i, tok := range tokens {
		items[i] = tokenJSON{
			Start: tok.Start,
			End:   tok.End,
			Kind:  tok.Kind.String(),
			Text:  string(src[tok.Start:tok.End]),
		}
	}

	return c.JSON(fiber.Map{"tokens": items})
}

func (s *Server) compileSource(c *fiber.Ctx) error {
	req, ok := parseSourceRequest(c)
	if !ok {
		return nil
	}

	scene, err := s.compile(req.Source)
	if err != nil {
		return sourceErrorJSON(c, []byte(req.Source), err)
	}

	return c.JSON(scene)
}

// compile runs a source through the full pipeline. Each call gets a fresh
// resource manager (sharing the font map) and a fresh evaluator, so
// concurrent compiles do not share mutable state.
func (s *Server) compile(source string) (*Scene, error) {
	doc, err := parser.Parse([]byte(source))
	if err != nil {
		return nil, err
	}

	res := resources.NewManager(s.fonts, nil)
	ev := runtime.New(stdlib.NewRegistry(res), &storeLoader{store: s.store})

	val, err := ev.EvalDocument(types.NewEnv(), doc)
	if err != nil {
		return nil, err
	}
	if val.Kind() != types.KindFrame {
		return nil, types.NewTypeError(fmt.Sprintf(
			"document evaluated to %s, expected a frame", val.Type()))
	}

	return NewScene(val.AsFrame(), ev.CanvasWidth, ev.CanvasHeight)
}

// storeLoader resolves import paths against the document store: the
// dotted path joins to a document ID.
type storeLoader struct {
	store *store.Store
}

func (l *storeLoader) Load(path []string) (*ast.Document, error) {
	doc, err := l.store.GetDocument("documents/" + strings.Join(path, "."))
	if err != nil {
		return nil, types.NewMissingFileError(strings.Join(path, "."))
	}
	return parser.Parse([]byte(doc.Source))
}

// --- Document Handlers ---

type createDocumentRequest struct {
	Source      string `json:"source"`
	Description string `json:"description"`
}

func (s *Server) createDocument(c *fiber.Ctx) error {
	documentID := c.Query("documentId")
	if documentID == "" {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "documentId query parameter is required")
	}

	var req createDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}
	if req.Source == "" {
		return errorJSON(c, 400, "INVALID_ARGUMENT", "source is required")
	}

	// Validate by parsing
	if _, err := parser.Parse([]byte(req.Source)); err != nil {
		return sourceErrorJSON(c, []byte(req.Source), err)
	}

	doc, err := s.store.CreateDocument(documentID, req.Source, req.Description)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return errorJSON(c, 409, "ALREADY_EXISTS", err.Error())
		}
		return errorJSON(c, 500, "INTERNAL", err.Error())
	}

	return c.Status(200).JSON(doc)
}

func (s *Server) getDocument(c *fiber.Ctx) error {
	doc, err := s.store.GetDocument(buildDocumentName(c))
	if err != nil {
		return errorJSON(c, 404, "NOT_FOUND", err.Error())
	}
	return c.JSON(doc)
}

func (s *Server) listDocuments(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"documents": s.store.ListDocuments()})
}

func (s *Server) updateDocument(c *fiber.Ctx) error {
	name := buildDocumentName(c)

	var req createDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}

	if req.Source != "" {
		if _, err := parser.Parse([]byte(req.Source)); err != nil {
			return sourceErrorJSON(c, []byte(req.Source), err)
		}
	}

	doc, err := s.store.UpdateDocument(name, req.Source, req.Description)
	if err != nil {
		return errorJSON(c, 404, "NOT_FOUND", err.Error())
	}

	return c.JSON(doc)
}

func (s *Server) deleteDocument(c *fiber.Ctx) error {
	name := buildDocumentName(c)

	if err := s.store.DeleteDocument(name); err != nil {
		return errorJSON(c, 404, "NOT_FOUND", err.Error())
	}

	return c.JSON(fiber.Map{
		"name": name,
		"done": true,
	})
}

// --- Render Handlers ---

func (s *Server) createRender(c *fiber.Ctx) error {
	name := buildDocumentName(c)

	doc, err := s.store.GetDocument(name)
	if err != nil {
		return errorJSON(c, 404, "NOT_FOUND", err.Error())
	}

	render, err := s.store.CreateRender(name)
	if err != nil {
		return errorJSON(c, 500, "INTERNAL", err.Error())
	}

	// Render asynchronously; clients poll the render resource.
	go s.runRender(render.Name, doc.Source)

	return c.Status(200).JSON(render)
}

func (s *Server) runRender(renderName, source string) {
	scene, err := s.compile(source)
	if err != nil {
		excerpt := ""
		var lexErr *types.LexicalError
		if errors.As(err, &lexErr) {
			excerpt = lexErr.Excerpt([]byte(source))
		}
		_ = s.store.FailRender(renderName, err.Error(), excerpt)
		return
	}

	data, err := json.Marshal(scene)
	if err != nil {
		_ = s.store.FailRender(renderName, err.Error(), "")
		return
	}
	_ = s.store.CompleteRender(renderName, data)
}

func (s *Server) getRender(c *fiber.Ctx) error {
	render, err := s.store.GetRender(buildRenderName(c))
	if err != nil {
		return errorJSON(c, 404, "NOT_FOUND", err.Error())
	}
	return c.JSON(render)
}

func (s *Server) listRenders(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"renders": s.store.ListRenders(buildDocumentName(c))})
}

// --- Directory Loading ---

var validDocumentID = regexp.MustCompile(`^[a-z][a-z0-9_.-]*$`)

// LoadDir loads all .pris files from the given directory as documents.
// The file name (sans extension) becomes the document ID.
func (s *Server) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading documents directory: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ".pris" {
			continue
		}

		base := strings.TrimSuffix(name, ext)
		documentID := strings.ToLower(base)

		if documentID != base {
			log.Printf("Warning: lowercased document ID %q (from file %q)", documentID, name)
		}
		if !validDocumentID.MatchString(documentID) || len(documentID) > 128 {
			log.Printf("Warning: skipping file %q, invalid document ID %q", name, documentID)
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Printf("Warning: could not read %q: %v", name, err)
			continue
		}

		if _, err := parser.Parse(data); err != nil {
			log.Printf("Warning: could not parse %q: %v", name, err)
			continue
		}

		if _, err := s.store.CreateDocument(documentID, string(data), ""); err != nil {
			log.Printf("Warning: could not store %q: %v", name, err)
			continue
		}

		loaded++
		log.Printf("Loaded document %q from %s", documentID, name)
	}

	log.Printf("Loaded %d document(s) from %s", loaded, dir)
	return nil
}

// --- Helpers ---

func buildDocumentName(c *fiber.Ctx) string {
	return fmt.Sprintf("documents/%s", c.Params("document"))
}

func buildRenderName(c *fiber.Ctx) string {
	return fmt.Sprintf("documents/%s/renders/%s", c.Params("document"), c.Params("render"))
}

// parseSourceRequest reads and validates the {"source": ...} request body.
// On failure it writes the error response and returns false.
func parseSourceRequest(c *fiber.Ctx) (sourceRequest, bool) {
	var req sourceRequest
	if err := c.BodyParser(&req); err != nil {
		_ = errorJSON(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
		return req, false
	}
	if req.Source == "" {
		_ = errorJSON(c, 400, "INVALID_ARGUMENT", "source is required")
		return req, false
	}
	return req, true
}

func errorJSON(c *fiber.Ctx, code int, status, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}

// sourceErrorJSON writes a compile failure. Lexical errors carry their
// byte range and a rendered source excerpt.
func sourceErrorJSON(c *fiber.Ctx, src []byte, err error) error {
	var lexErr *types.LexicalError
	if errors.As(err, &lexErr) {
		return c.Status(400).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    400,
				"message": lexErr.Message,
				"status":  "INVALID_ARGUMENT",
				"start":   lexErr.Start,
				"end":     lexErr.End,
				"excerpt": lexErr.Excerpt(src),
			},
		})
	}
	return errorJSON(c, 400, "INVALID_ARGUMENT", err.Error())
}
