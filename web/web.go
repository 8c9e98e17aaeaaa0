// Package web provides the embedded web UI for the Pris compile service.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/prislang/pris/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the web UI pages.
type Handler struct {
	store   *store.Store
	funcMap template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	NavActive string
	Data      interface{}
}

// New creates a new web UI handler.
func New(s *store.Store) *Handler {
	return &Handler{
		store: s,
		funcMap: template.FuncMap{
			"timeAgo":    timeAgo,
			"formatTime": formatTime,
			"duration":   duration,
			"stateClass": stateClass,
			"stateIcon":  stateIcon,
			"truncate":   truncate,
			"documentID": documentID,
			"renderID":   renderID,
			"countLines": countLines,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, page string, navActive string, data interface{}) error {
	// Parse templates fresh each time for the page-specific template
	// This avoids the Go template issue where define blocks conflict across pages
	tmpl := template.Must(
		template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
	)

	pd := pageData{
		NavActive: navActive,
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pd); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.dashboard)
	app.Get("/ui/playground", h.playground)
	app.Get("/ui/documents", h.documentList)
	app.Get("/ui/documents/:id", h.documentDetail)
	app.Get("/ui/documents/:document/renders/:render", h.renderDetail)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type dashboardContent struct {
	Documents      []*store.Document
	RecentRenders  []*renderView
	ActiveCount    int
	SucceededCount int
	FailedCount    int
}

type renderView struct {
	*store.Render
	DocumentID string
	RendID     string
}

type documentListContent struct {
	Documents []*documentView
}

type documentView struct {
	*store.Document
	ID          string
	RenderCount int
}

type documentDetailContent struct {
	Document *store.Document
	ID       string
	Renders  []*renderView
}

type renderDetailContent struct {
	Render     *store.Render
	DocumentID string
	RendID     string
}

type notFoundContent struct {
	Message string
}

// --- Page Handlers ---

func (h *Handler) dashboard(c *fiber.Ctx) error {
	documents := h.store.ListDocuments()

	sort.Slice(documents, func(i, j int) bool {
		return documents[i].UpdateTime.After(documents[j].UpdateTime)
	})

	var allRenders []*renderView
	var active, succeeded, failed int

	for _, doc := range documents {
		renders := h.store.ListRenders(doc.Name)
		for _, r := range renders {
			rv := &renderView{
				Render:     r,
				DocumentID: documentID(doc.Name),
				RendID:     renderID(r.Name),
			}
			allRenders = append(allRenders, rv)
			switch r.State {
			case store.RenderActive:
				active++
			case store.RenderSucceeded:
				succeeded++
			case store.RenderFailed:
				failed++
			}
		}
	}

	sort.Slice(allRenders, func(i, j int) bool {
		return allRenders[i].StartTime.After(allRenders[j].StartTime)
	})

	recent := allRenders
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return h.render(c, "dashboard.html", "dashboard", dashboardContent{
		Documents:      documents,
		RecentRenders:  recent,
		ActiveCount:    active,
		SucceededCount: succeeded,
		FailedCount:    failed,
	})
}

func (h *Handler) playground(c *fiber.Ctx) error {
	return h.render(c, "playground.html", "playground", nil)
}

func (h *Handler) documentList(c *fiber.Ctx) error {
	documents := h.store.ListDocuments()

	sort.Slice(documents, func(i, j int) bool {
		return documents[i].UpdateTime.After(documents[j].UpdateTime)
	})

	var views []*documentView
	for _, doc := range documents {
		views = append(views, &documentView{
			Document:    doc,
			ID:          documentID(doc.Name),
			RenderCount: len(h.store.ListRenders(doc.Name)),
		})
	}

	return h.render(c, "document_list.html", "documents", documentListContent{
		Documents: views,
	})
}

func (h *Handler) documentDetail(c *fiber.Ctx) error {
	docID := c.Params("id")
	name := fmt.Sprintf("documents/%s", docID)

	doc, err := h.store.GetDocument(name)
	if err != nil {
		return h.render(c, "not_found.html", "", notFoundContent{
			Message: fmt.Sprintf("Document '%s' not found", docID),
		})
	}

	renders := h.store.ListRenders(name)
	sort.Slice(renders, func(i, j int) bool {
		return renders[i].StartTime.After(renders[j].StartTime)
	})

	var renderViews []*renderView
	for _, r := range renders {
		renderViews = append(renderViews, &renderView{
			Render:     r,
			DocumentID: docID,
			RendID:     renderID(r.Name),
		})
	}

	return h.render(c, "document_detail.html", "documents", documentDetailContent{
		Document: doc,
		ID:       docID,
		Renders:  renderViews,
	})
}

func (h *Handler) renderDetail(c *fiber.Ctx) error {
	docID := c.Params("document")
	rendID := c.Params("render")
	name := fmt.Sprintf("documents/%s/renders/%s", docID, rendID)

	render, err := h.store.GetRender(name)
	if err != nil {
		return h.render(c, "not_found.html", "", notFoundContent{
			Message: fmt.Sprintf("Render '%s' not found", rendID),
		})
	}

	return h.render(c, "render_detail.html", "documents", renderDetailContent{
		Render:     render,
		DocumentID: docID,
		RendID:     rendID,
	})
}

// --- Template Helpers ---

func documentID(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		if p == "documents" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return name
}

func renderID(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		if p == "renders" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return name
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("2006-01-02 15:04:05")
}

func duration(start, end time.Time) string {
	if end.IsZero() {
		d := time.Since(start)
		return fmt.Sprintf("%s (running)", formatDuration(d))
	}
	return formatDuration(end.Sub(start))
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", m, s)
}

func stateClass(state string) string {
	switch store.RenderState(state) {
	case store.RenderActive:
		return "state-active"
	case store.RenderSucceeded:
		return "state-succeeded"
	case store.RenderFailed:
		return "state-failed"
	default:
		return ""
	}
}

func stateIcon(state string) template.HTML {
	switch store.RenderState(state) {
	case store.RenderActive:
		return "&#9654;"
	case store.RenderSucceeded:
		return "&#10003;"
	case store.RenderFailed:
		return "&#10007;"
	default:
		return "&#8226;"
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
