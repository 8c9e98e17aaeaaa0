// Package main is the entry point for the pris compiler.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/prislang/pris/pkg/api"
	"github.com/prislang/pris/pkg/ast"
	"github.com/prislang/pris/pkg/lexer"
	"github.com/prislang/pris/pkg/parser"
	"github.com/prislang/pris/pkg/resources"
	"github.com/prislang/pris/pkg/runtime"
	"github.com/prislang/pris/pkg/stdlib"
	"github.com/prislang/pris/pkg/store"
	"github.com/prislang/pris/pkg/types"
	"github.com/prislang/pris/web"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "pris",
	Short: "Pris slide graphics compiler",
}

var lexCmd = &cobra.Command{
	Use:   "lex <file>",
	Short: "Tokenize a document and print the tokens",
	Args:  cobra.ExactArgs(1),
	RunE:  runLex,
}

var compileCmd = &cobra.Command{
	Use:   "compile <file>",
	Short: "Compile a document to its scene JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the compile service",
	RunE:  runServe,
}

func init() {
	rootCmd.Version = version + " (commit=" + commit + ", built=" + date + ")"
	rootCmd.SetVersionTemplate("pris version {{.Version}}\n")

	compileCmd.Flags().String("fonts", "", "Path to a YAML font manifest (env PRIS_FONTS)")
	compileCmd.Flags().String("output", "", "Write the scene JSON to this file instead of stdout")

	serveCmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	serveCmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	serveCmd.Flags().String("fonts", "", "Path to a YAML font manifest (env PRIS_FONTS)")
	serveCmd.Flags().String("documents-dir", "", "Directory of .pris files to load at startup (env DOCUMENTS_DIR)")

	rootCmd.AddCommand(lexCmd, compileCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runLex(cmd *cobra.Command, args []string) error {
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	tokens, err := lexer.Lex(src)
	if err != nil {
		return sourceError(src, err)
	}

	for _, tok := range tokens {
		fmt.Printf("%4d..%-4d %-12s %s\n", tok.Start, tok.End, tok.Kind, src[tok.Start:tok.End])
	}
	return nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	fontsPath := envOrDefault("PRIS_FONTS", "")
	if v, _ := cmd.Flags().GetString("fonts"); v != "" {
		fontsPath = v
	}

	fonts, err := loadFonts(fontsPath)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	doc, err := parser.Parse(src)
	if err != nil {
		return sourceError(src, err)
	}

	res := resources.NewManager(fonts, nil)
	loader := &fileLoader{dir: filepath.Dir(args[0])}
	ev := runtime.New(stdlib.NewRegistry(res), loader)

	val, err := ev.EvalDocument(types.NewEnv(), doc)
	if err != nil {
		return sourceError(src, err)
	}
	if val.Kind() != types.KindFrame {
		return fmt.Errorf("document evaluated to %s, expected a frame", val.Type())
	}

	scene, err := api.NewScene(val.AsFrame(), ev.CanvasWidth, ev.CanvasHeight)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if out, _ := cmd.Flags().GetString("output"); out != "" {
		return os.WriteFile(out, data, 0o644)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	port := envOrDefault("PORT", "8787")
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		port = fmt.Sprintf("%d", v)
	}

	host := envOrDefault("HOST", "0.0.0.0")
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		host = v
	}

	fontsPath := envOrDefault("PRIS_FONTS", "")
	if v, _ := cmd.Flags().GetString("fonts"); v != "" {
		fontsPath = v
	}

	documentsDir := os.Getenv("DOCUMENTS_DIR")
	if v, _ := cmd.Flags().GetString("documents-dir"); v != "" {
		documentsDir = v
	}

	fonts, err := loadFonts(fontsPath)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	s := store.New()
	server := api.New(s, fonts)

	// Load documents from directory if specified
	if documentsDir != "" {
		if err := server.LoadDir(documentsDir); err != nil {
			log.Printf("Warning: failed to load documents directory: %v", err)
		}
	}

	// Register the web UI (non-fatal if template parsing fails)
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Warning: web UI disabled due to template error: %v", r)
			}
		}()
		ui := web.New(s)
		ui.Register(server.App())
	}()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Pris compile service listening on %s", addr)
	if documentsDir != "" {
		log.Printf("Documents directory: %s", documentsDir)
	}
	return server.Listen(addr)
}

// fileLoader resolves import paths against the directory of the document
// being compiled: import a.b reads a/b.pris.
type fileLoader struct {
	dir string
}

func (l *fileLoader) Load(path []string) (*ast.Document, error) {
	file := filepath.Join(l.dir, filepath.Join(path...)+".pris")
	src, err := os.ReadFile(file)
	if err != nil {
		return nil, types.NewMissingFileError(file)
	}
	return parser.Parse(src)
}

func loadFonts(path string) (*resources.FontMap, error) {
	if path == "" {
		return resources.NewFontMap(), nil
	}
	return resources.LoadFontMap(path)
}

// sourceError prints the source excerpt of located errors before handing
// the error back to cobra.
func sourceError(src []byte, err error) error {
	var lexErr *types.LexicalError
	if errors.As(err, &lexErr) {
		fmt.Fprintln(os.Stderr, lexErr.Excerpt(src))
	}
	return err
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
