// Package generate scaffolds application components from templates.
package generate

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"unicode"

	"go.uber.org/zap"

	"github.com/arkos-run/arkos/internal/config"
	"github.com/arkos-run/arkos/internal/errors"
)

// Component kinds the generator knows about.
const (
	KindController = "controller"
	KindService    = "service"
	KindRouter     = "router"
	KindTypes      = "types"
)

// Options configures one generation.
type Options struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives diagnostics.
	Logger *zap.Logger

	// Model is the domain model name the component is generated for,
	// e.g. "user" or "BlogPost". Required for all kinds except types.
	Model string

	// Path overrides the output directory, relative to the project root.
	Path string
}

// templateData is what the component templates render against.
type templateData struct {
	Model   string // exported form, e.g. "User"
	Ident   string // lower-camel form, e.g. "user"
	Package string // package name, e.g. "user"
}

// Component renders one component and writes it to disk. Existing files are
// never overwritten. Returns the path that was written.
func Component(kind string, opts Options) (string, error) {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if kind == KindTypes {
		return Types(opts)
	}

	tmpl, ok := componentTemplates[kind]
	if !ok {
		return "", errors.New("A121").
			WithDetail("Unknown component kind " + kind).
			WithSuggestion("Supported kinds: controller, service, router, types")
	}
	if opts.Model == "" {
		return "", errors.New("A121").
			WithDetail("A model name is required for " + kind + " generation").
			WithSuggestion("Pass --model, e.g. arkos generate " + kind + " --model user")
	}

	data := newTemplateData(opts.Model)
	if data.Model == "" {
		return "", errors.New("A121").
			WithDetail("Model name " + opts.Model + " contains no usable characters").
			WithSuggestion("Use letters and digits, e.g. --model blog_post")
	}
	dir := opts.Path
	if dir == "" {
		dir = filepath.Join("app", data.Package)
	}
	outDir := filepath.Join(cfg.Dir(), dir)
	outPath := filepath.Join(outDir, data.Package+"_"+kind+".go")

	if _, err := os.Stat(outPath); err == nil {
		return "", errors.New("A122").
			WithDetail(outPath + " already exists").
			WithSuggestion("Remove the file first if you want it regenerated")
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", errors.New("A121").Wrap(err)
	}
	if err := render(tmpl, outPath, data); err != nil {
		return "", err
	}

	log.Info("generated component",
		zap.String("kind", kind),
		zap.String("path", outPath))
	return outPath, nil
}

// TypesArtifactPath is where the generated shared types live.
func TypesArtifactPath(cfg *config.Config) string {
	return filepath.Join(cfg.Dir(), "app", "types", "types.gen.go")
}

// TypesArtifactExists reports whether the types artifact has been generated.
func TypesArtifactExists(cfg *config.Config) bool {
	_, err := os.Stat(TypesArtifactPath(cfg))
	return err == nil
}

// Types writes the shared types artifact. Unlike components, regenerating it
// is the whole point, so an existing artifact is replaced.
func Types(opts Options) (string, error) {
	cfg := opts.Config
	outPath := TypesArtifactPath(cfg)

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return "", errors.New("A121").Wrap(err)
	}
	if err := render(typesTemplate, outPath, newTemplateData("Base")); err != nil {
		return "", err
	}
	return outPath, nil
}

func render(tmpl *template.Template, path string, data templateData) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return errors.New("A121").Wrap(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.New("A121").Wrap(err)
	}
	return nil
}

func newTemplateData(model string) templateData {
	exported := exportedName(model)
	if exported == "" {
		return templateData{}
	}
	lower := strings.ToLower(exported[:1]) + exported[1:]
	return templateData{
		Model:   exported,
		Ident:   lower,
		Package: strings.ToLower(exported),
	}
}

// exportedName turns "blog_post" or "blogPost" into "BlogPost".
func exportedName(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		if r == '_' || r == '-' || r == ' ' {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
