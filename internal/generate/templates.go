package generate

import "text/template"

var componentTemplates = map[string]*template.Template{
	KindController: template.Must(template.New("controller").Parse(controllerTemplate)),
	KindService:    template.Must(template.New("service").Parse(serviceTemplate)),
	KindRouter:     template.Must(template.New("router").Parse(routerTemplate)),
}

var typesTemplate = template.Must(template.New("types").Parse(typesTemplateText))

const controllerTemplate = `package {{.Package}}

import (
	"encoding/json"
	"net/http"
)

// {{.Model}}Controller handles HTTP requests for {{.Ident}} resources.
type {{.Model}}Controller struct {
	service *{{.Model}}Service
}

// New{{.Model}}Controller creates a controller backed by the given service.
func New{{.Model}}Controller(service *{{.Model}}Service) *{{.Model}}Controller {
	return &{{.Model}}Controller{service: service}
}

// List responds with all {{.Ident}} records.
func (c *{{.Model}}Controller) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}
`

const serviceTemplate = `package {{.Package}}

import "context"

// {{.Model}} is the {{.Ident}} domain model.
type {{.Model}} struct {
	ID string ` + "`json:\"id\"`" + `
}

// {{.Model}}Service implements {{.Ident}} business logic.
type {{.Model}}Service struct{}

// New{{.Model}}Service creates a service.
func New{{.Model}}Service() *{{.Model}}Service {
	return &{{.Model}}Service{}
}

// List returns all {{.Ident}} records.
func (s *{{.Model}}Service) List(ctx context.Context) ([]{{.Model}}, error) {
	return nil, nil
}
`

const routerTemplate = `package {{.Package}}

import "github.com/go-chi/chi/v5"

// Mount{{.Model}}Routes registers the {{.Ident}} endpoints on a router.
func Mount{{.Model}}Routes(r chi.Router) {
	controller := New{{.Model}}Controller(New{{.Model}}Service())

	r.Route("/{{.Package}}s", func(r chi.Router) {
		r.Get("/", controller.List)
	})
}
`

const typesTemplateText = `// Code generated by arkos generate types. DO NOT EDIT.

package types

import "time"

// Model is the interface every generated domain model satisfies.
type Model interface {
	ModelID() string
}

// Timestamps are the audit fields shared by generated models.
type Timestamps struct {
	CreatedAt time.Time ` + "`json:\"createdAt\"`" + `
	UpdatedAt time.Time ` + "`json:\"updatedAt\"`" + `
}
`
