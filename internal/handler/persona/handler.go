package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/objectchat/backend/internal/model/persona"
	"github.com/zhouzirui/objectchat/backend/pkg/utils"
)

// Handler exposes the curated persona catalog for the object picker.
type Handler struct{}

// New creates the persona handler.
func New() *Handler {
	return &Handler{}
}

// RegisterRoutes mounts the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personas", h.handleListPersonas)
}

type catalogEntry struct {
	Object  string          `json:"object"`
	Persona persona.Persona `json:"persona"`
}

func (h *Handler) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	objects := persona.Objects()
	entries := make([]catalogEntry, 0, len(objects))
	for _, object := range objects {
		if p, ok := persona.Builtin(object); ok {
			entries = append(entries, catalogEntry{Object: object, Persona: p})
		}
	}
	utils.RespondJSON(w, http.StatusOK, entries)
}
