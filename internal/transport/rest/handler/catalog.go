package handler

import (
	"adaudit/internal/catalog"
	"adaudit/internal/model"
	"net/http"

	"github.com/gorilla/mux"
)

// CatalogHandler exposes the question catalog
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// SegmentSummary describes one business model without its questions
type SegmentSummary struct {
	Model       model.BusinessModel `json:"model"`
	Description string              `json:"description"`
	Questions   int                 `json:"questions"`
}

// CatalogResponse is the body of GET /v1/catalog
type CatalogResponse struct {
	Version        string           `json:"version"`
	BusinessModels []SegmentSummary `json:"businessModels"`
	Channels       []model.Channel  `json:"channels"`
}

// QuestionsResponse is the body of GET /v1/catalog/{businessModel}
type QuestionsResponse struct {
	Version       string              `json:"version"`
	BusinessModel model.BusinessModel `json:"businessModel"`
	Channel       model.Channel       `json:"channel"`
	Questions     []model.Question    `json:"questions"`
}

// List handles GET /v1/catalog
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	segments := h.catalog.Segments()
	summaries := make([]SegmentSummary, 0, len(segments))
	for _, seg := range segments {
		summaries = append(summaries, SegmentSummary{
			Model:       seg.Model,
			Description: seg.Description,
			Questions:   len(seg.Questions),
		})
	}

	writeJSON(w, http.StatusOK, CatalogResponse{
		Version:        h.catalog.Version,
		BusinessModels: summaries,
		Channels:       []model.Channel{model.ChannelMeta, model.ChannelGoogle, model.ChannelBoth},
	})
}

// Questions handles GET /v1/catalog/{businessModel}?channel=
func (h *CatalogHandler) Questions(w http.ResponseWriter, r *http.Request) {
	bm := model.BusinessModel(mux.Vars(r)["businessModel"])
	ch := model.Channel(r.URL.Query().Get("channel"))
	if ch == "" {
		ch = model.ChannelBoth
	}

	questions, err := h.catalog.Questions(bm, ch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QuestionsResponse{
		Version:       h.catalog.Version,
		BusinessModel: bm,
		Channel:       ch,
		Questions:     questions,
	})
}
