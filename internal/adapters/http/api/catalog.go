package api

import (
	"net/http"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/session"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
)

// CatalogHandler handles bands, setlists and venues.
type CatalogHandler struct {
	deps CatalogDependencies
	log  logger.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies, log logger.Logger) *CatalogHandler {
	return &CatalogHandler{deps: deps, log: log}
}

// listResponse wraps collections so the body is always an object.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items)}
}

// HandleCreateBand handles POST /bands.
func (h *CatalogHandler) HandleCreateBand(w http.ResponseWriter, r *http.Request, sess session.Session) {
	const op = "api.post_band"
	var in model.BandInput
	if err := decodeBody(w, r, op, &in); err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	b, err := h.deps.CreateBand(r.Context(), sess, in)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// HandleListBands handles GET /bands.
func (h *CatalogHandler) HandleListBands(w http.ResponseWriter, r *http.Request, sess session.Session) {
	bands, err := h.deps.ListBands(r.Context(), sess)
	if err != nil {
		writeServiceError(w, r, h.log, "api.list_bands", err)
		return
	}
	writeJSON(w, http.StatusOK, list(bands))
}

// HandleGetBand handles GET /bands/{bandID}.
func (h *CatalogHandler) HandleGetBand(w http.ResponseWriter, r *http.Request, sess session.Session) {
	b, err := h.deps.GetBand(r.Context(), sess, r.PathValue("bandID"))
	if err != nil {
		writeServiceError(w, r, h.log, "api.get_band", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// HandleCreateSetlist handles POST /setlists.
func (h *CatalogHandler) HandleCreateSetlist(w http.ResponseWriter, r *http.Request, sess session.Session) {
	const op = "api.post_setlist"
	var in model.SetlistInput
	if err := decodeBody(w, r, op, &in); err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	sl, err := h.deps.CreateSetlist(r.Context(), sess, in)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, sl)
}

// HandleListSetlists handles GET /setlists.
func (h *CatalogHandler) HandleListSetlists(w http.ResponseWriter, r *http.Request, sess session.Session) {
	sls, err := h.deps.ListSetlists(r.Context(), sess)
	if err != nil {
		writeServiceError(w, r, h.log, "api.list_setlists", err)
		return
	}
	writeJSON(w, http.StatusOK, list(sls))
}

// HandleGetSetlist handles GET /setlists/{setListID}.
func (h *CatalogHandler) HandleGetSetlist(w http.ResponseWriter, r *http.Request, sess session.Session) {
	sl, err := h.deps.GetSetlist(r.Context(), sess, r.PathValue("setListID"))
	if err != nil {
		writeServiceError(w, r, h.log, "api.get_setlist", err)
		return
	}
	writeJSON(w, http.StatusOK, sl)
}

// HandleCreateVenue handles POST /venues.
func (h *CatalogHandler) HandleCreateVenue(w http.ResponseWriter, r *http.Request, _ session.Session) {
	const op = "api.post_venue"
	var in model.VenueInput
	if err := decodeBody(w, r, op, &in); err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	v, err := h.deps.CreateVenue(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// HandleListVenues handles GET /venues.
func (h *CatalogHandler) HandleListVenues(w http.ResponseWriter, r *http.Request, _ session.Session) {
	vs, err := h.deps.ListVenues(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, "api.list_venues", err)
		return
	}
	writeJSON(w, http.StatusOK, list(vs))
}

// HandleGetVenue handles GET /venues/{venueId}.
func (h *CatalogHandler) HandleGetVenue(w http.ResponseWriter, r *http.Request, _ session.Session) {
	v, err := h.deps.GetVenue(r.Context(), r.PathValue("venueId"))
	if err != nil {
		writeServiceError(w, r, h.log, "api.get_venue", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
