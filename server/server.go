package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"land_alert/dedup"
	"land_alert/models"
	"land_alert/notify"
	"land_alert/pipeline"
	"land_alert/renderer"
)

// Processor is what the HTTP layer needs from the pipeline.
type Processor interface {
	Process(ctx context.Context, req *models.AlertRequest) (*models.Outcome, error)
}

// Server exposes the webhook and health endpoints.
type Server struct {
	pipeline        Processor
	store           dedup.Store
	proxyConfigured bool
	minLandM2       int
}

func New(p Processor, store dedup.Store, proxyConfigured bool, minLandM2 int) *Server {
	return &Server{
		pipeline:        p,
		store:           store,
		proxyConfigured: proxyConfigured,
		minLandM2:       minLandM2,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/webhook/listing", s.handleWebhook).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	return r
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req models.AlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !validListingURL(req.URL) {
		writeError(w, http.StatusBadRequest, "url must be an absolute http(s) URL")
		return
	}
	if req.Source == "" {
		req.Source = models.DefaultSource
	}

	out, err := s.pipeline.Process(r.Context(), &req)
	if err != nil {
		s.writeProcessError(w, &req, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) writeProcessError(w http.ResponseWriter, req *models.AlertRequest, err error) {
	var deliveryErr *notify.DeliveryError

	switch {
	case errors.Is(err, renderer.ErrRenderTimeout):
		log.Printf("Render timeout for %s", req.URL)
		writeError(w, http.StatusGatewayTimeout, "timeout loading page")
	case errors.Is(err, pipeline.ErrChallengeBlocked):
		log.Printf("Challenge block for %s", req.URL)
		writeError(w, http.StatusForbidden, "blocked by challenge/CAPTCHA")
	case errors.As(err, &deliveryErr):
		log.Printf("Delivery failed for %s: %v", req.URL, err)
		writeError(w, http.StatusBadGateway, "telegram send failed: "+err.Error())
	default:
		log.Printf("Render error for %s: %v", req.URL, err)
		writeError(w, http.StatusBadGateway, "browser error: "+err.Error())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"proxy_configured": s.proxyConfigured,
		"min_land_m2":      s.minLandM2,
		"dedup_entries":    s.store.Len(),
	})
}

func validListingURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
