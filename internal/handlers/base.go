package handlers

import (
	"net/http"

	"github.com/sdko-org/stream-gate/internal/config"
	"github.com/sdko-org/stream-gate/internal/registry"
	"github.com/sirupsen/logrus"
)

type AccessCodeHandler struct {
	cfg      *config.Config
	registry *registry.Registry
	log      *logrus.Entry
}

func NewAccessCodeHandler(logger *logrus.Logger, cfg *config.Config, reg *registry.Registry) *AccessCodeHandler {
	return &AccessCodeHandler{
		cfg:      cfg,
		registry: reg,
		log:      logger.WithField("component", "access_code_handler"),
	}
}

// isAdmin compares the bearer token by exact string equality against the
// configured secret.
func (h *AccessCodeHandler) isAdmin(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+h.cfg.AdminToken
}
