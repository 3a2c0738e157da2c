package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"mundox-portal-bff/config"
	"mundox-portal-bff/internal/auth"
	"mundox-portal-bff/internal/backend"
	"mundox-portal-bff/internal/lab"
	"mundox-portal-bff/internal/mw"
	"mundox-portal-bff/internal/security"
	"mundox-portal-bff/internal/store"
)

// Deps are the collaborators the router and handlers are built from.
type Deps struct {
	Config    *config.Config
	Backend   *backend.Client
	Validator *lab.Validator
	Store     store.Store
	Notifier  mw.Notifier
	Verifier  *auth.Verifier
	Guard     *security.Guard
	Cache     mw.ResponseCache
	Webpush   *webpush.Options
	Logger    *zap.Logger
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cfg       *config.Config
	backend   *backend.Client
	validator *lab.Validator
	store     store.Store
	notifier  mw.Notifier
	verifier  *auth.Verifier
	guard     *security.Guard
	webpush   *webpush.Options
	log       *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		cfg:       d.Config,
		backend:   d.Backend,
		validator: d.Validator,
		store:     d.Store,
		notifier:  d.Notifier,
		verifier:  d.Verifier,
		guard:     d.Guard,
		webpush:   d.Webpush,
		log:       log,
	}
}
