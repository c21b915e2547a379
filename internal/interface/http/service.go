package httpservice

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/otcdesk/walletd/internal/core/application"
	wsbridge "github.com/otcdesk/walletd/internal/infrastructure/bridge"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port   uint32
	NoCors bool
}

func (c Config) address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Service is the HTTP surface consumed by the trading-desk UI: JSON
// endpoints for the session and account operations, plus a websocket feed of
// session snapshots so the UI can react to any change.
type Service struct {
	cfg      Config
	session  *application.SessionService
	accounts *application.AccountService
	hub      *wsbridge.Hub

	server   *http.Server
	upgrader websocket.Upgrader
}

func NewService(
	cfg Config,
	session *application.SessionService,
	accounts *application.AccountService,
	hub *wsbridge.Hub,
) *Service {
	return &Service{
		cfg:      cfg,
		session:  session,
		accounts: accounts,
		hub:      hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (s *Service) Start() error {
	s.server = &http.Server{
		Addr:    s.cfg.address(),
		Handler: s.router(),
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http interface exited")
		}
	}()

	log.Infof("http interface listening on %s", s.cfg.address())
	return nil
}

func (s *Service) router() *chi.Mux {
	router := chi.NewRouter()
	if !s.cfg.NoCors {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
	}

	router.Route("/v1", func(r chi.Router) {
		r.Get("/session", s.getSession)
		r.Post("/session/connect", s.connect)
		r.Post("/session/disconnect", s.disconnect)
		r.Post("/session/refresh", s.refreshAccounts)
		r.Post("/session/active-account", s.setActiveAccount)
		r.Get("/session/events", s.sessionEvents)

		r.Get("/accounts", s.listAccounts)
		r.Post("/accounts", s.createAccount)
		r.Delete("/accounts/{address}", s.deleteAccount)
		r.Get("/accounts/{id}/metadata/{key}", s.getAccountMetadata)
		r.Put("/accounts/{id}/metadata/{key}", s.setAccountMetadata)

		r.Get("/senders", s.listSenders)
		r.Post("/senders", s.registerSender)

		r.Post("/fee-juice/{recipient}", s.pushFeeJuice)
		r.Delete("/fee-juice/{recipient}", s.popFeeJuice)

		r.Get("/extension/channel", s.extensionChannel)
	})

	return router
}

func (s *Service) Stop() {
	if s.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("error while stopping http interface")
	}
}
