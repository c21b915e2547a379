package httpservice

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/otcdesk/walletd/internal/core/application"
	"github.com/otcdesk/walletd/internal/core/domain"
	wsbridge "github.com/otcdesk/walletd/internal/infrastructure/bridge"

	log "github.com/sirupsen/logrus"
)

type accountDTO struct {
	Address string `json:"address"`
	Label   string `json:"label"`
}

type sessionDTO struct {
	Status        string       `json:"status"`
	ProviderType  string       `json:"providerType,omitempty"`
	ActiveAccount *accountDTO  `json:"activeAccount,omitempty"`
	Accounts      []accountDTO `json:"accounts"`
}

func toAccountsDTO(accounts []application.WalletAccount) []accountDTO {
	out := make([]accountDTO, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, accountDTO{Address: a.Address, Label: a.Label})
	}
	return out
}

func toSessionDTO(session application.Session) sessionDTO {
	dto := sessionDTO{
		Status:       string(session.Status),
		ProviderType: session.ProviderType,
		Accounts:     toAccountsDTO(session.Accounts),
	}
	if session.ActiveAccount != nil {
		dto.ActiveAccount = &accountDTO{
			Address: session.ActiveAccount.Address,
			Label:   session.ActiveAccount.Label,
		}
	}
	return dto
}

func (s *Service) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toSessionDTO(s.session.Session()))
}

func (s *Service) connect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Provider string `json:"provider"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if err := s.session.Connect(r.Context(), req.Provider); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDTO(s.session.Session()))
}

func (s *Service) disconnect(w http.ResponseWriter, r *http.Request) {
	s.session.Disconnect(r.Context())
	writeJSON(w, http.StatusOK, toSessionDTO(s.session.Session()))
}

func (s *Service) refreshAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.session.RefreshAccounts(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountsDTO(accounts))
}

func (s *Service) setActiveAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing address"))
		return
	}
	s.session.SetActiveAccount(req.Address)
	writeJSON(w, http.StatusOK, toSessionDTO(s.session.Session()))
}

func (s *Service) listAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toAccountsDTO(s.session.Session().Accounts))
}

func (s *Service) createAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Alias string `json:"alias"`
		Type  string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	accountType, err := domain.ParseAccountType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	account, accounts, err := s.accounts.CreateAccount(r.Context(), req.Alias, accountType)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	pubkey, err := domain.SigningPubKey(account.Type, account.SigningKey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Address   string       `json:"address"`
		Alias     string       `json:"alias"`
		Type      string       `json:"type"`
		PublicKey string       `json:"publicKey"`
		Accounts  []accountDTO `json:"accounts"`
	}{
		account.Address, account.Alias, string(account.Type),
		hex.EncodeToString(pubkey), toAccountsDTO(accounts),
	})
}

func (s *Service) deleteAccount(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if err := s.accounts.DeleteAccount(r.Context(), address); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountsDTO(s.session.Session().Accounts))
}

func (s *Service) getAccountMetadata(w http.ResponseWriter, r *http.Request) {
	id, key := chi.URLParam(r, "id"), chi.URLParam(r, "key")
	value, err := s.accounts.AccountMetadata(r.Context(), id, key)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Value string `json:"value"`
	}{base64.StdEncoding.EncodeToString(value)})
}

func (s *Service) setAccountMetadata(w http.ResponseWriter, r *http.Request) {
	id, key := chi.URLParam(r, "id"), chi.URLParam(r, "key")
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	value, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("value must be base64 encoded"))
		return
	}
	if err := s.accounts.SetAccountMetadata(r.Context(), id, key, value); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) listSenders(w http.ResponseWriter, r *http.Request) {
	senders, err := s.accounts.ListSenders(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountsDTO(senders))
}

func (s *Service) registerSender(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
		Alias   string `json:"alias"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing address"))
		return
	}
	if err := s.accounts.RegisterSender(r.Context(), req.Address, req.Alias); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) pushFeeJuice(w http.ResponseWriter, r *http.Request) {
	recipient := chi.URLParam(r, "recipient")
	var req struct {
		Amount    uint64 `json:"amount"`
		Secret    string `json:"secret"`
		LeafIndex uint64 `json:"leafIndex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	entry := domain.FeeJuiceEntry{
		Amount: req.Amount, Secret: req.Secret, LeafIndex: req.LeafIndex,
	}
	if err := s.accounts.PushFeeJuice(r.Context(), recipient, entry); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) popFeeJuice(w http.ResponseWriter, r *http.Request) {
	recipient := chi.URLParam(r, "recipient")
	entry, err := s.accounts.PopFeeJuice(r.Context(), recipient)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Amount    uint64 `json:"amount"`
		Secret    string `json:"secret"`
		LeafIndex uint64 `json:"leafIndex"`
	}{entry.Amount, entry.Secret, entry.LeafIndex})
}

// sessionEvents upgrades to a websocket and pushes a session snapshot on
// every change, starting with the current one.
func (s *Service) sessionEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("failed to upgrade session events connection")
		return
	}
	defer conn.Close()

	updates := s.session.Subscribe()
	defer s.session.Unsubscribe(updates)

	if err := conn.WriteJSON(toSessionDTO(s.session.Session())); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case session, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(toSessionDTO(session)); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// extensionChannel is where the browser-extension wallet attaches. The hub
// keeps at most one live connection, so a reconnecting extension replaces the
// previous one.
func (s *Service) extensionChannel(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("failed to upgrade extension connection")
		return
	}
	s.hub.Attach(conn)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrMetadataNotFound),
		errors.Is(err, domain.ErrSenderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFeeJuiceEmpty):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownAccountType),
		errors.Is(err, domain.ErrMissingAlias),
		errors.Is(err, application.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrNotConnected),
		errors.Is(err, application.ErrNoEmbeddedSession):
		return http.StatusConflict
	case errors.Is(err, wsbridge.ErrNoExtension),
		errors.Is(err, application.ErrConnectionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Debug("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{err.Error()})
}
