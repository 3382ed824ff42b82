// Package api exposes the factory and its ledgers over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/launchforge/tokenfactory/factory"
	"github.com/launchforge/tokenfactory/store"
	"github.com/launchforge/tokenfactory/stream"
	"github.com/launchforge/tokenfactory/token"
)

// Server wires the factory, record store and event stream into HTTP
// handlers.
type Server struct {
	factory  *factory.Factory
	records  *store.Store
	hub      *stream.Hub
	registry *prometheus.Registry
	log      *logrus.Entry
}

func NewServer(f *factory.Factory, records *store.Store, hub *stream.Hub, registry *prometheus.Registry, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{
		factory:  f,
		records:  records,
		hub:      hub,
		registry: registry,
		log:      logger.WithField("component", "api"),
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/tokens", s.handleCreateToken).Methods(http.MethodPost)
	r.HandleFunc("/api/tokens", s.handleListTokens).Methods(http.MethodGet)
	r.HandleFunc("/api/tokens/{address}", s.handleTokenInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/tokens/{address}/balance/{holder}", s.handleTokenBalance).Methods(http.MethodGet)
	r.HandleFunc("/api/tokens/{address}/holders", s.handleTokenHolders).Methods(http.MethodGet)
	r.HandleFunc("/api/fees", s.handleGetFees).Methods(http.MethodGet)
	r.HandleFunc("/api/fees/{address}", s.handleCalculateFee).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/pause", s.handlePause).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/unpause", s.handleUnpause).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/base-fee", s.handleSetBaseFee).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/whitelist", s.handleSetWhitelist).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/discount", s.handleSetDiscountConfig).Methods(http.MethodPost)
	r.HandleFunc("/api/admin/withdraw", s.handleWithdraw).Methods(http.MethodPost)

	if s.hub != nil {
		r.HandleFunc("/ws", s.hub.HandleWS)
	}
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

type createTokenRequest struct {
	Caller        string `json:"caller"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Decimals      uint8  `json:"decimals"`
	InitialSupply uint64 `json:"initial_supply"`
	AntiBot       bool   `json:"anti_bot"`
	AntiWhale     bool   `json:"anti_whale"`
	Airdrop       bool   `json:"airdrop"`
	Payment       uint64 `json:"payment"`
}

func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var req createTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	addr, fee, err := s.factory.CreateToken(req.Caller, factory.CreateParams{
		Name:          req.Name,
		Symbol:        req.Symbol,
		Decimals:      req.Decimals,
		InitialSupply: req.InitialSupply,
		AntiBot:       req.AntiBot,
		AntiWhale:     req.AntiWhale,
		Airdrop:       req.Airdrop,
		Payment:       req.Payment,
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token_address": addr,
		"fee_charged":   fee,
	})
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	if s.records != nil {
		records, err := s.records.Creations()
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"tokens": records})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"tokens": s.factory.TokenAddresses(),
	})
}

func (s *Server) handleTokenInfo(w http.ResponseWriter, r *http.Request) {
	t, ok := s.factory.Token(mux.Vars(r)["address"])
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("unknown token"))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":                   t.Name,
		"symbol":                 t.Symbol,
		"decimals":               t.Decimals,
		"owner":                  t.Owner(),
		"total_supply":           t.TotalSupply(),
		"anti_bot_enabled":       t.AntiBotEnabled(),
		"anti_bot_expiry_height": t.AntiBotExpiryHeight(),
		"anti_whale_enabled":     t.AntiWhaleEnabled(),
		"max_transaction_amount": t.MaxTransactionAmount(),
		"max_wallet_amount":      t.MaxWalletAmount(),
	})
}

func (s *Server) handleTokenBalance(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	t, ok := s.factory.Token(vars["address"])
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("unknown token"))
		return
	}

	balance, err := t.BalanceOf(vars["holder"])
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"holder":  vars["holder"],
		"balance": balance,
	})
}

func (s *Server) handleTokenHolders(w http.ResponseWriter, r *http.Request) {
	t, ok := s.factory.Token(mux.Vars(r)["address"])
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("unknown token"))
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"holder_count": t.HolderCount(),
		"balances":     t.GetAllBalances(),
	})
}

func (s *Server) handleGetFees(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.factory.GetFees())
}

func (s *Server) handleCalculateFee(w http.ResponseWriter, r *http.Request) {
	caller := mux.Vars(r)["address"]
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"caller": caller,
		"fee":    s.factory.CalculateFee(caller),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.factory.GetStats()
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_tokens_created": stats.TotalTokensCreated,
		"total_fees_collected": stats.TotalFeesCollected,
		"balance":              s.factory.GetBalance(),
	})
}

type adminRequest struct {
	Caller             string   `json:"caller"`
	BaseFee            uint64   `json:"base_fee,omitempty"`
	To                 string   `json:"to,omitempty"`
	Addresses          []string `json:"addresses,omitempty"`
	Whitelisted        bool     `json:"whitelisted,omitempty"`
	DiscountToken      string   `json:"discount_token,omitempty"`
	DiscountThreshold  uint64   `json:"discount_threshold,omitempty"`
	DiscountPercentage uint64   `json:"discount_percentage,omitempty"`
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.handleAdmin(w, r, func(req adminRequest) error {
		return s.factory.Pause(req.Caller)
	})
}

func (s *Server) handleUnpause(w http.ResponseWriter, r *http.Request) {
	s.handleAdmin(w, r, func(req adminRequest) error {
		return s.factory.Unpause(req.Caller)
	})
}

func (s *Server) handleSetBaseFee(w http.ResponseWriter, r *http.Request) {
	s.handleAdmin(w, r, func(req adminRequest) error {
		return s.factory.SetBaseFee(req.Caller, req.BaseFee)
	})
}

func (s *Server) handleSetWhitelist(w http.ResponseWriter, r *http.Request) {
	s.handleAdmin(w, r, func(req adminRequest) error {
		return s.factory.SetWhitelist(req.Caller, req.Addresses, req.Whitelisted)
	})
}

func (s *Server) handleSetDiscountConfig(w http.ResponseWriter, r *http.Request) {
	s.handleAdmin(w, r, func(req adminRequest) error {
		return s.factory.SetDiscountConfig(req.Caller, req.DiscountToken,
			req.DiscountThreshold, req.DiscountPercentage)
	})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	s.handleAdmin(w, r, func(req adminRequest) error {
		if req.To != "" {
			return s.factory.WithdrawTo(req.Caller, req.To)
		}
		return s.factory.Withdraw(req.Caller)
	})
}

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request, fn func(adminRequest) error) {
	var req adminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := fn(req); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, factory.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, factory.ErrPausedState),
		errors.Is(err, factory.ErrAlreadyPaused),
		errors.Is(err, factory.ErrNotPaused),
		errors.Is(err, factory.ErrReentrantCall),
		errors.Is(err, factory.ErrNothingToWithdraw):
		return http.StatusConflict
	case errors.Is(err, factory.ErrInsufficientFee):
		return http.StatusPaymentRequired
	case errors.Is(err, factory.ErrRefundFailed),
		errors.Is(err, factory.ErrWithdrawFailed):
		return http.StatusBadGateway
	case errors.Is(err, token.ErrSupplyOverflow):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Error("Failed to write response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, err error) {
	s.writeJSON(w, code, map[string]interface{}{
		"success": false,
		"error":   err.Error(),
	})
}
