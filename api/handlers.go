package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Zee-create-614/papertrader/engine"
	"github.com/Zee-create-614/papertrader/ledger"
	"github.com/Zee-create-614/papertrader/stats"
	"github.com/Zee-create-614/papertrader/store"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createAccountRequest struct {
	ID              string          `json:"id,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	StartingBalance decimal.Decimal `json:"starting_balance"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := s.engine.CreateAccount(r.Context(), req.ID, req.Currency, req.StartingBalance)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := s.engine.GetAccount(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	acct, err := s.engine.GetAccount(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Summarize(acct))
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	v, err := s.engine.Valuate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleOpenTrade(w http.ResponseWriter, r *http.Request) {
	accountID := mux.Vars(r)["id"]

	var req engine.OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	trade, err := s.engine.OpenTrade(r.Context(), accountID, req)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	accountID := vars["id"]

	var req engine.CloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	trade, err := s.engine.CloseTrade(r.Context(), accountID, vars["tradeID"], req)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

type expireRequest struct {
	SettlementPrice decimal.Decimal `json:"settlement_price"`
}

func (s *Server) handleExpireTrade(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	accountID := vars["id"]

	var req expireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	trade, err := s.engine.ExpireTrade(r.Context(), accountID, vars["tradeID"], req.SettlementPrice)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	accountID := vars["id"]

	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.engine.DeleteTrade(r.Context(), accountID, vars["tradeID"]); err != nil {
		s.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeEngineError maps core sentinels onto HTTP statuses.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidTradeParameters),
		errors.Is(err, engine.ErrNotOption),
		errors.Is(err, engine.ErrNotExpired):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrTradeNotFound),
		errors.Is(err, store.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrTradeAlreadyClosed),
		errors.Is(err, engine.ErrAccountExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
