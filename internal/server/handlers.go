package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/communal-score/communityd/internal/auth"
	"github.com/communal-score/communityd/internal/chain"
	"github.com/communal-score/communityd/internal/events"
	"github.com/communal-score/communityd/internal/model"
	"github.com/communal-score/communityd/internal/redeem"
	"github.com/communal-score/communityd/internal/storage"
)

type createEventRequest struct {
	EventName string  `json:"event_name"`
	Metric1   float64 `json:"metric_1"`
	Metric2   float64 `json:"metric_2"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	ev, err := s.events.Create(r.Context(), userID, auth.Email(r.Context()), req.EventName, req.Metric1, req.Metric2)
	if err != nil {
		if errors.Is(err, events.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("create event failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "create event failed")
		return
	}

	writeJSON(w, http.StatusCreated, ev)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	evs, err := s.events.ListForUser(r.Context(), userID)
	if err != nil {
		s.logger.Error("list events failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list events failed")
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	sum, err := s.events.Summarize(r.Context(), userID)
	if err != nil {
		s.logger.Error("summary failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "summary failed")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type putWalletRequest struct {
	WalletAddress string `json:"wallet_address"`
}

func (s *Server) handlePutWallet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())

	var req putWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if !common.IsHexAddress(req.WalletAddress) {
		writeError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}

	binding := &model.WalletBinding{
		UserID:        userID,
		Email:         auth.Email(r.Context()),
		WalletAddress: common.HexToAddress(req.WalletAddress).Hex(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.wallets.Upsert(r.Context(), binding); err != nil {
		s.logger.Error("wallet upsert failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "save wallet failed")
		return
	}
	writeJSON(w, http.StatusOK, binding)
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	binding, err := s.wallets.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no wallet connected")
			return
		}
		s.logger.Error("wallet lookup failed", zap.String("user_id", userID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "wallet lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, binding)
}

func (s *Server) handleAdminListEvents(w http.ResponseWriter, r *http.Request) {
	evs, err := s.eventStore.ListAll(r.Context())
	if err != nil {
		s.logger.Error("admin list events failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list events failed")
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

func (s *Server) handleAdminEventTransactions(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")
	records, err := s.transactions.GetByEvent(r.Context(), eventID)
	if err != nil {
		s.logger.Error("transactions lookup failed", zap.String("event_id", eventID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "transactions lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAdminRedeem(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "id")

	rec, err := s.coordinator.Redeem(r.Context(), eventID)
	if err == nil {
		writeJSON(w, http.StatusOK, rec)
		return
	}

	var perr *redeem.PersistError
	var revert *chain.RevertError
	var network *chain.NetworkError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, redeem.ErrAlreadyRedeemed):
		writeError(w, http.StatusConflict, "event already redeemed")
	case errors.Is(err, redeem.ErrUnboundWallet):
		writeError(w, http.StatusUnprocessableEntity, "user has not connected a wallet")
	case errors.Is(err, redeem.ErrNoReward):
		writeError(w, http.StatusUnprocessableEntity, "event has no token reward")
	case errors.As(err, &perr):
		// The transfer confirmed on-chain but bookkeeping failed; return the
		// tx hash so the operator can reconcile manually.
		s.logger.Error("redemption persistence failed after confirmation",
			zap.String("event_id", eventID),
			zap.String("tx_hash", perr.TxHash),
			zap.Error(err),
		)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:  "transfer confirmed but persistence failed; manual reconciliation required",
			TxHash: perr.TxHash,
		})
	case errors.As(err, &revert):
		writeError(w, http.StatusBadGateway, revert.Error())
	case errors.As(err, &network):
		writeError(w, http.StatusBadGateway, network.Error())
	default:
		s.logger.Error("redemption failed", zap.String("event_id", eventID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "redemption failed")
	}
}
