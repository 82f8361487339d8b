package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mines-client/internal/ledger"
	"mines-client/internal/session"

	"github.com/shopspring/decimal"
)

// Controller is the session surface the API drives.
type Controller interface {
	View() session.View
	SelectSlot(ctx context.Context, slot int) error
	PlaceBet(ctx context.Context, amount decimal.Decimal) (ledger.BetRecord, error)
	ResetStats(ctx context.Context) error
	ResetGame(ctx context.Context) error
	Export(ctx context.Context) (ledger.Export, error)
}

type GameHandlers struct {
	ctl Controller
}

func NewGameHandlers(ctl Controller) *GameHandlers {
	return &GameHandlers{ctl: ctl}
}

func (h *GameHandlers) State() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, h.ctl.View())
	}
}

func (h *GameHandlers) SelectSlot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Slot int `json:"slot"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if err := h.ctl.SelectSlot(r.Context(), body.Slot); err != nil {
			writeCommandError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true, "selectedSlot": body.Slot})
	}
}

func (h *GameHandlers) PlaceBet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		bet, err := h.ctl.PlaceBet(r.Context(), body.Amount)
		if err != nil {
			writeCommandError(w, err)
			return
		}
		writeJSON(w, map[string]any{
			"ok":           true,
			"playerId":     bet.PlayerID,
			"roundId":      bet.RoundID,
			"amount":       bet.Amount,
			"selectedSlot": bet.Slot,
		})
	}
}

func (h *GameHandlers) ResetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.ctl.ResetStats(r.Context()); err != nil {
			writeCommandError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *GameHandlers) ResetGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.ctl.ResetGame(r.Context()); err != nil {
			writeCommandError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *GameHandlers) Export() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		exp, err := h.ctl.Export(r.Context())
		if err != nil {
			writeCommandError(w, err)
			return
		}
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="mines-stats-%s.json"`, exp.PlayerID))
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(exp)
	}
}

func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrRoundNotActive),
		errors.Is(err, ledger.ErrRoundInProgress),
		errors.Is(err, ledger.ErrBetAlreadyPlaced):
		WriteHTTPError(w, http.StatusConflict, err.Error())
	case ledger.IsRejection(err):
		WriteHTTPError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, session.ErrStopped):
		WriteHTTPError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		WriteHTTPError(w, http.StatusServiceUnavailable, "timeout")
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
