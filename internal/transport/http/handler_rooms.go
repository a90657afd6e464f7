package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"bingo-battle/internal/app/room"
	"bingo-battle/internal/game"
	"bingo-battle/internal/game/viewmodel"

	"github.com/go-chi/chi/v5"
)

type RoomService interface {
	Create(ctx context.Context) (*room.CreateResult, error)
	Get(ctx context.Context, roomID string) (*viewmodel.RoomView, error)
}

type RoomHandlers struct {
	svc RoomService
}

func NewRoomHandlers(svc RoomService) *RoomHandlers {
	return &RoomHandlers{svc: svc}
}

func (h *RoomHandlers) CreateRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricRoomCreateTotal.Add(1)
		res, err := h.svc.Create(r.Context())
		if err != nil {
			metricRoomCreateErrors.Add(1)
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func (h *RoomHandlers) GetRoom() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "room_id")))
		view, err := h.svc.Get(r.Context(), roomID)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, view)
		case errors.Is(err, game.ErrNotFound):
			WriteHTTPError(w, http.StatusNotFound, game.ErrNotFound.Error())
		case errors.Is(err, room.ErrInvalidRequest):
			WriteHTTPError(w, http.StatusBadRequest, room.ErrInvalidRequest.Error())
		default:
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
		}
	}
}

func HealthHandler(st Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if st == nil {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
		if err := st.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
