package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"clinicore/internal/booking/service"
	httputil "clinicore/pkg/http"
	"clinicore/pkg/logger"
	"clinicore/pkg/model"
)

// BookingHandler exposes the public reservation flow: browse availability,
// lock a seat, release it, confirm it.
type BookingHandler struct {
	engine service.ReservationEngine
	log    *logger.Logger
}

func NewBookingHandler(engine service.ReservationEngine, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		engine: engine,
		log:    log,
	}
}

func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hospitalID := ps.ByName("hospitalId")
	date := r.URL.Query().Get("date")

	slots, err := h.engine.Availability(r.Context(), hospitalID, date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Availability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Availability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) LockSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LockSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "LockSlot", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.engine.LockSlot(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "LockSlot", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "LockSlot", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) ReleaseLock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	lockID := ps.ByName("lockId")

	if err := h.engine.ReleaseLock(r.Context(), lockID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ReleaseLock", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ConfirmBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "ConfirmBooking", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	confirmation, err := h.engine.ConfirmBooking(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ConfirmBooking", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, confirmation); err != nil {
		h.log.Error("failed to write created response", "handler", "ConfirmBooking", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/booking/slots/:hospitalId", h.Availability)
	router.POST("/api/v1/booking/slots/lock", h.LockSlot)
	router.DELETE("/api/v1/booking/slots/lock/:lockId", h.ReleaseLock)
	router.POST("/api/v1/booking/confirm", h.ConfirmBooking)
}
