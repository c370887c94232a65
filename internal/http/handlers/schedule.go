package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/hvac-dispatch/internal/board"
	"github.com/wolfman30/hvac-dispatch/internal/command"
	"github.com/wolfman30/hvac-dispatch/internal/dispatch"
	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

const maxRequestBytes = 1 << 20

// ScheduleHandler exposes the dispatch board as a JSON API.
type ScheduleHandler struct {
	board  *board.Board
	logger *logging.Logger
}

func NewScheduleHandler(b *board.Board, logger *logging.Logger) *ScheduleHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ScheduleHandler{board: b, logger: logger.Component("schedule-api")}
}

// Routes returns the API mounted under /api.
func (h *ScheduleHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/technicians", h.ListTechnicians)
	r.Get("/customers", h.ListCustomers)
	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", h.ListAppointments)
		r.Post("/", h.CreateAppointment)
		r.Get("/{id}", h.GetAppointment)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Delete("/{id}", h.DeleteAppointment)
	})
	r.Post("/recommendations/technicians", h.RecommendTechnicians)
	r.Post("/recommendations/dates", h.SuggestDates)
	r.Get("/insights/efficiency", h.Efficiency)
	r.Post("/commands", h.Interpret)
	r.Post("/commands/parse", h.Parse)
	r.Get("/voice", NewVoiceHandler(h.board, h.logger).ServeHTTP)
	return r
}

func (h *ScheduleHandler) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.board.Technicians())
}

func (h *ScheduleHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.board.Customers())
}

func (h *ScheduleHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date != "" && !dispatch.ValidDate(date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	writeJSON(w, http.StatusOK, h.board.Appointments(date))
}

func (h *ScheduleHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	appt, err := h.board.Appointment(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *ScheduleHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req board.ScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	appt, err := h.board.Schedule(req)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

type statusRequest struct {
	Status dispatch.Status `json:"status"`
}

func (h *ScheduleHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	appt, err := h.board.UpdateStatus(chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func (h *ScheduleHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Delete(chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScheduleHandler) RecommendTechnicians(w http.ResponseWriter, r *http.Request) {
	var q board.TechnicianQuery
	if !decodeBody(w, r, &q) {
		return
	}
	recs, err := h.board.RecommendTechnicians(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *ScheduleHandler) SuggestDates(w http.ResponseWriter, r *http.Request) {
	var q board.DateQuery
	if !decodeBody(w, r, &q) {
		return
	}
	scores, err := h.board.SuggestDates(q)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (h *ScheduleHandler) Efficiency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.board.Analyze())
}

type commandRequest struct {
	Text string `json:"text"`
}

type commandResponse struct {
	Intent  command.Intent `json:"intent"`
	Message string         `json:"message"`
}

func (h *ScheduleHandler) Interpret(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if !decodeBody(w, r, &req) {
		return
	}
	intent, res, err := h.board.Interpret(req.Text)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Intent: intent, Message: res.Message})
}

func (h *ScheduleHandler) Parse(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if !decodeBody(w, r, &req) {
		return
	}
	intent, err := h.board.ParseCommand(req.Text)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, intent)
}

func (h *ScheduleHandler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, board.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, board.ErrAppointmentNotFound),
		errors.Is(err, board.ErrCustomerNotFound),
		errors.Is(err, board.ErrTechnicianNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("schedule request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
