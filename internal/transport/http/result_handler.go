package http

import (
	"net/http"

	"exam-prep-service/internal/app"
	"exam-prep-service/internal/config"
	"exam-prep-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ResultHandler struct {
	service *app.ResultService
}

func NewResultHandler(service *app.ResultService) *ResultHandler {
	return &ResultHandler{service: service}
}

func (h *ResultHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Submit)
	r.Get("/user/{userId}", h.ByUser)
	r.Get("/user/{userId}/average", h.UserAverage)
	r.Get("/quiz/{quizId}", h.ByQuiz)
	r.Route("/contest/{type}", func(r chi.Router) {
		r.Get("/", h.ByContestType)
		r.Get("/daily-leaderboard", h.DailyLeaderboard)
		r.Get("/weekly-leaderboard", h.WeeklyLeaderboard)
		r.Get("/has-participated-today/{userId}", h.ParticipatedToday)
		r.Get("/has-participated-this-week/{userId}", h.ParticipatedThisWeek)
	})
	r.Get("/{id}", h.Get)
	return r
}

func (h *ResultHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var result domain.Result
	if err := decodeBody(r, &result); err != nil {
		config.WithContext(r.Context()).WithError(err).Warn("invalid quiz result body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	saved, err := h.service.Submit(r.Context(), result)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *ResultHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ResultHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() ([]domain.Result, error) {
		return h.service.ByUser(r.Context(), chi.URLParam(r, "userId"))
	})
}

func (h *ResultHandler) ByQuiz(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() ([]domain.Result, error) {
		return h.service.ByQuiz(r.Context(), chi.URLParam(r, "quizId"))
	})
}

func (h *ResultHandler) ByContestType(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() ([]domain.Result, error) {
		return h.service.ByContestType(r.Context(), chi.URLParam(r, "type"))
	})
}

func (h *ResultHandler) DailyLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() ([]domain.Result, error) {
		return h.service.DailyLeaderboard(r.Context(), chi.URLParam(r, "type"))
	})
}

func (h *ResultHandler) WeeklyLeaderboard(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() ([]domain.Result, error) {
		return h.service.WeeklyLeaderboard(r.Context(), chi.URLParam(r, "type"))
	})
}

func (h *ResultHandler) list(w http.ResponseWriter, r *http.Request, load func() ([]domain.Result, error)) {
	results, err := load()
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Error("failed to list quiz results")
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *ResultHandler) UserAverage(w http.ResponseWriter, r *http.Request) {
	avg, err := h.service.UserAverage(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, avg)
}

func (h *ResultHandler) ParticipatedToday(w http.ResponseWriter, r *http.Request) {
	ok, err := h.service.HasParticipatedToday(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ok)
}

func (h *ResultHandler) ParticipatedThisWeek(w http.ResponseWriter, r *http.Request) {
	ok, err := h.service.HasParticipatedThisWeek(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ok)
}
