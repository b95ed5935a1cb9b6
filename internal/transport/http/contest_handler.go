package http

import (
	"errors"
	"net/http"

	"exam-prep-service/internal/app"
	"exam-prep-service/internal/config"
	"exam-prep-service/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ContestHandler struct {
	service *app.ContestService
}

func NewContestHandler(service *app.ContestService) *ContestHandler {
	return &ContestHandler{service: service}
}

// Routes mounts the contest API. Static segments are registered before the
// {id} patterns so /daily and /recent never resolve as ids.
func (h *ContestHandler) Routes(ws *WSHandler) chi.Router {
	r := chi.NewRouter()
	r.Get("/daily", h.Daily)
	r.Get("/weekly", h.Weekly)
	r.Get("/recent", h.Recent)
	r.Get("/type/{type}", h.ByType)
	r.Get("/user/{userId}/history", h.UserHistory)
	r.Post("/create/daily", h.CreateDaily)
	r.Post("/create/weekly", h.CreateWeekly)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Post("/submit", h.Submit)
		r.Get("/leaderboard", h.Leaderboard)
		r.Get("/top-performers", h.TopPerformers)
		r.Get("/stats", h.Stats)
		r.Get("/check-participation/{userId}", h.CheckParticipation)
		r.Get("/user/{userId}", h.UserResult)
		if ws != nil {
			r.Get("/leaderboard/ws", ws.ServeWS)
		}
	})
	return r
}

func (h *ContestHandler) Daily(w http.ResponseWriter, r *http.Request) {
	h.active(w, r, domain.ContestDaily, "No active daily contest found")
}

func (h *ContestHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	h.active(w, r, domain.ContestWeekly, "No active weekly contest found")
}

func (h *ContestHandler) active(w http.ResponseWriter, r *http.Request, contestType domain.ContestType, notFound string) {
	contest, err := h.service.ActiveContest(r.Context(), contestType)
	if errors.Is(err, domain.ErrContestNotFound) {
		writeError(w, http.StatusNotFound, notFound)
		return
	}
	if err != nil {
		config.WithContext(r.Context()).WithError(err).WithField("contest_type", contestType).Error("failed to load active contest")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, contest)
}

func (h *ContestHandler) Get(w http.ResponseWriter, r *http.Request) {
	contest, err := h.service.ContestByID(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrContestNotFound) {
		writeError(w, http.StatusNotFound, "Contest not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, contest)
}

func (h *ContestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	log := config.WithContext(r.Context())

	var result domain.ContestResult
	if err := decodeBody(r, &result); err != nil {
		log.WithError(err).Warn("invalid contest submission body")
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result.ContestID = chi.URLParam(r, "id")

	saved, err := h.service.SubmitContestResult(r.Context(), result)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusNotFound {
			writeError(w, status, "Contest not found")
			return
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *ContestHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Leaderboard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *ContestHandler) TopPerformers(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.TopPerformers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *ContestHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type participationResponse struct {
	HasParticipated bool                  `json:"hasParticipated"`
	Result          *domain.ContestResult `json:"result,omitempty"`
}

func (h *ContestHandler) CheckParticipation(w http.ResponseWriter, r *http.Request) {
	contestID := chi.URLParam(r, "id")
	userID := chi.URLParam(r, "userId")

	result, err := h.service.UserContestResult(r.Context(), userID, contestID)
	if errors.Is(err, domain.ErrResultNotFound) {
		writeJSON(w, http.StatusOK, participationResponse{HasParticipated: false})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, participationResponse{HasParticipated: true, Result: &result})
}

func (h *ContestHandler) UserResult(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.UserContestResult(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrResultNotFound) {
		writeError(w, http.StatusNotFound, "User has not participated in this contest")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ContestHandler) UserHistory(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.UserHistory(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *ContestHandler) Recent(w http.ResponseWriter, r *http.Request) {
	contests, err := h.service.RecentContests(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, contests)
}

func (h *ContestHandler) ByType(w http.ResponseWriter, r *http.Request) {
	contestType, err := domain.ParseContestType(chi.URLParam(r, "type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	contests, err := h.service.ContestsByType(r.Context(), contestType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, contests)
}

func (h *ContestHandler) CreateDaily(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.ContestDaily)
}

func (h *ContestHandler) CreateWeekly(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, domain.ContestWeekly)
}

// create triggers generation for the current period. A contest that already
// exists is returned unchanged.
func (h *ContestHandler) create(w http.ResponseWriter, r *http.Request, contestType domain.ContestType) {
	contest, err := h.service.ActiveContest(r.Context(), contestType)
	if err != nil {
		config.WithContext(r.Context()).WithError(err).WithField("contest_type", contestType).Error("manual contest creation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, contest)
}
