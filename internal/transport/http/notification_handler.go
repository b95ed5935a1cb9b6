package http

import (
	"net/http"

	"exam-prep-service/internal/app"
	"exam-prep-service/internal/config"
	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	service *app.NotificationService
}

func NewNotificationHandler(service *app.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

func (h *NotificationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/user/{userId}", h.ForUser)
	r.Get("/user/{userId}/unread-count", h.UnreadCount)
	r.Put("/{id}/read", h.MarkRead)
	r.Post("/broadcast/exam-announcement", h.BroadcastExamAnnouncement)
	return r
}

func (h *NotificationHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.UnreadCount(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) BroadcastExamAnnouncement(w http.ResponseWriter, r *http.Request) {
	var a app.ExamAnnouncement
	if err := decodeBody(r, &a); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if a.ExamName == "" {
		writeError(w, http.StatusBadRequest, "examName is required")
		return
	}
	sent, err := h.service.BroadcastExamAnnouncement(r.Context(), a)
	if err != nil {
		config.WithContext(r.Context()).WithError(err).Error("exam announcement broadcast failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "Exam announcement sent",
		"recipients": sent,
	})
}
