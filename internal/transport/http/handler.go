package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
	"github.com/gorilla/mux"
)

const (
	maxNameLength = 50
	maxIDLength   = 100
)

// Handler exposes the session operations as thin JSON endpoints.
// Clients poll GET /api/quiz/session; every response carries a freshly
// projected view.
type Handler struct {
	service *app.SessionService
}

func NewHandler(service *app.SessionService) *Handler {
	return &Handler{service: service}
}

// Register mounts the quiz routes on the router.
func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/api/quiz/session", h.handleSession).Methods(http.MethodGet)
	router.HandleFunc("/api/quiz/join", h.handleJoin).Methods(http.MethodPost)
	router.HandleFunc("/api/quiz/start", h.handleStart).Methods(http.MethodPost)
	router.HandleFunc("/api/quiz/answer", h.handleAnswer).Methods(http.MethodPost)
	router.HandleFunc("/api/quiz/reset", h.handleReset).Methods(http.MethodPost)
}

type joinRequest struct {
	Name     string  `json:"name"`
	PlayerID *string `json:"playerId"`
}

type startRequest struct {
	PlayerID string `json:"playerId"`
}

type answerRequest struct {
	PlayerID   string `json:"playerId"`
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type viewResponse struct {
	View domain.SessionView `json:"view"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.GetView(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{View: view})
}

func (h *Handler) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, domain.NewError(domain.ErrInvalidInput, "name is required"))
		return
	}
	if len(name) > maxNameLength {
		writeError(w, domain.NewError(domain.ErrInvalidInput, "name is too long"))
		return
	}

	playerID := ""
	if req.PlayerID != nil {
		playerID = strings.TrimSpace(*req.PlayerID)
		if len(playerID) > maxIDLength {
			writeError(w, domain.NewError(domain.ErrInvalidInput, "playerId is too long"))
			return
		}
	}

	result, err := h.service.Join(r.Context(), name, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := requireID("playerId", req.PlayerID); err != nil {
		writeError(w, err)
		return
	}

	view, err := h.service.Start(r.Context(), req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{View: view})
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	for field, value := range map[string]string{
		"playerId":   req.PlayerID,
		"questionId": req.QuestionID,
		"optionId":   req.OptionID,
	} {
		if err := requireID(field, value); err != nil {
			writeError(w, err)
			return
		}
	}

	view, err := h.service.SubmitAnswer(r.Context(), req.PlayerID, req.QuestionID, req.OptionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{View: view})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Reset(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{View: view})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return domain.NewError(domain.ErrInvalidInput, "invalid request body")
	}
	return nil
}

func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewError(domain.ErrInvalidInput, field+" is required")
	}
	if len(value) > maxIDLength {
		return domain.NewError(domain.ErrInvalidInput, field+" is too long")
	}
	return nil
}

// writeError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors surface as 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrInternal):
		message = err.Error()
	default:
		log.Printf("unhandled error: %v", err)
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}
