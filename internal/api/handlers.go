package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/craveless/lesscoach/internal/insight"
	"github.com/craveless/lesscoach/internal/models"
)

// cravingsHandler serves POST (log a craving) and GET (list the log).
func (s *Server) cravingsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var c models.Craving
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error("invalid JSON body"))
			return
		}
		if c.Timestamp.IsZero() {
			c.Timestamp = s.now()
		}
		if err := c.Validate(); err != nil {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
			return
		}
		if err := s.st.AddCraving(c); err != nil {
			slog.Error("Server.cravingsHandler: failed to add craving", "error", err, "userID", c.UserID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to store craving"))
			return
		}
		writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("craving logged", nil))
	case http.MethodGet:
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyUserID.Error()))
			return
		}
		cravings, err := s.st.ListCravings(userID)
		if err != nil {
			slog.Error("Server.cravingsHandler: failed to list cravings", "error", err, "userID", userID)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to load cravings"))
			return
		}
		if cravings == nil {
			cravings = []models.Craving{}
		}
		writeJSONResponse(w, http.StatusOK, models.Success(cravings))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// statsHandler returns the derived 7-day behavioral stats.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyUserID.Error()))
		return
	}
	cravings, err := s.st.ListCravings(userID)
	if err != nil {
		slog.Error("Server.statsHandler: failed to list cravings", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to load cravings"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(insight.BuildRecentStats(cravings, s.now())))
}

// profileHandler returns the stored insight profile (or a fresh default).
func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyUserID.Error()))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.loadOrCreateProfile(userID)))
}

// profileResetHandler deletes the insight profile and conversation
// history; the explicit data-reset path.
func (s *Server) profileResetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(models.ErrEmptyUserID.Error()))
		return
	}
	if err := s.st.DeleteProfile(userID); err != nil {
		slog.Error("Server.profileResetHandler: failed to delete profile", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to reset profile"))
		return
	}
	if err := s.st.ClearTurns(userID); err != nil {
		slog.Error("Server.profileResetHandler: failed to clear turns", "error", err, "userID", userID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("failed to reset history"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("profile reset", nil))
}
