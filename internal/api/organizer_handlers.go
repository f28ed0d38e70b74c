// internal/api/organizer_handlers.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/SDRoan/Filebox-sub002/internal/organizer"
)

// handleGetSuggestions ranks destination folders for a file described
// in the query string.
func (s *Server) handleGetSuggestions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	size, _ := strconv.ParseInt(q.Get("size"), 10, 64)
	file := organizer.FileDescriptor{
		ID:          q.Get("file_id"),
		MimeType:    q.Get("mime_type"),
		Extension:   q.Get("extension"),
		DisplayName: q.Get("display_name"),
		Size:        size,
	}
	ectx := organizer.EventContext{
		ProjectLabel: q.Get("project"),
	}

	topN := organizer.DefaultTopN
	if v := q.Get("top_n"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			topN = n
		}
	}

	suggestions, err := s.organizer.Suggest(r.Context(), ownerID(r),
		file, ectx, q.Get("current_folder_id"), topN)
	if err != nil {
		s.handleOrganizerError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

type moveEventRequest struct {
	File                  organizer.FileDescriptor `json:"file"`
	SourceFolderID        string                   `json:"source_folder_id"`
	DestinationFolderID   string                   `json:"destination_folder_id"`
	DestinationFolderName string                   `json:"destination_folder_name"`
	Context               organizer.EventContext   `json:"context"`
}

// handleMoveEvent accepts a move/upload notification. Recording is
// fire-and-forget: the handler acknowledges before any storage work.
func (s *Server) handleMoveEvent(w http.ResponseWriter, r *http.Request) {
	var req moveEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DestinationFolderID == "" {
		s.writeError(w, http.StatusBadRequest, "destination_folder_id is required")
		return
	}

	s.organizer.Enqueue(organizer.MoveEvent{
		OwnerID:               ownerID(r),
		File:                  req.File,
		SourceFolderID:        req.SourceFolderID,
		DestinationFolderID:   req.DestinationFolderID,
		DestinationFolderName: req.DestinationFolderName,
		Context:               req.Context,
	})

	w.WriteHeader(http.StatusAccepted)
}

type feedbackRequest struct {
	Action string `json:"action"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pattern, err := s.organizer.RecordFeedback(r.Context(), ownerID(r),
		chi.URLParam(r, "patternID"), organizer.FeedbackAction(req.Action))
	if err != nil {
		s.handleOrganizerError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, pattern)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	pattern, err := s.organizer.Dismiss(r.Context(), ownerID(r), chi.URLParam(r, "patternID"))
	if err != nil {
		s.handleOrganizerError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pattern)
}

func (s *Server) handleListPatterns(w http.ResponseWriter, r *http.Request) {
	patterns, err := s.organizer.ListPatterns(r.Context(), ownerID(r))
	if err != nil {
		s.handleOrganizerError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"patterns": patterns,
	})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.organizer.Stats(r.Context(), ownerID(r))
	if err != nil {
		s.handleOrganizerError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

type renameFolderRequest struct {
	Name string `json:"name"`
}

// handleRenameFolder refreshes the denormalized folder name cached on
// patterns after the host platform renames a folder.
func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	var req renameFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	n, err := s.organizer.RenameFolder(r.Context(), ownerID(r),
		chi.URLParam(r, "folderID"), req.Name)
	if err != nil {
		s.handleOrganizerError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (s *Server) handleOrganizerError(w http.ResponseWriter, err error) {
	var (
		validation organizer.ValidationError
		notFound   organizer.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		s.writeError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &notFound):
		s.writeError(w, http.StatusNotFound, "pattern not found")
	default:
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}
