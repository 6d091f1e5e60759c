package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerMessageRoutes(r *mux.Router) {
	r.HandleFunc("/messages/new", s.requireAuth(s.handleCreateMessage)).Methods("POST")
	r.HandleFunc("/messages/{id:[0-9]+}", s.requireViewer(s.handleShowMessage)).Methods("GET")
	r.HandleFunc("/messages/{id:[0-9]+}/delete", s.requireAuth(s.handleDeleteMessage)).Methods("POST")
}

// Text is checked by the MessageService, so empty and overlong texts get their own error codes.
type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Message *domain.Message `json:"message"`
	Liked   bool            `json:"liked,omitempty"`
}

// handleCreateMessage posts a new message as the current user.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := s.decode(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	message, err := s.ms.Create(r.Context(), currentUser(r).ID, req.Text)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.metrics.event(eventMessagePosted)
	respond(w, r, http.StatusCreated, &messageResponse{Message: message})
}

// handleShowMessage returns a single message along with its owner, and whether
// the current user likes it.
func (s *Server) handleShowMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	message, err := s.ms.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if message.User != nil {
		owner := public(*message.User)
		message.User = &owner
	}
	res := &messageResponse{Message: message}
	if viewer := currentUser(r); viewer != nil {
		if res.Liked, err = s.ls.Likes(r.Context(), viewer.ID, message.ID); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}
	respond(w, r, http.StatusOK, res)
}

// handleDeleteMessage deletes a message of the current user.
func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ms.Delete(r.Context(), id, currentUser(r).ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.metrics.event(eventMessageDeleted)
	w.WriteHeader(http.StatusNoContent)
}
