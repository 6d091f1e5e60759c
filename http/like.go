package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"warbler/errs"
)

func (s *Server) registerLikeRoutes(r *mux.Router) {
	r.HandleFunc("/like/{id}", s.requireAuth(s.handleCreateLike)).Methods("POST")
	r.HandleFunc("/like/stop-liking/{id}", s.requireAuth(s.handleDeleteLike)).Methods("POST")
}

// handleCreateLike makes the current user like the message with the ID in the path.
func (s *Server) handleCreateLike(w http.ResponseWriter, r *http.Request) {
	messageID, err := pathID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	like, err := s.ls.Like(r.Context(), currentUser(r).ID, messageID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.metrics.event(eventLike)
	respond(w, r, http.StatusCreated, like)
}

// handleDeleteLike removes the current user's like from the message with the ID in the path.
func (s *Server) handleDeleteLike(w http.ResponseWriter, r *http.Request) {
	messageID, err := pathID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ls.Unlike(r.Context(), currentUser(r).ID, messageID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.metrics.event(eventUnlike)
	w.WriteHeader(http.StatusNoContent)
}
