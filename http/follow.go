package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"warbler/errs"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/users/follow/{id}", s.requireAuth(s.handleCreateFollow)).Methods("POST")
	r.HandleFunc("/users/stop-following/{id}", s.requireAuth(s.handleDeleteFollow)).Methods("POST")
}

// handleCreateFollow makes the current user follow the user with the ID in the path.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	followedID, err := pathID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	follow, err := s.fs.Follow(r.Context(), currentUser(r).ID, followedID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.metrics.event(eventFollow)
	respond(w, r, http.StatusCreated, follow)
}

// handleDeleteFollow makes the current user stop following the user with the ID in the path.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	followedID, err := pathID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.fs.Unfollow(r.Context(), currentUser(r).ID, followedID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.metrics.event(eventUnfollow)
	w.WriteHeader(http.StatusNoContent)
}
