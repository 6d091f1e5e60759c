package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"warbler/crud"
	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerUserRoutes(r *mux.Router) {
	r.HandleFunc("/", s.handleHome).Methods("GET")
	r.HandleFunc("/users", s.requireViewer(s.handleSearchUsers)).Methods("GET")
	r.HandleFunc("/users/profile", s.requireAuth(s.handleProfile)).Methods("GET")
	r.HandleFunc("/users/profile", s.requireAuth(s.handleUpdateProfile)).Methods("POST")
	r.HandleFunc("/users/delete", s.requireAuth(s.handleDeleteUser)).Methods("POST")
	r.HandleFunc("/users/{id:[0-9]+}", s.requireViewer(s.handleShowUser)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/following", s.requireViewer(s.handleFollowing)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/followers", s.requireViewer(s.handleFollowers)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/likes", s.requireViewer(s.handleLikes)).Methods("GET")
}

type usersResponse struct {
	Users []domain.User `json:"users"`
}

type messagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

type showUserResponse struct {
	User         domain.User      `json:"user"`
	Messages     []domain.Message `json:"messages"`
	IsFollowing  bool             `json:"is_following"`
	IsFollowedBy bool             `json:"is_followed_by"`
}

type updateProfileRequest struct {
	domain.UserUpdate
	Password string `json:"password" validate:"required"`
}

// handleHome returns the feed of the current user. Anonymous visitors get an empty feed.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		respond(w, r, http.StatusOK, &messagesResponse{Messages: []domain.Message{}})
		return
	}
	feed, err := s.ms.Feed(r.Context(), user.ID, crud.DefaultFeedLimit)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, &messagesResponse{Messages: publicMessages(feed)})
}

// handleSearchUsers lists the users whose username contains the "q" query parameter.
func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.us.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, &usersResponse{Users: publicUsers(users)})
}

// handleShowUser returns a user with its counts and messages, and how the
// current user relates to it.
func (s *Server) handleShowUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user, err := s.us.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.us.SetCounts(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	messages, err := s.ms.ByOwner(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	resp := showUserResponse{User: public(*user), Messages: publicMessages(messages)}
	if viewer := currentUser(r); viewer != nil && viewer.ID != user.ID {
		if resp.IsFollowing, err = s.fs.IsFollowing(r.Context(), viewer.ID, user.ID); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		if resp.IsFollowedBy, err = s.fs.IsFollowedBy(r.Context(), viewer.ID, user.ID); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}
	respond(w, r, http.StatusOK, &resp)
}

// handleFollowing lists the users the given user follows.
func (s *Server) handleFollowing(w http.ResponseWriter, r *http.Request) {
	s.listUsers(w, r, s.fs.Following)
}

// handleFollowers lists the users following the given user.
func (s *Server) handleFollowers(w http.ResponseWriter, r *http.Request) {
	s.listUsers(w, r, s.fs.Followers)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, userID int) ([]domain.User, error)) {
	id, err := pathID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if _, err := s.us.ByID(r.Context(), id); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	users, err := list(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, &usersResponse{Users: publicUsers(users)})
}

// handleLikes lists the messages the given user likes.
func (s *Server) handleLikes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if _, err := s.us.ByID(r.Context(), id); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	messages, err := s.ls.Liked(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, &messagesResponse{Messages: publicMessages(messages)})
}

// handleProfile returns the current user with its counts.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.us.ByID(r.Context(), currentUser(r).ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.us.SetCounts(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, &userResponse{User: user})
}

// handleUpdateProfile edits the current user's profile. The current password
// has to be submitted along with the changes.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := s.decode(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user, err := s.us.Update(r.Context(), currentUser(r).ID, req.Password, req.UserUpdate)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, &userResponse{User: user})
}

// handleDeleteUser deletes the current user with everything it owns, then logs it out.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.us.Delete(r.Context(), currentUser(r).ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.endSession(w, r); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.metrics.event(eventAccountDeleted)
	w.WriteHeader(http.StatusNoContent)
}
