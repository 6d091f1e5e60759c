package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

// decode reads the json request body into dst and validates it.
func (s *Server) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errs.Errorf(errs.EINVALID, "Invalid JSON body.")
	}
	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errs.Errorf(errs.EINVALID, "Invalid value for field %q.", verrs[0].Field())
		}
		return err
	}
	return nil
}

// respond writes v as json with the given status.
func respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs.LogError(r, err)
	}
}

// pathID parses the route parameter "id".
func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, errs.Errorf(errs.EINVALID, "Invalid ID format.")
	}
	return id, nil
}

// public returns a copy of u fit to be shown to other users.
func public(u domain.User) domain.User {
	u.Email = ""
	return u
}

func publicUsers(users []domain.User) []domain.User {
	out := make([]domain.User, len(users))
	for i, u := range users {
		out[i] = public(u)
	}
	return out
}

// publicMessages hides the email addresses of the preloaded message owners.
func publicMessages(messages []domain.Message) []domain.Message {
	for i := range messages {
		if messages[i].User != nil {
			u := public(*messages[i].User)
			messages[i].User = &u
		}
	}
	return messages
}
