package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/DeepaPrasanna/social-media/internal/server/models"
	usersrepo "github.com/DeepaPrasanna/social-media/internal/server/repositories/users"
)

// maxProfilePictureBytes caps the multipart upload size.
const maxProfilePictureBytes = 5 << 20

type userResponse struct {
	ID                string `json:"id"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Email             string `json:"email"`
	Contact           int64  `json:"contact,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

func userResponseFrom(u *models.User) userResponse {
	return userResponse{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		Contact:           u.Contact,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

type updateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Contact   *int64  `json:"contact"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponseFrom(user))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FirstName == nil && req.LastName == nil && req.Contact == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	upd := &usersrepo.Update{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Contact:   req.Contact,
	}
	if err := s.users.Update(r.Context(), chi.URLParam(r, "id"), upd); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "password is required")
		return
	}

	if err := s.users.ResetPassword(r.Context(), chi.URLParam(r, "id"), req.Password); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// uploadProfilePicture stores the multipart "picture" part. The owner is
// the authenticated subject, never a path parameter.
func (s *Server) uploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	if err := r.ParseMultipartForm(maxProfilePictureBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		writeError(w, http.StatusBadRequest, "picture file is required")
		return
	}
	defer file.Close()

	url, err := s.users.UploadProfilePicture(r.Context(), claims.Subject, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"profilePictureUrl": url})
}
