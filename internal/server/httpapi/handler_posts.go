package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DeepaPrasanna/social-media/internal/server/models"
	"github.com/DeepaPrasanna/social-media/internal/server/services"
)

type createPostRequest struct {
	Description string `json:"description"`
}

type updatePostRequest struct {
	Description string `json:"description"`
}

type sharePostRequest struct {
	UserID string `json:"userId"`
}

type postResponse struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"authorId"`
	Description    string    `json:"description"`
	CreatedOn      time.Time `json:"createdOn"`
	NumberOfShares int64     `json:"numberOfShares"`
}

type sharedPostResponse struct {
	PostID          string    `json:"postId"`
	Description     string    `json:"description"`
	CreatedOn       time.Time `json:"createdOn"`
	AuthorID        string    `json:"authorId"`
	AuthorFirstName string    `json:"authorFirstName"`
	AuthorLastName  string    `json:"authorLastName"`
}

type feedResponse struct {
	Posts       []postResponse       `json:"posts"`
	SharedPosts []sharedPostResponse `json:"sharedPosts"`
}

type searchResultResponse struct {
	ID              string    `json:"id"`
	Description     string    `json:"description"`
	CreatedOn       time.Time `json:"createdOn"`
	AuthorID        string    `json:"authorId"`
	AuthorFirstName string    `json:"authorFirstName"`
	AuthorLastName  string    `json:"authorLastName"`
}

func postResponseFrom(p *models.Post) postResponse {
	return postResponse{
		ID:             p.ID,
		AuthorID:       p.AuthorID,
		Description:    p.Description,
		CreatedOn:      p.CreatedOn,
		NumberOfShares: p.NumberOfShares,
	}
}

func feedResponseFrom(feed *services.PostFeed) feedResponse {
	resp := feedResponse{
		Posts:       make([]postResponse, 0, len(feed.Posts)),
		SharedPosts: make([]sharedPostResponse, 0, len(feed.SharedPosts)),
	}
	for _, p := range feed.Posts {
		resp.Posts = append(resp.Posts, postResponseFrom(p))
	}
	for _, sp := range feed.SharedPosts {
		resp.SharedPosts = append(resp.SharedPosts, sharedPostResponse{
			PostID:          sp.PostID,
			Description:     sp.Description,
			CreatedOn:       sp.CreatedOn,
			AuthorID:        sp.AuthorID,
			AuthorFirstName: sp.AuthorFirstName,
			AuthorLastName:  sp.AuthorLastName,
		})
	}
	return resp
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	post, err := s.posts.Create(r.Context(), claimsFrom(r.Context()).Subject, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, postResponseFrom(post))
}

func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	feed, err := s.posts.Feed(r.Context(), claimsFrom(r.Context()).Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feedResponseFrom(feed))
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.posts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, postResponseFrom(post))
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	var req updatePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	if err := s.posts.Update(r.Context(), chi.URLParam(r, "id"), req.Description); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.posts.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) searchPosts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	results, err := s.posts.Search(r.Context(), query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := make([]searchResultResponse, 0, len(results))
	for _, res := range results {
		resp = append(resp, searchResultResponse{
			ID:              res.ID,
			Description:     res.Description,
			CreatedOn:       res.CreatedOn,
			AuthorID:        res.AuthorID,
			AuthorFirstName: res.AuthorFirstName,
			AuthorLastName:  res.AuthorLastName,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) sharePost(w http.ResponseWriter, r *http.Request) {
	var req sharePostRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := s.posts.Share(r.Context(), chi.URLParam(r, "id"), req.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
