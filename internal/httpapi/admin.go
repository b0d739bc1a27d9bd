package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/bugskoyan/spotify/internal/app/artists"
	"github.com/bugskoyan/spotify/internal/forms"
	"github.com/bugskoyan/spotify/internal/store"
)

type nameRequest struct {
	Name string `json:"name"`
}

type albumResponse struct {
	store.Album
	LogoURL string `json:"logoUrl,omitempty"`
}

func (s *Server) albumJSON(a store.Album) albumResponse {
	return albumResponse{Album: a, LogoURL: s.opts.Media.URL(a.Logo)}
}

func (s *Server) handleAdminArtists(w http.ResponseWriter, r *http.Request) {
	list, err := s.artists.List(r.Context(), artists.Filter{Name: r.URL.Query().Get("name")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Artists []store.Artist `json:"artists"`
	}{Artists: list})
}

func (s *Server) handleAdminCreateArtist(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	artist, err := s.artists.Create(r.Context(), forms.ArtistForm{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, artist)
}

func (s *Server) handleAdminAlbums(w http.ResponseWriter, r *http.Request) {
	list, err := s.albums.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]albumResponse, 0, len(list))
	for _, a := range list {
		out = append(out, s.albumJSON(a))
	}
	writeJSON(w, http.StatusOK, struct {
		Albums []albumResponse `json:"albums"`
	}{Albums: out})
}

func (s *Server) handleAdminCreateAlbum(w http.ResponseWriter, r *http.Request) {
	up, status, err := s.parseUpload(w, r, "logo")
	if err != nil {
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	defer up.Close()

	album, err := s.albums.Create(r.Context(), forms.AlbumForm{
		Band:  r.PostFormValue("artist_id"),
		Title: r.PostFormValue("title"),
		Logo:  up.File(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.albumJSON(album))
}

func (s *Server) handleAdminDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id parameter"})
		return
	}
	if err := s.albums.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminFileTypes(w http.ResponseWriter, r *http.Request) {
	list, err := s.fileTypes.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		FileTypes []store.AudioFileType `json:"filetypes"`
	}{FileTypes: list})
}

func (s *Server) handleAdminCreateFileType(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	ft, err := s.fileTypes.Add(r.Context(), forms.FileTypeForm{Name: req.Name})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ft)
}

func (s *Server) handleAdminDeleteFileType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id parameter"})
		return
	}
	if err := s.fileTypes.Remove(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
