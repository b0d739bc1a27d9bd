package httpapi

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/bugskoyan/spotify/internal/app/songs"
	"github.com/bugskoyan/spotify/internal/auth"
	"github.com/bugskoyan/spotify/internal/forms"
	"github.com/bugskoyan/spotify/internal/logging"
	"github.com/bugskoyan/spotify/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageIndex       = "index.html"
	pageDetail      = "detail.html"
	pageCreateSong  = "create_song.html"
	pageNotFound    = "404.html"
	pageServerError = "500.html"
)

type pages struct {
	byName map[string]*template.Template
}

func parsePages(mediaURL func(string) string) (*pages, error) {
	funcs := template.FuncMap{"media": mediaURL}

	p := &pages{byName: make(map[string]*template.Template)}
	for _, name := range []string{pageIndex, pageDetail, pageCreateSong, pageNotFound, pageServerError} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		p.byName[name] = tmpl
	}
	return p, nil
}

type pageData struct {
	Viewer auth.Viewer
}

type indexPage struct {
	pageData
	Albums []store.Album
}

type detailPage struct {
	pageData
	Album store.Album
	Songs []store.Song
}

type createSongPage struct {
	pageData
	Album  store.Album
	Title  string
	Errors *forms.Errors
}

// render executes a page into a buffer first so template failures still
// produce a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.byName[name].ExecuteTemplate(&buf, "base", data); err != nil {
		logging.WithContext(r.Context()).Error().Err(err).Str("template", name).Msg("render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) viewer(r *http.Request) pageData {
	return pageData{Viewer: auth.FromContext(r.Context())}
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, pageNotFound, s.viewer(r))
}

// pageError renders the 404 page for missing records and the 500 page for
// everything else.
func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrAlbumNotFound) || errors.Is(err, store.ErrSongNotFound) {
		s.notFound(w, r)
		return
	}
	logging.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("page request failed")
	s.render(w, r, http.StatusInternalServerError, pageServerError, s.viewer(r))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	list, err := s.albums.List(r.Context())
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, pageIndex, indexPage{pageData: s.viewer(r), Albums: list})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "album_id")
	if err != nil {
		s.notFound(w, r)
		return
	}
	s.renderDetail(w, r, id)
}

func (s *Server) renderDetail(w http.ResponseWriter, r *http.Request, albumID int64) {
	detail, err := s.albums.Detail(r.Context(), albumID)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, pageDetail, detailPage{
		pageData: s.viewer(r),
		Album:    detail.Album,
		Songs:    detail.Songs,
	})
}

type favoriteResponse struct {
	Success    bool  `json:"success"`
	IsFavorite *bool `json:"is_favorite,omitempty"`
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "song_id")
	if err != nil {
		writeJSON(w, http.StatusNotFound, favoriteResponse{Success: false})
		return
	}

	res := s.songs.ToggleFavorite(r.Context(), id)
	switch {
	case res.Success():
		writeJSON(w, http.StatusOK, favoriteResponse{Success: true, IsFavorite: &res.IsFavorite})
	case res.Outcome == songs.NotFound:
		writeJSON(w, http.StatusNotFound, favoriteResponse{Success: false})
	default:
		writeJSON(w, http.StatusInternalServerError, favoriteResponse{Success: false})
	}
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	albumID, err := pathID(r, "album_id")
	if err != nil {
		s.notFound(w, r)
		return
	}
	songID, err := pathID(r, "song_id")
	if err != nil {
		s.notFound(w, r)
		return
	}

	if err := s.songs.Delete(r.Context(), albumID, songID); err != nil {
		s.pageError(w, r, err)
		return
	}
	s.renderDetail(w, r, albumID)
}

func (s *Server) handleCreateSongForm(w http.ResponseWriter, r *http.Request) {
	albumID, err := pathID(r, "album_id")
	if err != nil {
		s.notFound(w, r)
		return
	}

	album, err := s.albums.Get(r.Context(), albumID)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, pageCreateSong, createSongPage{
		pageData: s.viewer(r),
		Album:    album,
		Errors:   forms.NewErrors(),
	})
}

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	albumID, err := pathID(r, "album_id")
	if err != nil {
		s.notFound(w, r)
		return
	}

	album, err := s.albums.Get(r.Context(), albumID)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	up, status, err := s.parseUpload(w, r, "audio_file")
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}
	defer up.Close()

	form := forms.SongForm{
		Title:     r.PostFormValue("title"),
		AudioFile: up.File(),
	}

	if _, err := s.songs.Create(r.Context(), albumID, form); err != nil {
		var ferrs *forms.Errors
		if !errors.As(err, &ferrs) {
			s.pageError(w, r, err)
			return
		}
		s.render(w, r, http.StatusOK, pageCreateSong, createSongPage{
			pageData: s.viewer(r),
			Album:    album,
			Title:    form.Title,
			Errors:   ferrs,
		})
		return
	}

	s.renderDetail(w, r, albumID)
}
