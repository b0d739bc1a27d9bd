package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bugskoyan/spotify/internal/app/albums"
	"github.com/bugskoyan/spotify/internal/app/artists"
	"github.com/bugskoyan/spotify/internal/app/songs"
	"github.com/bugskoyan/spotify/internal/auth"
	"github.com/bugskoyan/spotify/internal/forms"
	"github.com/bugskoyan/spotify/internal/http/middleware"
	"github.com/bugskoyan/spotify/internal/logging"
	"github.com/bugskoyan/spotify/internal/store"
)

// AlbumService exposes album-specific workflows.
type AlbumService interface {
	List(ctx context.Context) ([]store.Album, error)
	Get(ctx context.Context, id int64) (store.Album, error)
	Detail(ctx context.Context, id int64) (albums.Detail, error)
	Create(ctx context.Context, form forms.AlbumForm) (store.Album, error)
	Delete(ctx context.Context, id int64) error
}

// SongService coordinates track-level operations.
type SongService interface {
	Create(ctx context.Context, albumID int64, form forms.SongForm) (store.Song, error)
	Delete(ctx context.Context, albumID, songID int64) error
	ToggleFavorite(ctx context.Context, songID int64) songs.FavoriteResult
}

// ArtistService describes artist catalogue workflows.
type ArtistService interface {
	List(ctx context.Context, filter artists.Filter) ([]store.Artist, error)
	Create(ctx context.Context, form forms.ArtistForm) (store.Artist, error)
}

// FileTypeService manages the audio extension whitelist.
type FileTypeService interface {
	List(ctx context.Context) ([]store.AudioFileType, error)
	Add(ctx context.Context, form forms.FileTypeForm) (store.AudioFileType, error)
	Remove(ctx context.Context, id int64) error
}

// Media resolves stored files to URLs and serves them.
type Media interface {
	URL(rel string) string
	Prefix() string
	Handler() http.Handler
}

// Options carries the non-service dependencies of a Server.
type Options struct {
	Media          Media
	Tokens         middleware.TokenParser
	MaxUploadBytes int64
	AllowedOrigin  string
}

// DefaultMaxUploadBytes bounds multipart bodies when Options leaves it unset.
const DefaultMaxUploadBytes = 32 << 20

// Server wires HTTP handlers to the underlying services.
type Server struct {
	albums    AlbumService
	songs     SongService
	artists   ArtistService
	fileTypes FileTypeService
	opts      Options
	pages     *pages
}

// New configures a Server and parses its page templates.
func New(
	albums AlbumService,
	songs SongService,
	artists ArtistService,
	fileTypes FileTypeService,
	opts Options,
) (*Server, error) {
	if opts.Media == nil {
		return nil, errors.New("httpapi: media storage is required")
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}

	p, err := parsePages(opts.Media.URL)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		albums:    albums,
		songs:     songs,
		artists:   artists,
		fileTypes: fileTypes,
		opts:      opts,
		pages:     p,
	}, nil
}

// Routes exposes the site pages, the favorite endpoint and the admin API.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(s.notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	router.PathPrefix(s.opts.Media.Prefix()).Handler(s.opts.Media.Handler()).Methods(http.MethodGet, http.MethodHead)

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/{album_id:[0-9]+}/", s.handleDetail).Methods(http.MethodGet)
	router.HandleFunc("/{song_id:[0-9]+}/favorite/", s.handleFavorite).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/{album_id:[0-9]+}/delete_song/{song_id:[0-9]+}/", s.handleDeleteSong).Methods(http.MethodPost)
	router.HandleFunc("/{album_id:[0-9]+}/create_song/", s.handleCreateSongForm).Methods(http.MethodGet)
	router.HandleFunc("/{album_id:[0-9]+}/create_song/", s.handleCreateSong).Methods(http.MethodPost)

	admin := router.PathPrefix("/admin/api").Subrouter()
	admin.Use(requireAdmin)
	admin.HandleFunc("/artists", s.handleAdminArtists).Methods(http.MethodGet)
	admin.HandleFunc("/artists", s.handleAdminCreateArtist).Methods(http.MethodPost)
	admin.HandleFunc("/albums", s.handleAdminAlbums).Methods(http.MethodGet)
	admin.HandleFunc("/albums", s.handleAdminCreateAlbum).Methods(http.MethodPost)
	admin.HandleFunc("/albums/{id:[0-9]+}", s.handleAdminDeleteAlbum).Methods(http.MethodDelete)
	admin.HandleFunc("/filetypes", s.handleAdminFileTypes).Methods(http.MethodGet)
	admin.HandleFunc("/filetypes", s.handleAdminCreateFileType).Methods(http.MethodPost)
	admin.HandleFunc("/filetypes/{id:[0-9]+}", s.handleAdminDeleteFileType).Methods(http.MethodDelete)

	var handler http.Handler = router
	handler = middleware.Session(s.opts.Tokens)(handler)
	handler = middleware.CORS(s.opts.AllowedOrigin)(handler)
	handler = middleware.Recovery()(handler)
	handler = middleware.RequestLogging()(handler)
	return handler
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
	Errors []string            `json:"errors,omitempty"`
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := auth.FromContext(r.Context())
		switch {
		case !viewer.Authenticated():
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing session token"})
		case !viewer.Admin:
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin access required"})
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

// pathID reads a numeric route variable. Routes constrain ids to digits, so a
// failure here means the value overflowed int64.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps service errors onto JSON responses for the admin API.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ferrs *forms.Errors
	switch {
	case errors.Is(err, store.ErrFileTypeExists):
		writeJSON(w, http.StatusConflict, validationResponse(ferrs, err))
	case errors.As(err, &ferrs):
		writeJSON(w, http.StatusBadRequest, validationResponse(ferrs, err))
	case errors.Is(err, store.ErrAlbumNotFound),
		errors.Is(err, store.ErrArtistNotFound),
		errors.Is(err, store.ErrFileTypeNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		logging.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("admin request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func validationResponse(ferrs *forms.Errors, err error) errorResponse {
	resp := errorResponse{Error: "validation failed"}
	if ferrs == nil {
		_ = errors.As(err, &ferrs)
	}
	if ferrs != nil {
		resp.Fields = ferrs.Fields
		resp.Errors = ferrs.NonField
	}
	return resp
}
