package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/bugskoyan/spotify/internal/app/albums"
	"github.com/bugskoyan/spotify/internal/app/artists"
	"github.com/bugskoyan/spotify/internal/app/filetypes"
	"github.com/bugskoyan/spotify/internal/app/songs"
	"github.com/bugskoyan/spotify/internal/auth"
	"github.com/bugskoyan/spotify/internal/forms"
	"github.com/bugskoyan/spotify/internal/media"
	"github.com/bugskoyan/spotify/internal/store"
	"github.com/bugskoyan/spotify/internal/store/memstore"
)

type stubTokens map[string]auth.Viewer

func (s stubTokens) Parse(raw string) (auth.Viewer, error) {
	v, ok := s[raw]
	if !ok {
		return auth.Viewer{}, auth.ErrInvalidToken
	}
	return v, nil
}

var testTokens = stubTokens{
	"admin-token": {Username: "root", Admin: true},
	"user-token":  {Username: "anna"},
}

type stubSongService struct {
	favorite songs.FavoriteResult
}

func (s *stubSongService) Create(context.Context, int64, forms.SongForm) (store.Song, error) {
	return store.Song{}, errors.New("not implemented")
}

func (s *stubSongService) Delete(context.Context, int64, int64) error {
	return errors.New("not implemented")
}

func (s *stubSongService) ToggleFavorite(context.Context, int64) songs.FavoriteResult {
	return s.favorite
}

type testEnv struct {
	handler http.Handler
	db      *memstore.Store
	files   *media.Storage
	album   store.Album
	other   store.Album
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db := memstore.New()
	files, err := media.New(t.TempDir(), "/media/")
	if err != nil {
		t.Fatalf("media.New: %v", err)
	}
	if err := db.EnsureAudioFileTypes(ctx, []string{"mp3"}); err != nil {
		t.Fatalf("ensure file types: %v", err)
	}
	artist, _ := db.CreateArtist(ctx, "Кино")
	album, _ := db.CreateAlbum(ctx, store.Album{ArtistID: artist.ID, Title: "Группа крови"})
	other, _ := db.CreateAlbum(ctx, store.Album{ArtistID: artist.ID, Title: "Ночь"})

	server, err := New(
		albums.New(db, files),
		songs.New(db, files),
		artists.New(db),
		filetypes.New(db),
		Options{Media: files, Tokens: testTokens, MaxUploadBytes: 1 << 20},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testEnv{handler: server.Routes(), db: db, files: files, album: album, other: other}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) addSong(t *testing.T, albumID int64, title string) store.Song {
	t.Helper()
	song, err := e.db.CreateSong(context.Background(), store.Song{AlbumID: albumID, Title: title, AudioFile: "songs/" + title + ".mp3"})
	if err != nil {
		t.Fatalf("CreateSong: %v", err)
	}
	return song
}

func songUpload(t *testing.T, target, title, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("title", title); err != nil {
		t.Fatalf("write field: %v", err)
	}
	if filename != "" {
		part, err := mw.CreateFormFile("audio_file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func albumPath(id int64, suffix string) string {
	return "/" + strconv.FormatInt(id, 10) + "/" + suffix
}

func TestIndexListsAlbums(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Группа крови") || !strings.Contains(body, "Ночь") {
		t.Fatalf("expected both albums in page, got %q", body)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
}

func TestDetail(t *testing.T) {
	env := newTestEnv(t)
	env.addSong(t, env.album.ID, "Спокойная ночь")

	tests := []struct {
		name   string
		path   string
		status int
		want   string
	}{
		{name: "existing album", path: albumPath(env.album.ID, ""), status: http.StatusOK, want: "Спокойная ночь"},
		{name: "missing album", path: "/9999/", status: http.StatusNotFound, want: "404"},
		{name: "unknown route", path: "/nope/", status: http.StatusNotFound, want: "404"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tc.want) {
				t.Fatalf("expected %q in body", tc.want)
			}
		})
	}
}

func TestDetailShowsViewer(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, albumPath(env.album.ID, ""), nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "user-token"})
	rr := env.do(req)
	if !strings.Contains(rr.Body.String(), "anna") {
		t.Fatalf("expected viewer name on page")
	}
}

func TestFavoriteToggle(t *testing.T) {
	env := newTestEnv(t)
	song := env.addSong(t, env.album.ID, "Кукушка")

	for i, want := range []bool{true, false} {
		method := http.MethodPost
		if i == 1 {
			method = http.MethodGet
		}
		rr := env.do(httptest.NewRequest(method, albumPath(song.ID, "favorite/"), nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rr.Code)
		}
		var resp favoriteResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !resp.Success || resp.IsFavorite == nil || *resp.IsFavorite != want {
			t.Fatalf("toggle %d: unexpected response %#v", i, resp)
		}
	}

	stored, _ := env.db.SongByID(context.Background(), song.ID)
	if stored.IsFavorite {
		t.Fatalf("expected flag restored after two toggles")
	}
}

func TestFavoriteFailures(t *testing.T) {
	tests := []struct {
		name   string
		result songs.FavoriteResult
		status int
	}{
		{name: "not found", result: songs.FavoriteResult{Outcome: songs.NotFound}, status: http.StatusNotFound},
		{name: "store error", result: songs.FavoriteResult{Outcome: songs.Failed, Err: errors.New("boom")}, status: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			files, err := media.New(t.TempDir(), "/media/")
			if err != nil {
				t.Fatalf("media.New: %v", err)
			}
			db := memstore.New()
			server, err := New(albums.New(db, files), &stubSongService{favorite: tc.result}, artists.New(db), filetypes.New(db), Options{Media: files})
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			rr := httptest.NewRecorder()
			server.Routes().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/42/favorite/", nil))
			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
			if strings.TrimSpace(rr.Body.String()) != `{"success":false}` {
				t.Fatalf("unexpected body %q", rr.Body.String())
			}
		})
	}
}

func TestFavoriteMissingSongEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodPost, "/9999/favorite/", nil))
	if rr.Code != http.StatusNotFound || strings.TrimSpace(rr.Body.String()) != `{"success":false}` {
		t.Fatalf("unexpected response %d %q", rr.Code, rr.Body.String())
	}
}

func TestDeleteSong(t *testing.T) {
	env := newTestEnv(t)
	keep := env.addSong(t, env.album.ID, "Остаётся")
	drop := env.addSong(t, env.album.ID, "Уходит")
	foreign := env.addSong(t, env.other.ID, "Чужая")

	rr := env.do(httptest.NewRequest(http.MethodGet, albumPath(env.album.ID, "delete_song/"+strconv.FormatInt(drop.ID, 10)+"/"), nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected GET to be rejected with 405, got %d", rr.Code)
	}

	rr = env.do(httptest.NewRequest(http.MethodPost, albumPath(env.album.ID, "delete_song/"+strconv.FormatInt(foreign.ID, 10)+"/"), nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for song of another album, got %d", rr.Code)
	}
	if env.db.CountSongs() != 3 {
		t.Fatalf("expected no rows deleted, have %d", env.db.CountSongs())
	}

	rr = env.do(httptest.NewRequest(http.MethodPost, albumPath(env.album.ID, "delete_song/"+strconv.FormatInt(drop.ID, 10)+"/"), nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, drop.Title) || !strings.Contains(body, keep.Title) {
		t.Fatalf("expected re-rendered detail without deleted song")
	}
}

func TestCreateSongForm(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, albumPath(env.album.ID, "create_song/"), nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `name="audio_file"`) {
		t.Fatalf("expected creation form, got %d", rr.Code)
	}

	rr = env.do(httptest.NewRequest(http.MethodGet, "/9999/create_song/", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing album, got %d", rr.Code)
	}
}

func TestCreateSong(t *testing.T) {
	env := newTestEnv(t)
	env.addSong(t, env.album.ID, "Кукушка")
	target := albumPath(env.album.ID, "create_song/")

	tests := []struct {
		name     string
		title    string
		filename string
		want     string
		created  bool
	}{
		{name: "duplicate title", title: "Кукушка", filename: "k.mp3", want: forms.MsgDuplicateSong},
		{name: "bad extension", title: "Новая", filename: "n.exe", want: forms.MsgInvalidAudio},
		{name: "missing file", title: "Новая", want: forms.MsgRequired},
		{name: "valid", title: "Новая", filename: "n.MP3", want: "Новая", created: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			before := env.db.CountSongs()

			rr := env.do(songUpload(t, target, tc.title, tc.filename, "ID3"))
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tc.want) {
				t.Fatalf("expected %q in body", tc.want)
			}

			delta := env.db.CountSongs() - before
			if tc.created && delta != 1 {
				t.Fatalf("expected exactly one new song, got %d", delta)
			}
			if !tc.created && delta != 0 {
				t.Fatalf("expected no new song, got %d", delta)
			}
		})
	}
}

func TestCreateSongTooLarge(t *testing.T) {
	env := newTestEnv(t)

	req := songUpload(t, albumPath(env.album.ID, "create_song/"), "Big", "big.mp3", strings.Repeat("x", 2<<20))
	rr := env.do(req)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rr.Code)
	}
	if env.db.CountSongs() != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestAdminRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "regular user", token: "user-token", status: http.StatusForbidden},
		{name: "admin", token: "admin-token", status: http.StatusOK},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/api/albums", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			if rr := env.do(req); rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}
		})
	}
}

func adminJSON(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer admin-token")
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAdminFileTypes(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(adminJSON(http.MethodPost, "/admin/api/filetypes", `{"name":"FLAC"}`))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created store.AudioFileType
	_ = json.NewDecoder(rr.Body).Decode(&created)
	if created.Name != "flac" {
		t.Fatalf("unexpected file type %#v", created)
	}

	rr = env.do(adminJSON(http.MethodPost, "/admin/api/filetypes", `{"name":"flac"}`))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}

	rr = env.do(adminJSON(http.MethodPost, "/admin/api/filetypes", `{"name":"tar.gz"}`))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp errorResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if len(resp.Fields["name"]) == 0 {
		t.Fatalf("expected field error for name, got %#v", resp)
	}

	rr = env.do(adminJSON(http.MethodDelete, "/admin/api/filetypes/"+strconv.FormatInt(created.ID, 10), ""))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	rr = env.do(adminJSON(http.MethodDelete, "/admin/api/filetypes/"+strconv.FormatInt(created.ID, 10), ""))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAdminArtistsAndAlbums(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(adminJSON(http.MethodPost, "/admin/api/artists", `{"name":"Аквариум"}`))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	var artist store.Artist
	_ = json.NewDecoder(rr.Body).Decode(&artist)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("artist_id", strconv.FormatInt(artist.ID, 10))
	_ = mw.WriteField("title", "Равноденствие")
	part, _ := mw.CreateFormFile("logo", "cover.png")
	_, _ = part.Write([]byte("png"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/admin/api/albums", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer admin-token")
	rr = env.do(req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created albumResponse
	_ = json.NewDecoder(rr.Body).Decode(&created)
	if !strings.HasPrefix(created.LogoURL, "/media/logos/") || !env.files.Exists(created.Logo) {
		t.Fatalf("expected stored logo, got %#v", created)
	}

	env.addSong(t, created.ID, "Поезд в огне")
	rr = env.do(adminJSON(http.MethodDelete, "/admin/api/albums/"+strconv.FormatInt(created.ID, 10), ""))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if env.files.Exists(created.Logo) {
		t.Fatalf("expected logo removed with album")
	}
	if left, _ := env.db.SongsByAlbum(context.Background(), created.ID); len(left) != 0 {
		t.Fatalf("expected cascade delete of songs")
	}

	rr = env.do(adminJSON(http.MethodGet, "/admin/api/artists?name="+url.QueryEscape("аква"), ""))
	var listed struct {
		Artists []store.Artist `json:"artists"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&listed)
	if len(listed.Artists) != 1 {
		t.Fatalf("expected filtered artist list, got %#v", listed)
	}
}

func TestHealthAndMedia(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Fatalf("unexpected health response %d %q", rr.Code, rr.Body.String())
	}

	rel, err := env.files.Save(context.Background(), media.SongsDir, "mp3", strings.NewReader("audio"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	rr = env.do(httptest.NewRequest(http.MethodGet, env.files.URL(rel), nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "audio" {
		t.Fatalf("unexpected media response %d %q", rr.Code, rr.Body.String())
	}
}
