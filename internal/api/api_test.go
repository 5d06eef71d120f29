package api

import (
	"bytes"
	"encoding/json"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"voicebox/internal/db"
	"voicebox/internal/domain"
	"voicebox/internal/media"
	"voicebox/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

var (
	mp3Body = append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), bytes.Repeat([]byte{0}, 64)...)
	pngBody = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")
)

type testServer struct {
	router  *gin.Engine
	conn    *gorm.DB
	uploads string
}

// newTestServer builds the full router over in-memory SQLite and a temp upload dir
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	dir := t.TempDir()
	r := NewRouter(Deps{
		Users:     repository.NewUserRepository(conn),
		Episodes:  repository.NewEpisodeRepository(conn, nil),
		Wishlist:  repository.NewWishlistService(conn),
		Media:     media.NewIngestor(media.NewLocalStore(dir, "http://media.test")),
		Tokens:    TokenIssuer{Secret: testSecret, TTL: time.Hour},
		UploadDir: dir,
	})
	return &testServer{router: r, conn: conn, uploads: dir}
}

// do sends a request and returns the recorded response
func (s *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, token)
}

// register signs up an account and returns its id and token
func (s *testServer) register(t *testing.T, name string, role domain.Role) (string, string) {
	t.Helper()
	w := s.doJSON(t, http.MethodPost, "/api/auth/register", gin.H{
		"username": name,
		"email":    name + "@example.com",
		"password": "secret123",
		"role":     string(role),
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID, resp.Token
}

type formFile struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

// multipartRequest builds a multipart/form-data request
func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func audioFile() formFile {
	return formFile{field: "audio", filename: "ep.mp3", contentType: "audio/mpeg", data: mp3Body}
}

func thumbnailFile() formFile {
	return formFile{field: "thumbnail", filename: "cover.png", contentType: "image/png", data: pngBody}
}

// createEpisode uploads an episode as the given creator and returns it
func (s *testServer) createEpisode(t *testing.T, token string, fields map[string]string) domain.Episode {
	t.Helper()
	w := s.do(multipartRequest(t, http.MethodPost, "/api/episodes", fields, audioFile(), thumbnailFile()), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var ep domain.Episode
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ep))
	return ep
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// countFiles returns the number of regular files below dir
func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func (s *testServer) episodeCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.conn.Model(&domain.Episode{}).Count(&n).Error)
	return n
}
