package handlers

import (
	"bytes"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/animal-classifier/internal/classifier"
	"github.com/Brownie44l1/animal-classifier/internal/classifier/classifiertest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []string
}

func (o *recordingObserver) ObservePrediction(variant, class string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, variant+"/"+class)
}

type testEnv struct {
	router    *gin.Engine
	predictor *classifiertest.Predictor
	observer  *recordingObserver
	uploadDir string
}

func newTestEnv(t *testing.T, maxUpload int64) *testEnv {
	t.Helper()

	predictor := &classifiertest.Predictor{Scores: classifiertest.Scores}
	apiClassifier, err := classifier.New(predictor, classifier.APILabels)
	require.NoError(t, err)
	formClassifier, err := classifier.New(predictor, classifier.FormLabels)
	require.NoError(t, err)

	observer := &recordingObserver{}
	uploadDir := t.TempDir()
	hm, err := NewHandlerManager(Options{
		APIClassifier:  apiClassifier,
		FormClassifier: formClassifier,
		UploadDir:      uploadDir,
		MaxUploadBytes: maxUpload,
		Observer:       observer,
	})
	require.NoError(t, err)

	tmpl, err := Templates()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.GET("/", hm.FormHandler.Index)
	r.POST("/", hm.FormHandler.Upload)
	r.GET("/predict", hm.APIHandler.Info)
	r.POST("/predict", hm.APIHandler.Predict)
	r.GET("/health", Health)

	return &testEnv{router: r, predictor: predictor, observer: observer, uploadDir: uploadDir}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// multipartRequest builds a POST with one part. An empty filename
// produces a file part the way a browser sends an empty file input.
func multipartRequest(t *testing.T, path, field, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename == "" && field == imageField {
		part, err := w.CreateFormFile(field, "")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else if filename == "" {
		require.NoError(t, w.WriteField(field, string(content)))
	} else {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

// rawRequest posts body as-is under the given Content-Type.
func rawRequest(path, contentType, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return req
}

// textFieldRequest sends "image" as a plain form value, without a filename.
func textFieldRequest(t *testing.T, path string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField(imageField, "cat.png"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func solidImage() []byte {
	return classifiertest.SolidPNG(224, 224, color.RGBA{R: 120, G: 90, B: 60, A: 255})
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 0)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status": "healthy"}`, rec.Body.String())
}

func TestNewHandlerManagerCreatesUploadDir(t *testing.T) {
	dir := t.TempDir() + "/nested/uploads"
	_, err := NewHandlerManager(Options{UploadDir: dir})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestUploadedImageTreatsPlainPostAsMissing(t *testing.T) {
	env := newTestEnv(t, 0)
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader("image=cat.png"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := env.do(req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error": "No image provided"}`, rec.Body.String())
}
