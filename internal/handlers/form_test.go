package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormIndex(t *testing.T) {
	env := newTestEnv(t, 0)
	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `enctype="multipart/form-data"`)
	assert.Contains(t, body, `name="image"`)
	assert.NotContains(t, body, "Prediction Result")
	assert.NotContains(t, body, `class="error"`)
}

func TestFormUploadValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		wantErr string
	}{
		{
			name: "missing field",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/", "note", "", []byte("hi"))
			},
			wantErr: "No image uploaded",
		},
		{
			name: "image as plain field",
			req: func(t *testing.T) *http.Request {
				return textFieldRequest(t, "/")
			},
			wantErr: "No image uploaded",
		},
		{
			name: "malformed multipart body",
			req: func(t *testing.T) *http.Request {
				return rawRequest("/", "multipart/form-data; boundary=xyz", "not a multipart body")
			},
			wantErr: "No image uploaded",
		},
		{
			name: "empty filename",
			req: func(t *testing.T) *http.Request {
				return multipartRequest(t, "/", imageField, "", nil)
			},
			wantErr: "No image selected",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, 0)
			rec := env.do(tt.req(t))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), `<p class="error">`+tt.wantErr+`</p>`)
			assert.Zero(t, env.predictor.Calls())
		})
	}
}

func TestFormUploadSuccess(t *testing.T) {
	env := newTestEnv(t, 10<<20)
	rec := env.do(multipartRequest(t, "/", imageField, "Farfalla.PNG", solidImage()))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<strong>Animal:</strong> farfalla")
	assert.Contains(t, body, "<strong>Confidence:</strong> 60.00%")
	assert.Contains(t, body, "<tr><td>farfalla</td><td>60.00</td></tr>")
	assert.Contains(t, body, "<tr><td>scoiattolo</td><td>2.00</td></tr>")

	assert.Equal(t, []string{"form/farfalla"}, env.observer.seen)
	assert.Empty(t, dirEntries(t, env.uploadDir), "upload must be removed after the response")
}

func TestFormUploadFailureIsUnguarded(t *testing.T) {
	env := newTestEnv(t, 0)
	env.predictor.Err = errors.New("onnx session closed")

	rec := env.do(multipartRequest(t, "/", imageField, "cat.png", solidImage()))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "onnx session closed")
	assert.Empty(t, dirEntries(t, env.uploadDir))
}

func TestFormUploadCorruptImage(t *testing.T) {
	env := newTestEnv(t, 0)
	rec := env.do(multipartRequest(t, "/", imageField, "broken.gif", []byte("GIF89a?")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, dirEntries(t, env.uploadDir))
}
