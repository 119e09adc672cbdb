package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Brownie44l1/animal-classifier/internal/classifier"
)

const (
	formVariant   = "form"
	indexTemplate = "index.html"
)

// FormHandler serves the server-rendered upload page. Uploads are
// written to uploadDir for the duration of one request.
type FormHandler struct {
	classifier *classifier.Classifier
	uploadDir  string
	maxUpload  int64
	observer   PredictionObserver
	log        *zap.SugaredLogger
}

func NewFormHandler(c *classifier.Classifier, uploadDir string, maxUpload int64, observer PredictionObserver, log *zap.SugaredLogger) (*FormHandler, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create upload directory: %w", err)
	}
	return &FormHandler{
		classifier: c,
		uploadDir:  uploadDir,
		maxUpload:  maxUpload,
		observer:   observer,
		log:        log,
	}, nil
}

func (h *FormHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplate, gin.H{})
}

// Upload classifies the submitted image. Validation problems are shown
// on the page; processing failures abort the request with a bare 500.
func (h *FormHandler) Upload(c *gin.Context) {
	up, err := uploadedImage(c, h.maxUpload)
	switch {
	case errors.Is(err, errNoFilename):
		c.HTML(http.StatusOK, indexTemplate, gin.H{"error": "No image selected"})
		return
	case errors.Is(err, errImageTooLarge):
		c.HTML(http.StatusRequestEntityTooLarge, indexTemplate, gin.H{"error": "Image too large"})
		return
	case err != nil:
		c.HTML(http.StatusOK, indexTemplate, gin.H{"error": "No image uploaded"})
		return
	}

	savePath := filepath.Join(h.uploadDir, uuid.New().String()+strings.ToLower(filepath.Ext(up.Filename)))
	if err := os.WriteFile(savePath, up.Data, 0o600); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, fmt.Errorf("could not save upload: %w", err))
		return
	}
	defer func() {
		if err := os.Remove(savePath); err != nil {
			h.log.Warnw("failed to remove temp file", "path", savePath, "error", err)
		}
	}()

	result, err := h.classifier.ClassifyFile(c.Request.Context(), savePath)
	if err != nil {
		h.log.Errorw("prediction failed", "filename", up.Filename, "error", err)
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	if h.observer != nil {
		h.observer.ObservePrediction(formVariant, result.Prediction)
	}
	c.HTML(http.StatusOK, indexTemplate, gin.H{
		"prediction":      result.Prediction,
		"confidence":      result.Confidence,
		"all_predictions": result.AllPredictions,
	})
}
