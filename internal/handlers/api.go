package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Brownie44l1/animal-classifier/internal/classifier"
)

const apiVariant = "api"

// APIHandler serves the JSON front end. Uploads never touch disk.
type APIHandler struct {
	classifier *classifier.Classifier
	maxUpload  int64
	observer   PredictionObserver
	log        *zap.SugaredLogger
}

func NewAPIHandler(c *classifier.Classifier, maxUpload int64, observer PredictionObserver, log *zap.SugaredLogger) *APIHandler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &APIHandler{
		classifier: c,
		maxUpload:  maxUpload,
		observer:   observer,
		log:        log,
	}
}

func (h *APIHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Please use POST to submit an image."})
}

func (h *APIHandler) Predict(c *gin.Context) {
	up, err := uploadedImage(c, h.maxUpload)
	switch {
	case errors.Is(err, errNoFilename):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image selected"})
		return
	case errors.Is(err, errImageTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image too large"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
		return
	}

	h.log.Debugw("received file", "filename", up.Filename, "size", len(up.Data))

	result, err := h.classifier.Classify(c.Request.Context(), bytes.NewReader(up.Data))
	if err != nil {
		h.internalError(c, err)
		return
	}

	if h.observer != nil {
		h.observer.ObservePrediction(apiVariant, result.Prediction)
	}
	c.JSON(http.StatusOK, result)
}

// internalError reports err to the client verbatim.
func (h *APIHandler) internalError(c *gin.Context, err error) {
	h.log.Errorw("prediction failed", "error", err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error: " + err.Error()})
}
