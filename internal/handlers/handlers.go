package handlers

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Brownie44l1/animal-classifier/internal/classifier"
)

const imageField = "image"

var (
	errNoImage       = errors.New("no image provided")
	errNoFilename    = errors.New("no image selected")
	errImageTooLarge = errors.New("image too large")
)

// PredictionObserver is told about every successful classification.
type PredictionObserver interface {
	ObservePrediction(variant, class string)
}

type Options struct {
	APIClassifier  *classifier.Classifier
	FormClassifier *classifier.Classifier
	UploadDir      string
	MaxUploadBytes int64
	Observer       PredictionObserver
	Logger         *zap.SugaredLogger
}

type HandlerManager struct {
	APIHandler  *APIHandler
	FormHandler *FormHandler
}

func NewHandlerManager(opts Options) (*HandlerManager, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	form, err := NewFormHandler(opts.FormClassifier, opts.UploadDir, opts.MaxUploadBytes, opts.Observer, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &HandlerManager{
		APIHandler:  NewAPIHandler(opts.APIClassifier, opts.MaxUploadBytes, opts.Observer, opts.Logger),
		FormHandler: form,
	}, nil
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

type upload struct {
	Filename string
	Data     []byte
}

// uploadedImage reads the first "image" file part of a multipart request.
//
// A part counts as a file only when its Content-Disposition carries a
// filename parameter. A file input submitted without a file has
// filename="" and is reported as errNoFilename. A plain field named
// "image", a body that is not multipart, or a body that cannot be parsed
// all mean no image was provided.
func uploadedImage(c *gin.Context, maxBytes int64) (*upload, error) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	}

	mr, err := c.Request.MultipartReader()
	if err != nil {
		return nil, errNoImage
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoImage
		}
		if err != nil {
			return nil, readError(err)
		}
		if part.FormName() != imageField {
			continue
		}

		filename, isFile := partFilename(part)
		if !isFile {
			continue
		}
		if filename == "" {
			return nil, errNoFilename
		}

		data, err := io.ReadAll(part)
		if err != nil {
			return nil, readError(err)
		}
		return &upload{Filename: filename, Data: data}, nil
	}
}

// partFilename reports the part's filename and whether the parameter is
// present at all.
func partFilename(p *multipart.Part) (string, bool) {
	_, params, err := mime.ParseMediaType(p.Header.Get("Content-Disposition"))
	if err != nil {
		return "", false
	}
	if _, ok := params["filename"]; !ok {
		return "", false
	}
	return p.FileName(), true
}

func readError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errImageTooLarge
	}
	return errNoImage
}
