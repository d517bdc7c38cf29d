package api

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youruser/galentine/internal/album"
	"github.com/youruser/galentine/internal/flow"
	imagepkg "github.com/youruser/galentine/internal/image"
	"github.com/youruser/galentine/internal/reasons"
	"github.com/youruser/galentine/internal/session"
	"github.com/youruser/galentine/internal/tune"
)

// Handler serves everything that needs shared state.
type Handler struct {
	store      *session.Store
	compositor *imagepkg.Compositor
	reasons    []reasons.Card
	maxUpload  int64
	qrText     string
	logger     *slog.Logger
}

type Options struct {
	Store      *session.Store
	Compositor *imagepkg.Compositor
	Reasons    []reasons.Card
	// MaxUploadBytes limits each uploaded file.
	MaxUploadBytes int64
	// QRText, when set, is stamped on every collage as a QR badge.
	QRText string
	Logger *slog.Logger
}

func NewHandler(o Options) *Handler {
	h := &Handler{
		store:      o.Store,
		compositor: o.Compositor,
		reasons:    o.Reasons,
		maxUpload:  o.MaxUploadBytes,
		qrText:     o.QRText,
		logger:     o.Logger,
	}
	if h.store == nil {
		h.store = session.NewStore()
	}
	if h.compositor == nil {
		h.compositor = imagepkg.NewCompositor(imagepkg.DefaultTuning())
	}
	if h.reasons == nil {
		h.reasons = reasons.Defaults
	}
	if h.maxUpload <= 0 {
		h.maxUpload = 10 << 20
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// NewEngine builds a gin engine with all routes registered.
func NewEngine(h *Handler) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = h.maxUpload * album.MaxItems
	RegisterRoutes(r, h)
	return r
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// qr endpoint returns a PNG of a QR for "text" query param
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		text = "Be my Galentine?"
	}
	size := 400
	if v, err := strconv.Atoi(c.Query("size")); err == nil {
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// reasonsHandler returns the deck and the carousel position. "active" picks
// the front card and "move" (next or prev) steps from it, wrapping around.
func (h *Handler) reasonsHandler(c *gin.Context) {
	active, _ := strconv.Atoi(c.Query("active"))
	car := reasons.At(len(h.reasons), active).Move(c.Query("move"))
	prev, next := car.Neighbors()
	c.JSON(http.StatusOK, gin.H{
		"count":   len(h.reasons),
		"reasons": h.reasons,
		"active":  car.Active,
		"prev":    prev,
		"next":    next,
	})
}

func (h *Handler) tuneHandler(c *gin.Context) {
	loops := 2
	if v, err := strconv.Atoi(c.Query("loops")); err == nil && v > 0 && v <= 8 {
		loops = v
	}
	b, err := tune.WAV(loops, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "audio/wav", b)
}

var (
	errBadRequest  = errors.New("bad request")
	errUnsupported = errors.New("only image files can be uploaded")
	errTooLarge    = errors.New("file too large")
	errLocked      = errors.New("the keepsake collage unlocks once the proposal is accepted")
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, album.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, flow.ErrComposing), errors.Is(err, flow.ErrInvalidTransition),
		errors.Is(err, flow.ErrNotEditable), errors.Is(err, errLocked):
		return http.StatusConflict
	case errors.Is(err, album.ErrTooManyImages), errors.Is(err, flow.ErrEmptyWorkingSet),
		errors.Is(err, imagepkg.ErrNoValidImages):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest), errors.Is(err, imagepkg.ErrUnknownLayout),
		errors.Is(err, flow.ErrUnknownStep), errors.Is(err, album.ErrEmptySticker),
		errors.Is(err, imagepkg.ErrEmptyQRText):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// message turns err into the notice shown to the visitor.
func message(err error) string {
	switch {
	case errors.Is(err, album.ErrTooManyImages):
		return album.CapNotice
	case errors.Is(err, imagepkg.ErrNoValidImages):
		return "No valid images to download."
	case errors.Is(err, imagepkg.ErrCanvasUnavailable):
		return "Failed to create the collage canvas."
	}
	return err.Error()
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": message(err)})
}
