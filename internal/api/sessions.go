package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/youruser/galentine/internal/album"
	"github.com/youruser/galentine/internal/flow"
	imagepkg "github.com/youruser/galentine/internal/image"
	"github.com/youruser/galentine/internal/session"
)

type stateView struct {
	ID               string          `json:"id"`
	Step             flow.Step       `json:"step"`
	Layout           imagepkg.Layout `json:"layout"`
	Images           []album.Item    `json:"images"`
	Count            int             `json:"count"`
	Max              int             `json:"max"`
	Stickers         []string        `json:"stickers"`
	Controls         flow.Controls   `json:"controls"`
	ShowPostProposal bool            `json:"show_post_proposal"`
	Confetti         bool            `json:"confetti"`
	Composing        bool            `json:"composing"`
}

func view(id string, st flow.State) stateView {
	return stateView{
		ID:               id,
		Step:             st.Step,
		Layout:           st.Layout,
		Images:           st.Album.Items(),
		Count:            st.Album.Len(),
		Max:              album.MaxItems,
		Stickers:         album.Stickers,
		Controls:         flow.Enabled(st),
		ShowPostProposal: st.ShowPostProposal,
		Confetti:         st.Confetti,
		Composing:        st.Composing,
	}
}

func (h *Handler) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return s, true
}

// dispatch applies a to the session in the path and answers with the new view.
func (h *Handler) dispatch(c *gin.Context, a flow.Action) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	st, err := s.Dispatch(a)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view(s.ID, st))
}

func (h *Handler) createSession(c *gin.Context) {
	s := h.store.Create()
	h.logger.InfoContext(c.Request.Context(), "session created", "session", s.ID)
	c.JSON(http.StatusCreated, view(s.ID, s.Snapshot()))
}

func (h *Handler) getSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view(s.ID, s.Snapshot()))
}

func (h *Handler) uploadImages(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload*album.MaxItems+1<<20)
	form, err := c.MultipartForm()
	if err != nil {
		writeError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		writeError(c, fmt.Errorf("%w: no files in form field \"files\"", errBadRequest))
		return
	}

	batch := make([]album.Upload, 0, len(files))
	for _, fh := range files {
		u, err := h.readUpload(fh)
		if err != nil {
			writeError(c, err)
			return
		}
		batch = append(batch, u)
	}

	st, err := s.Dispatch(flow.AddImages{Uploads: batch})
	if err != nil {
		h.logger.InfoContext(c.Request.Context(), "upload rejected", "session", s.ID, "files", len(batch), "err", err)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view(s.ID, st))
}

func (h *Handler) readUpload(fh *multipart.FileHeader) (album.Upload, error) {
	if fh.Size > h.maxUpload {
		return album.Upload{}, fmt.Errorf("%w: %s (max %d bytes)", errTooLarge, fh.Filename, h.maxUpload)
	}
	f, err := fh.Open()
	if err != nil {
		return album.Upload{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		return album.Upload{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if int64(len(data)) > h.maxUpload {
		return album.Upload{}, fmt.Errorf("%w: %s (max %d bytes)", errTooLarge, fh.Filename, h.maxUpload)
	}
	mime, ok := rasterType(http.DetectContentType(data))
	if !ok {
		// unrecognised bytes under a raster type are kept; the compositor skips
		// what it cannot decode
		if mime, ok = rasterType(fh.Header.Get("Content-Type")); !ok {
			return album.Upload{}, fmt.Errorf("%w: %s is %s", errUnsupported, fh.Filename, fh.Header.Get("Content-Type"))
		}
	}
	return album.Upload{Name: fh.Filename, MIME: mime, Data: data}, nil
}

// rasterTypes are the image formats the compositor can decode.
var rasterTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
}

func rasterType(contentType string) (string, bool) {
	mt, _, _ := strings.Cut(contentType, ";")
	mt = strings.ToLower(strings.TrimSpace(mt))
	return mt, rasterTypes[mt]
}

func (h *Handler) getImage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	it, found := s.Snapshot().Album.Get(c.Param("imageID"))
	if !found {
		writeError(c, fmt.Errorf("%w: %s", album.ErrItemNotFound, c.Param("imageID")))
		return
	}
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, it.MIME, it.Data)
}

func (h *Handler) removeImage(c *gin.Context) {
	h.dispatch(c, flow.RemoveImage{ID: c.Param("imageID")})
}

func (h *Handler) setCaption(c *gin.Context) {
	var req struct {
		Caption string `json:"caption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	h.dispatch(c, flow.SetCaption{ID: c.Param("imageID"), Caption: req.Caption})
}

func (h *Handler) addSticker(c *gin.Context) {
	var req struct {
		Sticker string `json:"sticker"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if !album.IsSticker(req.Sticker) {
		writeError(c, fmt.Errorf("%w: unknown sticker %q", errBadRequest, req.Sticker))
		return
	}
	h.dispatch(c, flow.AddSticker{ID: c.Param("imageID"), Sticker: req.Sticker})
}

func (h *Handler) selectLayout(c *gin.Context) {
	var req struct {
		Layout string `json:"layout"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	l, err := imagepkg.ParseLayout(req.Layout)
	if err != nil {
		writeError(c, err)
		return
	}
	h.dispatch(c, flow.SelectLayout{Layout: l})
}

// next mirrors the page's "next section" buttons. Moving to the keepsake
// step is accepting the proposal.
func (h *Handler) next(c *gin.Context) {
	var req struct {
		Step string `json:"step"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	to, err := flow.ParseStep(req.Step)
	if err != nil {
		writeError(c, err)
		return
	}
	if to == flow.StepPostProposal {
		h.dispatch(c, flow.Accept{})
		return
	}
	h.dispatch(c, flow.Advance{To: to})
}
