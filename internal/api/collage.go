package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youruser/galentine/internal/album"
	imagepkg "github.com/youruser/galentine/internal/image"
)

// attachment delivers a collage as the HTTP response.
type attachment struct {
	c *gin.Context
}

func (a attachment) Deliver(_ context.Context, filename string, data []byte) error {
	a.c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	a.c.Data(http.StatusOK, "image/png", data)
	return nil
}

func (h *Handler) collage(c *gin.Context) {
	h.compose(c, imagepkg.CollageStyle, false)
}

func (h *Handler) keepsake(c *gin.Context) {
	h.compose(c, imagepkg.KeepsakeStyle, true)
}

func (h *Handler) compose(c *gin.Context, style imagepkg.Style, keepsake bool) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if keepsake && !s.Snapshot().ShowPostProposal {
		writeError(c, errLocked)
		return
	}
	st, release, err := s.BeginCompose()
	if err != nil {
		writeError(c, err)
		return
	}
	defer release()

	if h.qrText != "" {
		style = style.WithQR(h.qrText)
	}
	ctx := c.Request.Context()
	res, err := h.compositor.Export(ctx, sources(st.Album.Items()), st.Layout, style, attachment{c: c})
	if err != nil {
		h.logger.WarnContext(ctx, "collage failed", "session", s.ID, "err", err)
		writeError(c, err)
		return
	}
	h.logger.InfoContext(ctx, "collage downloaded", "session", s.ID, "file", res.Filename, "layout", res.Layout)
}

func sources(items []album.Item) []imagepkg.Source {
	out := make([]imagepkg.Source, len(items))
	for i, it := range items {
		out[i] = imagepkg.Source{Name: it.Name, Data: it.Data, Caption: it.Caption}
	}
	return out
}
