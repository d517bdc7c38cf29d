package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/qr", qrHandler)
		api.GET("/reasons", h.reasonsHandler)
		api.GET("/tune.wav", h.tuneHandler)

		api.POST("/sessions", h.createSession)
		s := api.Group("/sessions/:id")
		{
			s.GET("", h.getSession)
			s.POST("/images", h.uploadImages)
			s.GET("/images/:imageID", h.getImage)
			s.DELETE("/images/:imageID", h.removeImage)
			s.PUT("/images/:imageID/caption", h.setCaption)
			s.POST("/images/:imageID/stickers", h.addSticker)
			s.PUT("/layout", h.selectLayout)
			s.POST("/next", h.next)
			s.GET("/collage.png", h.collage)
			s.GET("/keepsake.png", h.keepsake)
		}
	}
}
