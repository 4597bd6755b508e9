package handler

import "github.com/gin-gonic/gin"

// Handlers groups the handlers mounted under /api/v1. Import is optional.
type Handlers struct {
	Chat     *ChatHandler
	Search   *SearchHandler
	Feedback *FeedbackHandler
	Import   *ImportHandler
}

// RegisterRoutes mounts the API on group.
func RegisterRoutes(group *gin.RouterGroup, h Handlers) {
	sessions := group.Group("/sessions")
	{
		sessions.POST("", h.Chat.Start)
		sessions.GET("/:id", h.Chat.Get)
		sessions.POST("/:id/messages", h.Chat.Send)
		sessions.POST("/:id/messages/stream", h.Chat.SendStream)
		sessions.POST("/:id/location", h.Chat.Location)
	}

	group.POST("/search", h.Search.Search)
	group.GET("/listings/:id", h.Search.GetListing)
	group.POST("/feedback", h.Feedback.Submit)

	if h.Import != nil {
		group.POST("/listings/import", h.Import.Import)
	}
}
