package handler

import (
	"github.com/gin-gonic/gin"
)

// setSSEHeaders sets the headers c.SSEvent leaves alone; it writes Content-Type itself.
func setSSEHeaders(c *gin.Context) {
	headers := c.Writer.Header()
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
}

// sseWrite sends one event and flushes so the client sees it immediately.
func sseWrite(c *gin.Context, event string, data any) {
	c.SSEvent(event, data)
	c.Writer.Flush()
}
