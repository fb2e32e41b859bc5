package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The portal client unwraps responses by envelope key ("plan", "plans",
// "invoices", ...), so handlers respond with the key their route owns.
func respondWith(c *gin.Context, key string, data any) {
	c.JSON(http.StatusOK, gin.H{key: data})
}

func respondMessage(c *gin.Context, message string, extra gin.H) {
	body := gin.H{"message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}
