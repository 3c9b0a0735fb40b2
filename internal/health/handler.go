package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler responds to liveness probes
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
