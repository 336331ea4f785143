package handler

import (
	"net/http"

	"catalog-api/internal/domains/counter/service"

	"github.com/gin-gonic/gin"
)

const welcomeMessage = "Welcome to Docker Compose Practice"

// CounterHandler serves the visit counter. Its payloads are plain JSON
// objects, not the catalog response envelope.
type CounterHandler struct {
	service service.ServiceInterface
}

func NewCounterHandler(svc service.ServiceInterface) *CounterHandler {
	return &CounterHandler{service: svc}
}

// Index - GET /
// A store failure still answers 200 with "visits": "unavailable".
func (h *CounterHandler) Index(c *gin.Context) {
	visits, err := h.service.Visit(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"message": welcomeMessage,
			"visits":  "unavailable",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": welcomeMessage,
		"visits":  visits,
	})
}

// Health - GET /health
func (h *CounterHandler) Health(c *gin.Context) {
	status := "disconnected"
	if h.service.Healthy(c.Request.Context()) {
		status = "connected"
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "UP",
		"redis":  status,
	})
}

// Register mounts the counter routes on r.
func (h *CounterHandler) Register(r gin.IRoutes) {
	r.GET("/", h.Index)
	r.GET("/health", h.Health)
}
