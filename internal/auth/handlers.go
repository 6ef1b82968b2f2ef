package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers exposes the single login endpoint over the operator Service.
type Handlers struct {
	service *Service
}

// NewHandlers builds Handlers around the given Service.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the auth routes under the given group.
func (h *Handlers) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
}

func (h *Handlers) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": true, "message": err.Error()})
		return
	}

	pair, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": true, "message": ErrInvalidCredentials.Message})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}
