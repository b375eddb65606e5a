package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	sessions SessionIssuer
}

func NewAuthHandler(sessions SessionIssuer) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/sessions", h.CreateSession)
}

// @Summary Start an anonymous shopping session
// @Description Returns a session ID and the bearer token that carries it
// @Tags auth
// @Produce json
// @Success 201 {object} auth.SessionTokenResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/sessions [post]
func (h *AuthHandler) CreateSession(c *gin.Context) {
	response, err := h.sessions.NewSession()
	if err != nil {
		respondError(c, "Failed to create session", err)
		return
	}

	c.JSON(http.StatusCreated, response)
}
