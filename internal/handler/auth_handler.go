package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/service"
)

// AuthHandler handles identity endpoints
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register godoc
// @Summary Register a member account
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body model.RegisterRequest true "Registration"
// @Success 201 {object} model.LoginResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	resp, err := h.authService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body model.LoginRequest true "Credentials"
// @Success 200 {object} model.LoginResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	resp, err := h.authService.Login(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Revoke the current token
// @Tags Auth
// @Security BearerAuth
// @Success 200 {object} model.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.MustGet("token").(string)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to log out"})
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Logged out"})
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserResponse
// @Router /auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.authService.Profile(currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// SearchUsers godoc
// @Summary Search members by name or email
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search query"
// @Success 200 {array} model.UserResponse
// @Router /users/search [get]
func (h *AuthHandler) SearchUsers(c *gin.Context) {
	users, err := h.authService.SearchUsers(c.Query("q"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// RegisterDevice godoc
// @Summary Register an FCM device token
// @Tags Users
// @Accept json
// @Security BearerAuth
// @Param body body model.RegisterDeviceRequest true "Device"
// @Success 200 {object} model.SuccessResponse
// @Router /users/devices [post]
func (h *AuthHandler) RegisterDevice(c *gin.Context) {
	var req model.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}
	if err := h.authService.RegisterDevice(currentUserID(c), req); err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to register device"})
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Device registered"})
}
