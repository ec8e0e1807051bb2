package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"hadhin/internal/auth"
	"hadhin/internal/model"
	"hadhin/internal/user"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (h *Handler) registerParent(c *gin.Context) {
	h.register(c, h.users.RegisterParent, "Parent registered successfully")
}

func (h *Handler) registerStaff(c *gin.Context) {
	h.register(c, h.users.RegisterStaff, "Staff registered successfully")
}

func (h *Handler) register(c *gin.Context, create func(ctx context.Context, in user.RegisterInput) (*model.User, error), message string) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	u, err := create(c.Request.Context(), user.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	token, _, err := auth.Issue(u.ID, u.Role, h.jwtIssuer, h.jwtKey, h.tokenTTL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": message, "token": token, "user": u})
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	u, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	token, _, err := auth.Issue(u.ID, u.Role, h.jwtIssuer, h.jwtKey, h.tokenTTL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "token": token, "user": u})
}

func (h *Handler) forgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	token, err := h.users.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	// The token would normally go out via email or SMS; returning it in the
	// response keeps the flow testable without a mail channel.
	c.JSON(http.StatusOK, gin.H{"message": "Password reset token generated", "reset_token": token})
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req struct {
		ResetToken  string `json:"reset_token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if err := h.users.ResetPassword(c.Request.Context(), req.ResetToken, req.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (h *Handler) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": auth.CurrentUser(c)})
}

func (h *Handler) updateProfile(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), auth.CurrentUser(c), req.Name, req.Phone)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "user": u})
}
