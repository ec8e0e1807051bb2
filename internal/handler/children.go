package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hadhin/internal/auth"
)

type childRequest struct {
	Name      string `json:"name"`
	Birthdate string `json:"birthdate"`
	PhotoURL  string `json:"photo_url"`
}

func (h *Handler) addChild(c *gin.Context) {
	var req childRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	caller := auth.CurrentUser(c)
	created, err := h.children.Add(c.Request.Context(), caller.ID, req.Name, req.Birthdate, req.PhotoURL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Child added successfully. Waiting for admin approval.",
		"child":   created,
	})
}

func (h *Handler) myChildren(c *gin.Context) {
	children, err := h.children.MyChildren(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"children": children})
}

func (h *Handler) pendingChildren(c *gin.Context) {
	children, err := h.children.Pending(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_children": children})
}

func (h *Handler) approveChild(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	approved, err := h.children.Approve(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Child approved successfully", "child": approved})
}

func (h *Handler) rejectChild(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "No reason provided"
	}
	if err := h.children.Reject(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Child rejected successfully", "reason": req.Reason})
}

func (h *Handler) allChildren(c *gin.Context) {
	children, err := h.children.All(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"children": children})
}

func (h *Handler) getChild(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	found, err := h.children.Get(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"child": found})
}

func (h *Handler) updateChild(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req childRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	updated, err := h.children.Update(c.Request.Context(), auth.CurrentUser(c), id, req.Name, req.Birthdate, req.PhotoURL)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Child updated successfully", "child": updated})
}

func (h *Handler) childQRCode(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	found, err := h.children.QRCode(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"child_id":   found.ID,
		"child_name": found.Name,
		"qr_code":    found.QRCode,
	})
}
