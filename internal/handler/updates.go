package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hadhin/internal/auth"
	"hadhin/internal/dailyupdate"
	"hadhin/internal/notify"
)

func (h *Handler) addUpdate(c *gin.Context) {
	var req struct {
		ChildID      int64  `json:"child_id"`
		Note         string `json:"note"`
		PhotoURL     string `json:"photo_url"`
		VideoURL     string `json:"video_url"`
		ActivityType string `json:"activity_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	staff := auth.CurrentUser(c)
	created, childRec, err := h.updates.Add(c.Request.Context(), staff.ID, dailyupdate.AddInput{
		ChildID:      req.ChildID,
		Note:         req.Note,
		PhotoURL:     req.PhotoURL,
		VideoURL:     req.VideoURL,
		ActivityType: req.ActivityType,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.queue.Publish(c.Request.Context(), notify.Message{
		Kind:      notify.KindDailyUpdate,
		ChildID:   childRec.ID,
		ChildName: childRec.Name,
		ParentID:  childRec.ParentID,
		Body:      "New daily update for " + childRec.Name,
		At:        time.Now(),
	}); err != nil {
		h.log.Warn("notification publish failed", zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Daily update added successfully",
		"update":  created,
		"child":   childRec,
	})
}

func (h *Handler) childUpdatesToday(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	childRec, updates, err := h.updates.ChildToday(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"child":   childRec,
		"date":    time.Now().Format("2006-01-02"),
		"updates": updates,
	})
}

func (h *Handler) childUpdatesHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	days := intQuery(c, "days", 7)
	activity := c.Query("activity_type")
	childRec, history, err := h.updates.ChildHistory(c.Request.Context(), auth.CurrentUser(c), id, days, activity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"child": childRec, "updates_history": history})
}

func (h *Handler) myChildrenUpdates(c *gin.Context) {
	res, err := h.updates.MyChildrenToday(c.Request.Context(), auth.CurrentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":             time.Now().Format("2006-01-02"),
		"children_updates": res,
	})
}

func (h *Handler) allUpdatesToday(c *gin.Context) {
	digest, err := h.updates.AllToday(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, digest)
}

func (h *Handler) editUpdate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Note         *string `json:"note"`
		PhotoURL     *string `json:"photo_url"`
		VideoURL     *string `json:"video_url"`
		ActivityType *string `json:"activity_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	updated, err := h.updates.Edit(c.Request.Context(), auth.CurrentUser(c), id, dailyupdate.EditInput{
		Note:         req.Note,
		PhotoURL:     req.PhotoURL,
		VideoURL:     req.VideoURL,
		ActivityType: req.ActivityType,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Daily update updated successfully", "update": updated})
}

func (h *Handler) deleteUpdate(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.updates.Delete(c.Request.Context(), auth.CurrentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Daily update deleted successfully"})
}

func (h *Handler) activityTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"activity_types": dailyupdate.ActivityTypes()})
}
