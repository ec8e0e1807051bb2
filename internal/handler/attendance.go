package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hadhin/internal/auth"
	"hadhin/internal/notify"
)

func (h *Handler) scanQR(c *gin.Context) {
	var req struct {
		QRCode string `json:"qr_code"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	staff := auth.CurrentUser(c)
	res, err := h.attendance.RecordScan(c.Request.Context(), req.QRCode, staff.ID, req.Notes)
	if err != nil {
		h.fail(c, err)
		return
	}
	scansTotal.WithLabelValues(string(res.Status)).Inc()

	if err := h.queue.Publish(c.Request.Context(), notify.Message{
		Kind:      notify.KindAttendance,
		ChildID:   res.Child.ID,
		ChildName: res.Child.Name,
		ParentID:  res.Child.ParentID,
		Body:      res.Message,
		At:        time.Now(),
	}); err != nil {
		h.log.Warn("notification publish failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    res.Message,
		"attendance": res.Event,
		"child":      res.Child,
		"status":     res.Status,
	})
}

func (h *Handler) childToday(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	day, err := h.attendance.ChildToday(c.Request.Context(), auth.CurrentUser(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

func (h *Handler) todayRoster(c *gin.Context) {
	roster, err := h.attendance.TodayRoster(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}

func (h *Handler) childHistory(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	days := intQuery(c, "days", 30)
	found, history, err := h.attendance.ChildHistory(c.Request.Context(), auth.CurrentUser(c), id, days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"child": found, "attendance_history": history})
}

func (h *Handler) attendanceStats(c *gin.Context) {
	days := intQuery(c, "days", 7)
	stats, err := h.attendance.Statistics(c.Request.Context(), days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
