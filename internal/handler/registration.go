package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hadhin/internal/model"
	"hadhin/internal/registration"
)

// submitRegistration accepts a multipart enrollment form. Attachments are
// saved to local disk before the record is written; a failed write drops the
// submission entirely.
func (h *Handler) submitRegistration(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "multipart form required"})
		return
	}
	value := func(key string) string {
		if vals := form.Value[key]; len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	regNumber := registration.NewNumber()
	var files []model.RegistrationFile
	for field, headers := range form.File {
		for _, header := range headers {
			if header.Filename == "" || !registration.AllowedFile(header.Filename) {
				continue
			}
			src, err := header.Open()
			if err != nil {
				h.fail(c, err)
				return
			}
			saved, err := registration.SaveUpload(h.uploadDir, regNumber, field, header.Filename, src)
			src.Close()
			if err != nil {
				h.fail(c, err)
				return
			}
			files = append(files, saved)
		}
	}

	reg, err := h.registrations.Submit(c.Request.Context(), registration.SubmitInput{
		Number:         regNumber,
		ChildName:      value("childName"),
		BirthDate:      value("birthDate"),
		Gender:         value("gender"),
		Nationality:    value("nationality"),
		BirthPlace:     value("birthPlace"),
		ParentName:     value("parentName"),
		Relationship:   value("relationship"),
		Phone:          value("phoneNumber"),
		EmergencyPhone: value("emergencyPhone"),
		Email:          value("email"),
		Address:        value("address"),
		Files:          files,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":             "Registration submitted successfully",
		"registration_number": reg.RegistrationNumber,
		"status":              reg.Status,
		"submission_date":     reg.SubmittedAt,
		"registration":        reg,
	})
}

func (h *Handler) listRegistrations(c *gin.Context) {
	regs, err := h.registrations.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	c.JSON(http.StatusOK, gin.H{"registrations": regs, "total": len(regs)})
}

func (h *Handler) getRegistration(c *gin.Context) {
	reg, err := h.registrations.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration": reg})
}

func (h *Handler) updateRegistrationStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if err := h.registrations.UpdateStatus(c.Request.Context(), c.Param("number"), req.Status, req.Notes); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Registration status updated successfully"})
}

func (h *Handler) registrationStats(c *gin.Context) {
	stats, err := h.registrations.Statistics(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
