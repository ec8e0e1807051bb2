package handler

import (
	"github.com/gin-gonic/gin"

	"hadhin/internal/auth"
	"hadhin/internal/model"
)

// Register mounts every route under /api. Role checks are explicit guard
// middleware composed here rather than scattered through handlers; the
// per-resource ownership rules (a parent seeing only their own child) stay
// in the services.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")

	authed := auth.Authenticated(h.jwtKey, h.jwtIssuer, h.users)
	staffOrAdmin := auth.RequireRoles(model.RoleStaff, model.RoleAdmin)
	adminOnly := auth.RequireRoles(model.RoleAdmin)
	parentOnly := auth.RequireRoles(model.RoleParent)

	ag := api.Group("/auth")
	{
		ag.POST("/register/parent", h.registerParent)
		ag.POST("/register/staff", h.registerStaff)
		ag.POST("/login", h.login)
		ag.POST("/forgot-password", h.forgotPassword)
		ag.POST("/reset-password", h.resetPassword)
		ag.GET("/profile", authed, h.getProfile)
		ag.PUT("/profile", authed, h.updateProfile)
	}

	cg := api.Group("/children", authed)
	{
		cg.POST("/add", parentOnly, h.addChild)
		cg.GET("/my-children", parentOnly, h.myChildren)
		cg.GET("/pending-approval", adminOnly, h.pendingChildren)
		cg.POST("/:id/approve", adminOnly, h.approveChild)
		cg.POST("/:id/reject", adminOnly, h.rejectChild)
		cg.GET("/all", adminOnly, h.allChildren)
		cg.GET("/:id", h.getChild)
		cg.PUT("/:id", h.updateChild)
		cg.GET("/:id/qr-code", h.childQRCode)
	}

	atg := api.Group("/attendance", authed)
	{
		atg.POST("/scan-qr", staffOrAdmin, h.scanQR)
		atg.GET("/child/:id/today", h.childToday)
		atg.GET("/today", staffOrAdmin, h.todayRoster)
		atg.GET("/child/:id/history", h.childHistory)
		atg.GET("/stats", adminOnly, h.attendanceStats)
	}

	ug := api.Group("/updates", authed)
	{
		ug.POST("/add", staffOrAdmin, h.addUpdate)
		ug.GET("/child/:id/today", h.childUpdatesToday)
		ug.GET("/child/:id/history", h.childUpdatesHistory)
		ug.GET("/my-children/today", parentOnly, h.myChildrenUpdates)
		ug.GET("/today", staffOrAdmin, h.allUpdatesToday)
		ug.PUT("/:id", staffOrAdmin, h.editUpdate)
		ug.DELETE("/:id", staffOrAdmin, h.deleteUpdate)
		ug.GET("/activity-types", h.activityTypes)
	}

	rg := api.Group("/registration")
	{
		rg.POST("/submit", h.submitRegistration)
		rg.GET("/list", authed, adminOnly, h.listRegistrations)
		rg.GET("/stats", authed, adminOnly, h.registrationStats)
		rg.GET("/:number", authed, adminOnly, h.getRegistration)
		rg.PUT("/:number/status", authed, adminOnly, h.updateRegistrationStatus)
	}
}
