package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"hadhin/internal/attendance"
	"hadhin/internal/child"
	"hadhin/internal/dailyupdate"
	"hadhin/internal/model"
	"hadhin/internal/notify"
	"hadhin/internal/registration"
	"hadhin/internal/user"
)

var scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hadhin_attendance_scans_total",
	Help: "QR scans processed, labelled by derived status.",
}, []string{"status"})

// Handler holds the service dependencies for all HTTP routes.
type Handler struct {
	users         *user.Service
	children      *child.Service
	attendance    *attendance.Service
	updates       *dailyupdate.Service
	registrations *registration.Service
	queue         notify.Queue
	log           *zap.Logger

	jwtIssuer string
	jwtKey    string
	tokenTTL  time.Duration
	uploadDir string
}

// New creates the handler set.
func New(
	users *user.Service,
	children *child.Service,
	att *attendance.Service,
	updates *dailyupdate.Service,
	registrations *registration.Service,
	queue notify.Queue,
	log *zap.Logger,
	jwtIssuer, jwtKey string,
	tokenTTL time.Duration,
	uploadDir string,
) *Handler {
	return &Handler{
		users:         users,
		children:      children,
		attendance:    att,
		updates:       updates,
		registrations: registrations,
		queue:         queue,
		log:           log,
		jwtIssuer:     jwtIssuer,
		jwtKey:        jwtKey,
		tokenTTL:      tokenTTL,
		uploadDir:     uploadDir,
	}
}

// fail maps service errors onto the HTTP taxonomy. Unrecognised errors are
// logged and surfaced as a generic 500 so internal detail never leaks.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, model.ErrAuthentication):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, model.ErrAuthorization):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}
