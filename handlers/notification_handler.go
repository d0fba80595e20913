package handlers

import (
	"net/http"

	"github.com/NomadCrew/neoevents/types"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	permissions NotificationPermissionInterface
}

func NewNotificationHandler(permissions NotificationPermissionInterface) *NotificationHandler {
	return &NotificationHandler{permissions: permissions}
}

// GetPermissionHandler reports whether favorite notifications can be sent.
// @Summary Get notification permission
// @Tags notifications
// @Produce json
// @Success 200 {object} types.NotificationPermissionResponse "Channel availability and permission"
// @Router /notifications/permission [get]
func (h *NotificationHandler) GetPermissionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.response())
}

// SetPermissionHandler records the answer to the notification permission
// request.
// @Summary Answer the notification permission request
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body types.NotificationPermissionRequest true "Permission answer"
// @Success 200 {object} types.NotificationPermissionResponse "Channel availability and permission"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Router /notifications/permission [post]
func (h *NotificationHandler) SetPermissionHandler(c *gin.Context) {
	var req types.NotificationPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	h.permissions.SetPermission(*req.Granted)
	c.JSON(http.StatusOK, h.response())
}

func (h *NotificationHandler) response() types.NotificationPermissionResponse {
	return types.NotificationPermissionResponse{
		Available: h.permissions.Available(),
		Granted:   h.permissions.Permitted(),
	}
}
