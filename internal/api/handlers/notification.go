package handlers

import (
	"github.com/gin-gonic/gin"

	"reviewhub/internal/api/middleware"
	"reviewhub/internal/services"
	"reviewhub/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.notificationService.List(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "notifications retrieved successfully", notifications)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, ok := paramUint(c, "notification_id")
	if !ok {
		utils.SendValidationError(c, "invalid notification ID")
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), middleware.Actor(c), notificationID); err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "notification marked as read", nil)
}
