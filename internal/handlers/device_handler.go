package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/notifier"
	"github.com/stackdeck/backend/internal/repositories"
	"github.com/stackdeck/backend/internal/tasks"
)

// DeviceHandler handles device registration HTTP requests
type DeviceHandler struct {
	deviceRepository repositories.DeviceRepository
	queue            tasks.Enqueuer
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(deviceRepo repositories.DeviceRepository, queue tasks.Enqueuer) *DeviceHandler {
	return &DeviceHandler{deviceRepository: deviceRepo, queue: queue}
}

// RegisterDeviceRoutes registers device-related routes
func (h *DeviceHandler) RegisterDeviceRoutes(g *echo.Group) {
	g.POST("/devices", h.RegisterDevice)
	g.PUT("/devices/:id/push-token", h.UpdatePushToken)
}

// RegisterDevice registers a new push endpoint for the current user
func (h *DeviceHandler) RegisterDevice(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.RegisterDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	device := &models.Device{UserID: userID, PushToken: req.PushToken}
	if err := h.deviceRepository.CreateDevice(device); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.deviceRepository.SignIn(device.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if req.PushToken != "" {
		h.queue.Enqueue(notifier.TaskResolveEndpoint, deviceIDArg(device.ID))
	}

	return c.JSON(http.StatusCreated, device)
}

// UpdatePushToken attaches a platform push token to a device. Endpoint
// derivation only re-runs when the token actually changed.
func (h *DeviceHandler) UpdatePushToken(c echo.Context) error {
	userID := currentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	deviceID, err := parseUintParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid device ID")
	}
	device, err := h.deviceRepository.GetDeviceByID(deviceID)
	if err != nil || device.UserID != userID {
		return echo.NewHTTPError(http.StatusNotFound, "Device not found")
	}

	var req models.UpdateDeviceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	changed, err := h.deviceRepository.UpdatePushToken(device.ID, req.PushToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if changed {
		h.queue.Enqueue(notifier.TaskResolveEndpoint, deviceIDArg(device.ID))
	}

	return c.NoContent(http.StatusNoContent)
}
