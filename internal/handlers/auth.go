package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stackdeck/backend/internal/models"
	"github.com/stackdeck/backend/internal/notifier"
	"github.com/stackdeck/backend/internal/repositories"
	"github.com/stackdeck/backend/internal/tasks"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository   repositories.UserRepository
	deviceRepository repositories.DeviceRepository
	queue            tasks.Enqueuer
	jwtSecret        string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, deviceRepo repositories.DeviceRepository, queue tasks.Enqueuer, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository:   userRepo,
		deviceRepository: deviceRepo,
		queue:            queue,
		jwtSecret:        jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.SignUp)
	g.POST("/signin", h.SignIn)
}

// authResponse is returned on successful signup or signin
type authResponse struct {
	Token  string         `json:"token"`
	User   models.User    `json:"user"`
	Device *models.Device `json:"device,omitempty"`
}

// SignUp handles registration with email and password. A device is created
// and signed in alongside the user.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req models.SignUpRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.userRepository.GetUserByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Email already registered")
	}
	if _, err := h.userRepository.GetUserByUsername(req.Username); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Username already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	device, err := h.signInDevice(user.ID, 0, req.PushToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.issueToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}

	return c.JSON(http.StatusCreated, authResponse{Token: token, User: *user, Device: device})
}

// SignIn handles signing in with email and password, optionally from a
// known device
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	device, err := h.signInDevice(user.ID, req.DeviceID, req.PushToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.issueToken(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: *user, Device: device})
}

// signInDevice finds or creates the session device, stamps its sign-in
// time and schedules endpoint resolution when the push token changed.
func (h *AuthHandler) signInDevice(userID, deviceID uint, pushToken string) (*models.Device, error) {
	var device *models.Device

	if deviceID != 0 {
		found, err := h.deviceRepository.GetDeviceByID(deviceID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if found != nil && found.UserID == userID {
			device = found
		}
	}

	if device == nil {
		device = &models.Device{UserID: userID, PushToken: pushToken}
		if err := h.deviceRepository.CreateDevice(device); err != nil {
			return nil, err
		}
		if pushToken != "" {
			h.queue.Enqueue(notifier.TaskResolveEndpoint, deviceIDArg(device.ID))
		}
	} else if pushToken != "" {
		changed, err := h.deviceRepository.UpdatePushToken(device.ID, pushToken)
		if err != nil {
			return nil, err
		}
		if changed {
			h.queue.Enqueue(notifier.TaskResolveEndpoint, deviceIDArg(device.ID))
		}
		device.PushToken = pushToken
	}

	if err := h.deviceRepository.SignIn(device.ID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	device.LastSignInAt = &now
	return device, nil
}

func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
