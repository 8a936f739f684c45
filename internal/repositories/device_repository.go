package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/stackdeck/backend/internal/models"
	"gorm.io/gorm"
)

// DeviceRepository defines the interface for device data operations
type DeviceRepository interface {
	CreateDevice(device *models.Device) error
	GetDeviceByID(id uint) (*models.Device, error)
	GetDeviceByAccessToken(token string) (*models.Device, error)
	// RecentWithEndpoint returns up to limit of the user's devices that
	// have a resolved endpoint handle, most recently signed-in first.
	RecentWithEndpoint(userID uint, limit int) ([]models.Device, error)
	SignIn(deviceID uint) error
	// UpdatePushToken stores a new push token and reports whether it
	// actually changed, so callers can re-derive the endpoint handle.
	UpdatePushToken(deviceID uint, pushToken string) (changed bool, err error)
	SetEndpoint(deviceID uint, endpoint string) error
}

const maxAccessTokenAttempts = 5

// PostgresDeviceRepository implements DeviceRepository for PostgreSQL
type PostgresDeviceRepository struct {
	db *gorm.DB
}

// NewPostgresDeviceRepository creates a new PostgresDeviceRepository
func NewPostgresDeviceRepository(db *gorm.DB) *PostgresDeviceRepository {
	return &PostgresDeviceRepository{db: db}
}

// CreateDevice creates a device, generating a unique access token.
// Generation collision-checks against existing tokens and regenerates
// until unique; the unique index backstops a concurrent race.
func (r *PostgresDeviceRepository) CreateDevice(device *models.Device) error {
	for attempt := 0; attempt < maxAccessTokenAttempts; attempt++ {
		device.AccessToken = models.NewAccessToken()

		var count int64
		if err := r.db.Model(&models.Device{}).
			Where("access_token = ?", device.AccessToken).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		err := r.db.Create(device).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue
		}
		return err
	}
	return fmt.Errorf("could not generate a unique device access token")
}

// GetDeviceByID retrieves a device by ID
func (r *PostgresDeviceRepository) GetDeviceByID(id uint) (*models.Device, error) {
	var device models.Device
	if err := r.db.First(&device, id).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

// GetDeviceByAccessToken retrieves a device by its unique access token
func (r *PostgresDeviceRepository) GetDeviceByAccessToken(token string) (*models.Device, error) {
	var device models.Device
	if err := r.db.Where("access_token = ?", token).First(&device).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

// RecentWithEndpoint returns the user's push-capable devices
func (r *PostgresDeviceRepository) RecentWithEndpoint(userID uint, limit int) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.Where("user_id = ? AND endpoint_arn <> '' AND last_sign_in_at IS NOT NULL", userID).
		Order("last_sign_in_at DESC").
		Limit(limit).
		Find(&devices).Error
	return devices, err
}

// SignIn stamps the device's last sign-in time
func (r *PostgresDeviceRepository) SignIn(deviceID uint) error {
	now := time.Now().UTC()
	return r.db.Model(&models.Device{}).Where("id = ?", deviceID).
		Update("last_sign_in_at", now).Error
}

// UpdatePushToken stores a new push token on the device
func (r *PostgresDeviceRepository) UpdatePushToken(deviceID uint, pushToken string) (bool, error) {
	var device models.Device
	if err := r.db.First(&device, deviceID).Error; err != nil {
		return false, err
	}
	if device.PushToken == pushToken {
		return false, nil
	}
	// a changed token invalidates the previously resolved endpoint
	err := r.db.Model(&models.Device{}).Where("id = ?", deviceID).
		Updates(map[string]interface{}{"push_token": pushToken, "endpoint_arn": ""}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// SetEndpoint stores the resolved endpoint handle for a device
func (r *PostgresDeviceRepository) SetEndpoint(deviceID uint, endpoint string) error {
	return r.db.Model(&models.Device{}).Where("id = ?", deviceID).
		Update("endpoint_arn", endpoint).Error
}
