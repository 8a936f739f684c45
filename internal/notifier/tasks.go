package notifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/stackdeck/backend/internal/repositories"
	"github.com/stackdeck/backend/internal/tasks"
	"github.com/stackdeck/backend/pkg/push"
	"gorm.io/gorm"
)

// RegisterTaskHandlers binds the pipeline's queue consumers. Both handlers
// are idempotent, as the queue contract requires.
func RegisterTaskHandlers(pool *tasks.Pool, processor *Processor, devices repositories.DeviceRepository, endpoints push.EndpointResolver) {
	pool.Handle(TaskProcessActivity, func(ctx context.Context, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("process_activity expects one argument, got %d", len(args))
		}
		_, err := processor.Process(ctx, args[0])
		return err
	})

	pool.Handle(TaskResolveEndpoint, func(ctx context.Context, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("resolve_endpoint expects one argument, got %d", len(args))
		}
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid device id %q: %w", args[0], err)
		}

		device, err := devices.GetDeviceByID(uint(id))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // device deleted before resolution, nothing to do
		}
		if err != nil {
			return err
		}
		if device.PushToken == "" {
			return nil
		}

		endpoint, err := endpoints.ResolveEndpoint(ctx, device.PushToken)
		if err != nil {
			return err
		}
		return devices.SetEndpoint(device.ID, endpoint)
	})
}
