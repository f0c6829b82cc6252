package usecases

import (
	"context"

	"github.com/orris-inc/poolkeeper/internal/application/job/dto"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

// SchedulerControl reads and flips the global dispatch flag
type SchedulerControl interface {
	Enabled(ctx context.Context) (bool, error)
	SetEnabled(ctx context.Context, enabled bool) error
}

type SchedulerStatusUseCase struct {
	control SchedulerControl
	logger  logger.Interface
}

func NewSchedulerStatusUseCase(control SchedulerControl, logger logger.Interface) *SchedulerStatusUseCase {
	return &SchedulerStatusUseCase{control: control, logger: logger}
}

func (uc *SchedulerStatusUseCase) Get(ctx context.Context) (*dto.SchedulerStatusDTO, error) {
	enabled, err := uc.control.Enabled(ctx)
	if err != nil {
		uc.logger.Errorw("failed to read scheduler status", "error", err)
		return nil, err
	}
	return &dto.SchedulerStatusDTO{Enabled: enabled}, nil
}

// Set pauses or resumes dispatch. Pausing leaves queued jobs queued.
func (uc *SchedulerStatusUseCase) Set(ctx context.Context, enabled bool) (*dto.SchedulerStatusDTO, error) {
	if err := uc.control.SetEnabled(ctx, enabled); err != nil {
		uc.logger.Errorw("failed to set scheduler status", "enabled", enabled, "error", err)
		return nil, err
	}
	uc.logger.Infow("scheduler status changed", "enabled", enabled)
	return &dto.SchedulerStatusDTO{Enabled: enabled}, nil
}
