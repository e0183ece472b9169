package services

import (
	"context"

	"HospitalMS/repositories"

	"github.com/rs/zerolog"
)

type DashboardService struct {
	repository *repositories.DashboardRepository
	log        zerolog.Logger
}

func NewDashboardService(repository *repositories.DashboardRepository, log zerolog.Logger) *DashboardService {
	return &DashboardService{repository: repository, log: log}
}

// Stats returns the counts for one hospital, or for the whole system when hospitalID is empty.
func (s *DashboardService) Stats(ctx context.Context, hospitalID string) (*repositories.DashboardStats, error) {
	return s.repository.Stats(ctx, hospitalID)
}

// RefreshGlobal recomputes the system-wide counts; the scheduler calls it.
func (s *DashboardService) RefreshGlobal() {
	if _, err := s.repository.Refresh(context.Background(), ""); err != nil {
		s.log.Error().Err(err).Msg("dashboard refresh failed")
		return
	}
	s.log.Debug().Msg("dashboard stats refreshed")
}
