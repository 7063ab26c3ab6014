package service

import (
	"context"

	"github.com/shaikfardeenhussain/fixroute/internal/worker/model"
	"github.com/shaikfardeenhussain/fixroute/internal/worker/repository"
)

type ServicemanService struct {
	repo *repository.ServicemanRepository
}

func NewServicemanService(repo *repository.ServicemanRepository) *ServicemanService {
	return &ServicemanService{repo: repo}
}

func (s *ServicemanService) UpdateLocation(ctx context.Context, servicemanID string, lat, lng float64) (*model.Serviceman, error) {
	return s.repo.UpdateLocation(ctx, servicemanID, lat, lng)
}

func (s *ServicemanService) ClearLocation(ctx context.Context, servicemanID string) (*model.Serviceman, error) {
	return s.repo.ClearLocation(ctx, servicemanID)
}
