package service

import (
	"context"
	"fmt"

	"github.com/shaikfardeenhussain/fixroute/internal/common/logger"
	"github.com/shaikfardeenhussain/fixroute/internal/dispatch/client"
	"github.com/shaikfardeenhussain/fixroute/internal/geo"
	"github.com/shaikfardeenhussain/fixroute/internal/worker/model"
)

// DefaultMaxDistanceKm bounds the search radius when the requester does
// not supply one.
const DefaultMaxDistanceKm = 25

type ServicemanLister interface {
	ListAvailable(ctx context.Context) ([]model.Serviceman, error)
}

type Ranker interface {
	Rank(ctx context.Context, payload client.PredictRequest) ([]client.RankedServiceman, error)
}

// RecommendService assembles the candidate set for a dispatch request and
// delegates ordering to the external Ranking Service.
type RecommendService struct {
	workers ServicemanLister
	ranker  Ranker
	log     logger.Logger
}

func NewRecommendService(workers ServicemanLister, ranker Ranker, log logger.Logger) *RecommendService {
	return &RecommendService{workers: workers, ranker: ranker, log: log}
}

// Recommend narrows available workers by radius and returns the ranking
// service's ordering verbatim. A ranking failure is surfaced, never
// replaced with a fabricated or empty list.
func (s *RecommendService) Recommend(ctx context.Context, origin geo.Position, serviceType string, maxDistanceKm float64) ([]client.RankedServiceman, error) {
	if maxDistanceKm <= 0 {
		maxDistanceKm = DefaultMaxDistanceKm
	}

	servicemen, err := s.workers.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load available servicemen: %w", err)
	}

	index := make(map[string]model.Serviceman, len(servicemen))
	candidates := make([]geo.Candidate, 0, len(servicemen))
	for _, sm := range servicemen {
		index[sm.ID] = sm
		var pos *geo.Position
		if sm.LocationLat != nil && sm.LocationLng != nil {
			pos = &geo.Position{Lat: *sm.LocationLat, Lng: *sm.LocationLng}
		}
		candidates = append(candidates, geo.Candidate{ID: sm.ID, Pos: pos, Available: sm.IsAvailable})
	}

	matches := geo.Filter(origin, candidates, maxDistanceKm)

	payload := client.PredictRequest{
		UserLat:     origin.Lat,
		UserLng:     origin.Lng,
		ServiceType: serviceType,
		Servicemen:  make([]client.ServicemanPayload, 0, len(matches)),
	}
	for _, m := range matches {
		sm := index[m.ID]
		payload.Servicemen = append(payload.Servicemen, client.ServicemanPayload{
			ID:          sm.ID,
			FullName:    sm.FullName,
			BaseCost:    sm.BaseCost,
			Rating:      sm.Rating,
			LocationLat: sm.LocationLat,
			LocationLng: sm.LocationLng,
		})
	}

	results, err := s.ranker.Rank(ctx, payload)
	if err != nil {
		s.log.Warnf("ranking call failed: %v", err)
		return nil, err
	}

	s.log.Debugw("recommendation served", map[string]any{
		"candidates": len(payload.Servicemen),
		"ranked":     len(results),
	})
	return results, nil
}
