package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaikfardeenhussain/fixroute/internal/common/apperr"
	"github.com/shaikfardeenhussain/fixroute/internal/common/logger"
	"github.com/shaikfardeenhussain/fixroute/internal/dispatch/client"
	"github.com/shaikfardeenhussain/fixroute/internal/geo"
	"github.com/shaikfardeenhussain/fixroute/internal/worker/model"
)

type fakeLister struct {
	servicemen []model.Serviceman
}

func (f *fakeLister) ListAvailable(context.Context) ([]model.Serviceman, error) {
	return f.servicemen, nil
}

type fakeRanker struct {
	gotPayload client.PredictRequest
	results    []client.RankedServiceman
	err        error
}

func (f *fakeRanker) Rank(_ context.Context, payload client.PredictRequest) ([]client.RankedServiceman, error) {
	f.gotPayload = payload
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func ptr[T any](v T) *T { return &v }

func TestRecommendFiltersBeforeRanking(t *testing.T) {
	lister := &fakeLister{servicemen: []model.Serviceman{
		{ID: "near", FullName: "Near", IsAvailable: true, LocationLat: ptr(12.91), LocationLng: ptr(77.61)},
		{ID: "far", FullName: "Far", IsAvailable: true, LocationLat: ptr(20.0), LocationLng: ptr(80.0)},
		{ID: "hidden", FullName: "Hidden", IsAvailable: true},
	}}
	ranker := &fakeRanker{results: []client.RankedServiceman{{ID: "near"}}}
	svc := NewRecommendService(lister, ranker, logger.Nop{})

	_, err := svc.Recommend(context.Background(), geo.Position{Lat: 12.90, Lng: 77.60}, "fuel_delivery", 25)
	require.NoError(t, err)

	require.Len(t, ranker.gotPayload.Servicemen, 1)
	assert.Equal(t, "near", ranker.gotPayload.Servicemen[0].ID)
	assert.Equal(t, 12.90, ranker.gotPayload.UserLat)
	assert.Equal(t, 77.60, ranker.gotPayload.UserLng)
	assert.Equal(t, "fuel_delivery", ranker.gotPayload.ServiceType)
}

func TestRecommendReturnsRankingOrderVerbatim(t *testing.T) {
	lister := &fakeLister{servicemen: []model.Serviceman{
		{ID: "a", IsAvailable: true, LocationLat: ptr(12.91), LocationLng: ptr(77.61)},
		{ID: "b", IsAvailable: true, LocationLat: ptr(12.92), LocationLng: ptr(77.62)},
	}}
	// The ranker deliberately returns b before a even though a is closer.
	ranker := &fakeRanker{results: []client.RankedServiceman{
		{ID: "b", ETAPredicted: 7.5},
		{ID: "a", ETAPredicted: 4.2},
	}}
	svc := NewRecommendService(lister, ranker, logger.Nop{})

	out, err := svc.Recommend(context.Background(), geo.Position{Lat: 12.90, Lng: 77.60}, "towing", 25)
	require.NoError(t, err)

	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].ID)
	assert.Equal(t, "a", out[1].ID)
}

func TestRecommendDefaultsRadius(t *testing.T) {
	lister := &fakeLister{servicemen: []model.Serviceman{
		{ID: "near", IsAvailable: true, LocationLat: ptr(12.91), LocationLng: ptr(77.61)},
	}}
	ranker := &fakeRanker{}
	svc := NewRecommendService(lister, ranker, logger.Nop{})

	_, err := svc.Recommend(context.Background(), geo.Position{Lat: 12.90, Lng: 77.60}, "towing", 0)
	require.NoError(t, err)
	assert.Len(t, ranker.gotPayload.Servicemen, 1)
}

func TestRecommendSurfacesRankingFailure(t *testing.T) {
	lister := &fakeLister{servicemen: []model.Serviceman{
		{ID: "near", IsAvailable: true, LocationLat: ptr(12.91), LocationLng: ptr(77.61)},
	}}
	ranker := &fakeRanker{err: apperr.ErrRankingUnavailable}
	svc := NewRecommendService(lister, ranker, logger.Nop{})

	out, err := svc.Recommend(context.Background(), geo.Position{Lat: 12.90, Lng: 77.60}, "towing", 25)
	assert.ErrorIs(t, err, apperr.ErrRankingUnavailable)
	assert.Nil(t, out)
}

func TestRecommendEmptyCandidateSetStillAsksRanker(t *testing.T) {
	lister := &fakeLister{}
	ranker := &fakeRanker{results: []client.RankedServiceman{}}
	svc := NewRecommendService(lister, ranker, logger.Nop{})

	out, err := svc.Recommend(context.Background(), geo.Position{Lat: 12.90, Lng: 77.60}, "towing", 25)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, ranker.gotPayload.Servicemen)
}
