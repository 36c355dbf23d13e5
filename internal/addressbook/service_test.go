package addressbook

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	*StaticProvider
	regionCalls int
}

func (p *countingProvider) Regions(ctx context.Context) ([]Place, error) {
	p.regionCalls++
	return p.StaticProvider.Regions(ctx)
}

func newTestService(t *testing.T) (*Service, *countingProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	provider := &countingProvider{StaticProvider: NewStaticProvider()}
	return NewService(provider, client, time.Hour, nil), provider, mr
}

func TestRegionsCachedInRedis(t *testing.T) {
	svc, provider, mr := newTestService(t)
	ctx := context.Background()

	first, err := svc.Regions(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, 1, provider.regionCalls)
	require.True(t, mr.Exists("addressbook:regions"))

	second, err := svc.Regions(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, provider.regionCalls)
}

func TestCacheExpiryRefetches(t *testing.T) {
	svc, provider, mr := newTestService(t)
	ctx := context.Background()

	_, err := svc.Regions(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = svc.Regions(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, provider.regionCalls)
}

func TestDrillDownByPSGCCode(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	provinces, err := svc.Provinces(ctx, "130000000")
	require.NoError(t, err)
	require.Len(t, provinces, 1)

	cities, err := svc.CitiesMunicipalities(ctx, provinces[0].Code)
	require.NoError(t, err)
	require.NotEmpty(t, cities)

	barangays, err := svc.Barangays(ctx, "137404000")
	require.NoError(t, err)
	require.Equal(t, "Batasan Hills", barangays[0].Name)
}

func TestNilCacheStillServes(t *testing.T) {
	provider := &countingProvider{StaticProvider: NewStaticProvider()}
	svc := NewService(provider, nil, time.Hour, nil)

	places, err := svc.Regions(context.Background())
	require.NoError(t, err)
	require.Len(t, places, 2)
}
