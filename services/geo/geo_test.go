package geo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var nairobi = Point{Lat: -1.286389, Lon: 36.817223}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0.0, Distance(nairobi, nairobi))

	// One degree of latitude along a meridian.
	d := Distance(Point{Lat: 0, Lon: 0}, Point{Lat: 1, Lon: 0})
	assert.InDelta(t, 111.195, d, 0.01)

	mombasa := Point{Lat: -4.0435, Lon: 39.6682}
	ab := Distance(nairobi, mombasa)
	assert.InDelta(t, 440, ab, 5)
	assert.Equal(t, ab, Distance(mombasa, nairobi))
}

func TestToward(t *testing.T) {
	dest := Point{Lat: -1.30, Lon: 36.80}
	mid := Toward(nairobi, dest, 0.5)
	assert.Less(t, Distance(mid, dest), Distance(nairobi, dest))
	assert.Equal(t, dest, Toward(nairobi, dest, 1.5))
	assert.Equal(t, nairobi, Toward(nairobi, dest, 0))
}

func TestResolve(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	l := NewLocator(nairobi, zap.New(core))

	lat, lon := 19.076, 72.8777
	p, src := l.Resolve(&lat, &lon)
	assert.Equal(t, Point{Lat: lat, Lon: lon}, p)
	assert.Equal(t, SourceClient, src)
	assert.Zero(t, logs.Len())

	p, src = l.Resolve(nil, &lon)
	assert.Equal(t, nairobi, p)
	assert.Equal(t, SourceFallback, src)

	bad := 123.0
	p, src = l.Resolve(&bad, &lon)
	assert.Equal(t, nairobi, p)
	assert.Equal(t, SourceFallback, src)

	nan := math.NaN()
	_, src = l.Resolve(&nan, &lon)
	assert.Equal(t, SourceFallback, src)

	assert.Equal(t, 3, logs.Len())
}

func TestIPLocator_LookupAndCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/41.90.0.1/json/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ip":"41.90.0.1","city":"Nairobi","country_name":"Kenya","latitude":-1.28,"longitude":36.82}`))
	}))
	defer srv.Close()

	l := NewIPLocator(srv.URL, nil)
	geo := l.Lookup(context.Background(), "41.90.0.1")
	require.True(t, geo.Known())
	assert.Equal(t, "Kenya", geo.Country)
	assert.Equal(t, Point{Lat: -1.28, Lon: 36.82}, geo.Point())

	l.Lookup(context.Background(), "41.90.0.1")
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestIPLocator_FallsBackToUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	l := NewIPLocator(srv.URL, nil)
	geo := l.Lookup(context.Background(), "41.90.0.2")
	assert.Equal(t, UnknownCountry, geo.Country)
	assert.False(t, geo.Known())

	private := l.Lookup(context.Background(), "192.168.1.10")
	assert.Equal(t, UnknownCountry, private.Country)
	assert.False(t, l.Lookup(context.Background(), "").Known())
}
