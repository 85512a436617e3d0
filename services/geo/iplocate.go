package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	UnknownCountry = "Unknown"
	defaultIPAPI   = "https://ipapi.co"
)

// IPLocation is the approximate position of a client IP.
type IPLocation struct {
	IP          string  `json:"ip"`
	City        string  `json:"city"`
	Region      string  `json:"region"`
	Country     string  `json:"country_name"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Timezone    string  `json:"timezone"`
}

// Known reports whether the lookup produced a position.
func (g *IPLocation) Known() bool {
	return g != nil && g.Country != UnknownCountry && (g.Latitude != 0 || g.Longitude != 0)
}

func (g *IPLocation) Point() Point {
	return Point{Lat: g.Latitude, Lon: g.Longitude}
}

// IPLocator looks up IP positions through ipapi.co and caches them in process.
// Lookups never fail; anything unresolvable comes back as Unknown.
type IPLocator struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	cache map[string]*IPLocation
}

func NewIPLocator(baseURL string, logger *zap.Logger) *IPLocator {
	if baseURL == "" {
		baseURL = defaultIPAPI
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IPLocator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		logger:  logger,
		cache:   make(map[string]*IPLocation),
	}
}

func unknown(ip string) *IPLocation {
	return &IPLocation{IP: ip, Country: UnknownCountry}
}

func (l *IPLocator) Lookup(ctx context.Context, ip string) *IPLocation {
	if ip == "" {
		return unknown(ip)
	}
	l.mu.RLock()
	if geo, ok := l.cache[ip]; ok {
		l.mu.RUnlock()
		return geo
	}
	l.mu.RUnlock()

	if isPrivateIP(ip) {
		l.logger.Debug("client IP is private; using unknown location", zap.String("ip", ip))
		geo := unknown(ip)
		l.store(ip, geo)
		return geo
	}

	geo, err := l.fetch(ctx, ip)
	if err != nil {
		l.logger.Warn("IP geolocation failed", zap.String("ip", ip), zap.Error(err))
		return unknown(ip)
	}
	if geo.Country == "" {
		geo.Country = UnknownCountry
	}
	l.store(ip, geo)
	return geo
}

func (l *IPLocator) fetch(ctx context.Context, ip string) (*IPLocation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", l.baseURL, ip), nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}
	var geo IPLocation
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	return &geo, nil
}

func (l *IPLocator) store(ip string, geo *IPLocation) {
	l.mu.Lock()
	l.cache[ip] = geo
	l.mu.Unlock()
}

func isPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast()
}
