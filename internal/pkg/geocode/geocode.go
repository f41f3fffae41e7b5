package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// UnknownLocation is returned whenever a lookup cannot produce an address.
const UnknownLocation = "Unknown Location"

// Geocoder resolves a coordinate to a human-readable place name. It never fails.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) string
}

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Suburb  string `json:"suburb"`
		County  string `json:"county"`
	} `json:"address"`
}

func (r nominatimResponse) place() string {
	for _, candidate := range []string{
		r.Address.City,
		r.Address.Town,
		r.Address.Village,
		r.Address.Suburb,
		r.Address.County,
		r.DisplayName,
	} {
		if candidate != "" {
			return candidate
		}
	}
	return UnknownLocation
}

// NominatimGeocoder calls a Nominatim-compatible /reverse endpoint.
type NominatimGeocoder struct {
	cfg    Config
	client *http.Client
	cache  Cache
	group  singleflight.Group
}

// NewNominatimGeocoder builds a geocoder. cache may be nil.
func NewNominatimGeocoder(cfg Config, cache Cache) *NominatimGeocoder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "geoattend-backend"
	}
	return &NominatimGeocoder{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
	}
}

// ReverseGeocode implements Geocoder.
func (g *NominatimGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) string {
	key := cacheKey(lat, lng)

	if g.cache != nil {
		if place, ok, err := g.cache.Get(ctx, key); err != nil {
			slog.Warn("geocode cache read failed", "key", key, "error", err)
		} else if ok {
			return place
		}
	}

	v, err, _ := g.group.Do(key, func() (interface{}, error) {
		return g.lookup(ctx, lat, lng)
	})
	if err != nil {
		slog.Warn("reverse geocode failed", "lat", lat, "lng", lng, "error", err)
		return UnknownLocation
	}

	place := v.(string)
	if g.cache != nil && place != UnknownLocation {
		if err := g.cache.Set(ctx, key, place, g.cfg.CacheTTL); err != nil {
			slog.Warn("geocode cache write failed", "key", key, "error", err)
		}
	}
	return place
}

func (g *NominatimGeocoder) lookup(ctx context.Context, lat, lng float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	q := url.Values{}
	q.Set("format", "json")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build reverse geocode request: %w", err)
	}
	req.Header.Set("User-Agent", g.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call reverse geocode endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode endpoint returned status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode reverse geocode response: %w", err)
	}
	return body.place(), nil
}

// cacheKey rounds to 4 decimals (about 11 m) so nearby samples share an entry.
func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("geocode:%.4f:%.4f", lat, lng)
}

// Static returns the same place for every coordinate. Used when geocoding is disabled.
type Static string

func (s Static) ReverseGeocode(context.Context, float64, float64) string {
	if s == "" {
		return UnknownLocation
	}
	return string(s)
}
