package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/steeveross-eng/huntiq-telemetry/internal/config"
	"github.com/steeveross-eng/huntiq-telemetry/internal/dberrors"
	"github.com/steeveross-eng/huntiq-telemetry/internal/models"
	"github.com/steeveross-eng/huntiq-telemetry/internal/resilience"
)

const weatherRequestTimeout = 5 * time.Second

// WeatherProvider supplies the current wind reading consulted by a heading
// session's refresh step (spec.md §4.H step 5).
type WeatherProvider interface {
	CurrentWind(ctx context.Context, lat, lng float64) (models.Wind, error)
}

// HTTPWeatherProvider calls a configured wind-data endpoint. A stub is
// acceptable per spec.md §6 when no provider is configured; StubWeatherProvider
// below is that stub.
type HTTPWeatherProvider struct {
	httpClient *http.Client
	baseURL    string
	breaker    *resilience.Breaker[models.Wind]
}

// NewHTTPWeatherProvider builds a provider against cfg's base URL, guarded
// by its own circuit breaker so a flapping wind endpoint can't stall every
// heading session refresh behind repeated request timeouts.
func NewHTTPWeatherProvider(cfg config.WeatherConfig) *HTTPWeatherProvider {
	return &HTTPWeatherProvider{
		httpClient: &http.Client{Timeout: weatherRequestTimeout},
		baseURL:    cfg.ProviderBaseURL,
		breaker:    resilience.New[models.Wind]("weather-provider"),
	}
}

type windResponse struct {
	DirectionDeg float64 `json:"direction_deg"`
	SpeedKmh     float64 `json:"speed_kmh"`
	GustsKmh     float64 `json:"gusts_kmh"`
}

func (p *HTTPWeatherProvider) CurrentWind(ctx context.Context, lat, lng float64) (models.Wind, error) {
	return p.breaker.Call(ctx, weatherRequestTimeout, func(ctx context.Context) (models.Wind, error) {
		return p.fetchWind(ctx, lat, lng)
	})
}

func (p *HTTPWeatherProvider) fetchWind(ctx context.Context, lat, lng float64) (models.Wind, error) {
	url := fmt.Sprintf("%s/wind?lat=%f&lng=%f", p.baseURL, lat, lng)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Wind{}, dberrors.TransientFailure("build wind request: %v", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.Wind{}, dberrors.TransientFailure("wind provider: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Wind{}, dberrors.TransientFailure("wind provider returned %d", resp.StatusCode)
	}

	var wr windResponse
	if err := json.NewDecoder(resp.Body).Decode(&wr); err != nil {
		return models.Wind{}, dberrors.TransientFailure("decode wind response: %v", err)
	}

	return models.Wind{
		DirectionDeg: wr.DirectionDeg,
		SpeedKmh:     wr.SpeedKmh,
		GustsKmh:     wr.GustsKmh,
		Favorable:    wr.SpeedKmh < 25 && wr.GustsKmh < 40,
	}, nil
}

// StubWeatherProvider always reports calm, favorable wind. It is the
// default when WEATHER_PROVIDER_BASE_URL is unset, per spec.md §6 ("a stub
// is acceptable when unavailable").
type StubWeatherProvider struct{}

// NewStubWeatherProvider builds the always-favorable stub provider.
func NewStubWeatherProvider() *StubWeatherProvider { return &StubWeatherProvider{} }

func (StubWeatherProvider) CurrentWind(ctx context.Context, lat, lng float64) (models.Wind, error) {
	return models.Wind{DirectionDeg: 0, SpeedKmh: 5, GustsKmh: 8, Favorable: true}, nil
}
