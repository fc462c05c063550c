package provider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// DefaultWeatherURL is the Open-Meteo API base.
const DefaultWeatherURL = "https://api.open-meteo.com/v1"

// City is a named location with coordinates.
type City struct {
	Name string
	Lat  float64
	Lon  float64
}

// cities is keyed by the data key a city's reading is stored under.
var cities = map[string]City{
	"newyork":      {Name: "New York", Lat: 40.7128, Lon: -74.006},
	"london":       {Name: "London", Lat: 51.5074, Lon: -0.1278},
	"tokyo":        {Name: "Tokyo", Lat: 35.6762, Lon: 139.6503},
	"sanfrancisco": {Name: "San Francisco", Lat: 37.7749, Lon: -122.4194},
	"mumbai":       {Name: "Mumbai", Lat: 19.076, Lon: 72.8777},
}

// CityKey normalizes a city name ("new-york", "New York") to its data key.
func CityKey(name string) string {
	r := strings.NewReplacer("-", "", "_", "", " ", "")
	return strings.ToLower(r.Replace(name))
}

// LookupCity returns the city for a name in any accepted spelling.
func LookupCity(name string) (City, bool) {
	c, ok := cities[CityKey(name)]
	return c, ok
}

// CityKeys returns the known city keys, sorted.
func CityKeys() []string {
	keys := make([]string, 0, len(cities))
	for k := range cities {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WeatherProvider fetches current conditions from Open-Meteo.
// Temperatures are in Celsius; unknown cities are skipped.
type WeatherProvider struct {
	BaseURL string
	Cities  []string
	Client  *http.Client
}

// Name implements Source.
func (p *WeatherProvider) Name() string { return "weather" }

type forecast struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Current struct {
		Humidity *float64 `json:"relative_humidity_2m"`
	} `json:"current"`
}

// defaultHumidity is reported when the response has no humidity.
const defaultHumidity = 65

// Fetch returns {<city key>: {temp, condition, humidity, windSpeed}}.
func (p *WeatherProvider) Fetch(ctx context.Context) (any, error) {
	out := make(map[string]any, len(p.Cities))
	for _, name := range p.Cities {
		key := CityKey(name)
		city, ok := cities[key]
		if !ok {
			continue
		}

		q := url.Values{}
		q.Set("latitude", strconv.FormatFloat(city.Lat, 'f', -1, 64))
		q.Set("longitude", strconv.FormatFloat(city.Lon, 'f', -1, 64))
		q.Set("current_weather", "true")
		q.Set("current", "relative_humidity_2m")
		endpoint := strings.TrimRight(p.BaseURL, "/") + "/forecast?" + q.Encode()

		var f forecast
		if err := getJSON(ctx, p.Client, endpoint, nil, &f); err != nil {
			return nil, fmt.Errorf("failed to fetch weather for %s: %w", city.Name, err)
		}

		humidity := float64(defaultHumidity)
		if f.Current.Humidity != nil {
			humidity = *f.Current.Humidity
		}
		out[key] = reading(
			math.Round(f.CurrentWeather.Temperature),
			Condition(f.CurrentWeather.WeatherCode),
			math.Round(humidity),
			math.Round(f.CurrentWeather.WindSpeed),
		)
	}
	return out, nil
}

// Demo returns the same mild reading for every known city.
func (p *WeatherProvider) Demo() any {
	out := make(map[string]any, len(p.Cities))
	for _, name := range p.Cities {
		key := CityKey(name)
		if _, ok := cities[key]; ok {
			out[key] = reading(22, "Partly Cloudy", defaultHumidity, 13)
		}
	}
	return out
}

func reading(temp float64, condition string, humidity, wind float64) map[string]any {
	return map[string]any{
		"temp":      temp,
		"condition": condition,
		"humidity":  humidity,
		"windSpeed": wind,
	}
}

// Condition maps a WMO weather code to a short description.
func Condition(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 3:
		return "Partly Cloudy"
	case code <= 48:
		return "Foggy"
	case code <= 67:
		return "Rainy"
	case code <= 77:
		return "Snowy"
	case code <= 82:
		return "Showers"
	default:
		return "Stormy"
	}
}
