package uitree

// DemoTree returns the realtime dashboard sample: a two-column grid holding
// two crypto cards, a weather widget and a trending repositories list.
func DemoTree() *Tree {
	return &Tree{
		Root: "main",
		Elements: map[string]*Element{
			"main": {
				Key:      "main",
				Type:     "Grid",
				Props:    P("columns", 2, "gap", "lg"),
				Children: []string{"crypto1", "weather1", "github1", "crypto2"},
			},
			"crypto1": {
				Key:   "crypto1",
				Type:  "CryptoCard",
				Props: P("symbol", "BTC", "dataPath", "/crypto/bitcoin"),
			},
			"weather1": {
				Key:   "weather1",
				Type:  "WeatherWidget",
				Props: P("location", "New York", "dataPath", "/weather/newyork"),
			},
			"github1": {
				Key:   "github1",
				Type:  "TrendingRepos",
				Props: P("language", nil, "dataPath", "/github/trending"),
			},
			"crypto2": {
				Key:   "crypto2",
				Type:  "CryptoCard",
				Props: P("symbol", "ETH", "dataPath", "/crypto/ethereum"),
			},
		},
	}
}
