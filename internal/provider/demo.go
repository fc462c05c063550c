package provider

// DemoData returns the initial data for uitree.DemoTree: quotes for the two
// coins it shows, New York weather and the demo repository list.
func DemoData() map[string]any {
	return map[string]any{
		"crypto":  (&CryptoProvider{Coins: []string{"bitcoin", "ethereum"}}).Demo(),
		"weather": (&WeatherProvider{Cities: []string{"newyork"}}).Demo(),
		"github":  (&GitHubProvider{}).Demo(),
	}
}
