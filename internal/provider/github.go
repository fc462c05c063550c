package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultGitHubURL is the GitHub REST API base.
const DefaultGitHubURL = "https://api.github.com"

// DefaultRepoLimit is how many repositories are requested.
const DefaultRepoLimit = 10

// GitHubProvider fetches the most starred repositories, optionally for one
// language.
type GitHubProvider struct {
	BaseURL  string
	Language string
	Token    string
	Limit    int
	Client   *http.Client
}

// Name implements Source.
func (p *GitHubProvider) Name() string { return "github" }

type searchResult struct {
	Items []struct {
		Name        string  `json:"name"`
		FullName    string  `json:"full_name"`
		Description *string `json:"description"`
		Stars       int     `json:"stargazers_count"`
		Language    *string `json:"language"`
		HTMLURL     string  `json:"html_url"`
	} `json:"items"`
}

// Query returns the repository search query.
func (p *GitHubProvider) Query() string {
	if p.Language != "" {
		return "language:" + p.Language + " stars:>1000"
	}
	return "stars:>5000"
}

func (p *GitHubProvider) limit() int {
	if p.Limit <= 0 {
		return DefaultRepoLimit
	}
	return p.Limit
}

// Fetch returns {trending: [{name, fullName, description, stars, language, url}]}.
func (p *GitHubProvider) Fetch(ctx context.Context) (any, error) {
	q := url.Values{}
	q.Set("q", p.Query())
	q.Set("sort", "stars")
	q.Set("order", "desc")
	q.Set("per_page", strconv.Itoa(p.limit()))
	endpoint := strings.TrimRight(p.BaseURL, "/") + "/search/repositories?" + q.Encode()

	header := http.Header{}
	header.Set("Accept", "application/vnd.github.v3+json")
	if p.Token != "" {
		header.Set("Authorization", "Bearer "+p.Token)
	}

	var res searchResult
	if err := getJSON(ctx, p.Client, endpoint, header, &res); err != nil {
		return nil, fmt.Errorf("failed to fetch repositories: %w", err)
	}

	repos := make([]any, 0, len(res.Items))
	for _, item := range res.Items {
		desc := "No description available"
		if item.Description != nil && *item.Description != "" {
			desc = *item.Description
		}
		lang := "Unknown"
		if item.Language != nil && *item.Language != "" {
			lang = *item.Language
		}
		repos = append(repos, repo(item.Name, item.FullName, desc, item.Stars, lang, item.HTMLURL))
	}
	return map[string]any{"trending": repos}, nil
}

// Demo returns a few well-known repositories.
func (p *GitHubProvider) Demo() any {
	return map[string]any{"trending": []any{
		repo("react", "facebook/react", "The library for web and native user interfaces", 228000, "JavaScript", "https://github.com/facebook/react"),
		repo("vue", "vuejs/vue", "Vue.js is a progressive JavaScript framework", 207000, "TypeScript", "https://github.com/vuejs/vue"),
		repo("tensorflow", "tensorflow/tensorflow", "An Open Source Machine Learning Framework", 185000, "Python", "https://github.com/tensorflow/tensorflow"),
	}}
}

func repo(name, fullName, description string, stars int, language, htmlURL string) map[string]any {
	return map[string]any{
		"name":        name,
		"fullName":    fullName,
		"description": description,
		"stars":       stars,
		"language":    language,
		"url":         htmlURL,
	}
}
