package yelp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"ramen-dashboard/models"
	"ramen-dashboard/utils"
)

// Fixed search: the price list in services is aligned to exactly this query.
const (
	searchLocation = "los angeles"
	searchTerm     = "ramen"
	searchSortBy   = "review_count"
	searchLimit    = 50
)

// ErrNoBusinesses is returned when the response body has no businesses key,
// which is how Yelp reports auth and quota failures.
var ErrNoBusinesses = errors.New("yelp: response has no businesses")

// Client performs the single business search against Yelp Fusion.
type Client struct {
	httpClient *http.Client
	searchURL  string
	apiKey     string
	logger     *utils.Logger
}

// New creates a Client. The request carries no timeout of its own.
func New(searchURL, apiKey string, logger *utils.Logger) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		searchURL:  searchURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

type searchResponse struct {
	Businesses []*models.RawBusiness `json:"businesses"`
	Total      int                   `json:"total"`
	Error      *apiError             `json:"error"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// SearchURL returns the full request URL with the fixed query parameters.
func (c *Client) SearchURL() (string, error) {
	u, err := url.Parse(c.searchURL)
	if err != nil {
		return "", fmt.Errorf("yelp: parse search url: %w", err)
	}
	params := url.Values{}
	params.Set("location", searchLocation)
	params.Set("term", searchTerm)
	params.Set("sort_by", searchSortBy)
	params.Set("limit", fmt.Sprintf("%d", searchLimit))
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// Search runs the ramen search and returns the businesses in response order.
func (c *Client) Search(ctx context.Context) ([]*models.RawBusiness, error) {
	reqURL, err := c.SearchURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("yelp: build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Info("[yelp] GET %s", reqURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yelp: search request: %w", err)
	}
	defer resp.Body.Close()

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("yelp: decode response (status %s): %w", resp.Status, err)
	}

	if body.Businesses == nil {
		if body.Error != nil {
			return nil, fmt.Errorf("%w (status %s): %s: %s",
				ErrNoBusinesses, resp.Status, body.Error.Code, body.Error.Description)
		}
		return nil, fmt.Errorf("%w (status %s)", ErrNoBusinesses, resp.Status)
	}

	c.logger.Info("[yelp] Received %d businesses (total matches: %d)", len(body.Businesses), body.Total)
	return body.Businesses, nil
}
