package menusource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fdg312/health-hub/internal/menuadapter"
)

// HTTPClient fetches menu and rating data from a kitchen-management service
// over plain JSON HTTP. It implements both MenuFetcher and RatingFetcher.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient returns an HTTPClient pointed at baseURL.
func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: baseURL, httpClient: httpClient}
}

var (
	_ MenuFetcher   = (*HTTPClient)(nil)
	_ RatingFetcher = (*HTTPClient)(nil)
)

func (c *HTTPClient) FetchMenu(ctx context.Context, kitchenID string) ([]menuadapter.MenuItemInput, error) {
	endpoint := fmt.Sprintf("%s/kitchens/%s/menu", c.baseURL, url.PathEscape(kitchenID))
	var out []menuadapter.MenuItemInput
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, fmt.Errorf("menusource: fetch menu for %s: %w", kitchenID, err)
	}
	return out, nil
}

func (c *HTTPClient) FetchRating(ctx context.Context, itemID string) (*menuadapter.Rating, error) {
	endpoint := fmt.Sprintf("%s/items/%s/rating", c.baseURL, url.PathEscape(itemID))
	var out menuadapter.Rating
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, fmt.Errorf("menusource: fetch rating for %s: %w", itemID, err)
	}
	return &out, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
