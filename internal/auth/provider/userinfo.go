package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// FetchUserInfo GETs a provider's user-info endpoint with a bearer token
// and decodes the JSON body into a raw attribute map, exactly as the
// provider shaped it. Numbers stay json.Number so numeric ids survive
// intact.
func FetchUserInfo(ctx context.Context, client *http.Client, url, accessToken, name string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s user-info request: %w", name, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s user-info fetch failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s user-info endpoint returned %d", name, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("%s user-info decode failed: %w", name, err)
	}
	return attrs, nil
}
