// Package vault implements a connector for a password-manager style web API.
// It fetches the caller's items from the upstream service, caches them in the
// session, and exposes two tools: one that lists items and one that performs
// lexical search over them.
package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/toolbridge/connectorkit/connector"
	"github.com/toolbridge/connectorkit/internal/errors"
	"github.com/toolbridge/connectorkit/model"
	"github.com/toolbridge/connectorkit/search"
)

const (
	// ConnectorName is the registry name of this connector.
	ConnectorName = "vault"

	// credentialAPIToken is the bearer token for the upstream API.
	credentialAPIToken = "api_token"

	// itemsCacheKey is the session cache key for the fetched item list.
	itemsCacheKey = "vault:items"

	// itemsPerPage is the page size requested from the upstream API.
	itemsPerPage = 100

	// maxPages bounds pagination so a misbehaving upstream cannot spin the
	// handler forever.
	maxPages = 100
)

// New builds the vault connector against the given upstream base URL.
func New(baseURL string) *connector.Connector {
	client := &upstreamClient{baseURL: strings.TrimRight(baseURL, "/")}

	return &connector.Connector{
		Name:        ConnectorName,
		Description: "Access items stored in the vault password manager",
		Credentials: []connector.CredentialField{
			{Key: credentialAPIToken, Label: "API Token", Secret: true, Required: true},
		},
		Tools: []connector.Tool{
			{
				Name:        "list_items",
				Description: "List all items in the vault",
				InputSchema: map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
				Handler: client.handleListItems,
			},
			{
				Name:        "search_items",
				Description: "Search vault items by a free-text query",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"query": map[string]interface{}{
							"type":        "string",
							"description": "Free-text query matched against item titles and content",
						},
					},
					"required": []interface{}{"query"},
				},
				Handler: client.handleSearchItems,
			},
		},
	}
}

type upstreamClient struct {
	baseURL string
}

type itemsPage struct {
	Items   []model.Record `json:"items"`
	HasMore bool           `json:"has_more"`
}

// fetchItems pulls every item page from the upstream API.
func (c *upstreamClient) fetchItems(ctx context.Context, httpClient *http.Client, token string) ([]model.Record, error) {
	var all []model.Record

	for page := 1; page <= maxPages; page++ {
		url := fmt.Sprintf("%s/v1/items?page=%d&per_page=%d", c.baseURL, page, itemsPerPage)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("building items request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching items page %d: %w", page, err)
		}

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("upstream returned status %d for items page %d", resp.StatusCode, page)
		}

		var body itemsPage
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding items page %d: %w", page, err)
		}

		all = append(all, body.Items...)
		if !body.HasMore {
			return all, nil
		}
	}

	log.Printf("Warning: vault pagination stopped after %d pages; result may be truncated", maxPages)
	return all, nil
}

// loadItems returns the session-cached item list, fetching from upstream on a
// cache miss. Sessionless calls always fetch.
func (c *upstreamClient) loadItems(ctx context.Context, call connector.Call) ([]model.Record, error) {
	if call.Session != nil {
		if cached, ok := call.Session.CacheGet(itemsCacheKey); ok {
			if items, ok := cached.([]model.Record); ok {
				return items, nil
			}
		}
	}

	items, err := c.fetchItems(ctx, call.HTTPClient, call.Credentials[credentialAPIToken])
	if err != nil {
		return nil, err
	}

	if call.Session != nil {
		call.Session.CachePut(itemsCacheKey, items)
	}
	return items, nil
}

func (c *upstreamClient) handleListItems(ctx context.Context, call connector.Call) (string, error) {
	items, err := c.loadItems(ctx, call)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "The vault is empty.", nil
	}
	return formatItems(items), nil
}

func (c *upstreamClient) handleSearchItems(ctx context.Context, call connector.Call) (string, error) {
	query := strings.TrimSpace(call.StringArg("query", ""))
	if query == "" {
		return "", errors.NewValidationError("query", "must not be empty")
	}

	items, err := c.loadItems(ctx, call)
	if err != nil {
		return "", err
	}

	idx, err := search.CreateIndex(items)
	if err != nil {
		return "", fmt.Errorf("indexing vault items: %w", err)
	}

	hits := idx.Search(query)
	if len(hits) == 0 {
		return fmt.Sprintf("No items matched '%s'.", query), nil
	}

	records := make([]model.Record, len(hits))
	for i, hit := range hits {
		records[i] = hit.Item
	}
	return formatItems(records), nil
}

// formatItems renders records as a numbered list the agent can read back.
func formatItems(items []model.Record) string {
	var sb strings.Builder
	for i, item := range items {
		title, ok := item.GetTitle()
		if !ok || title == "" {
			title = "Untitled"
		}
		category, ok := item.GetCategory()
		if !ok || category == "" {
			category = "Unknown"
		}
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, title, category)
	}
	return strings.TrimRight(sb.String(), "\n")
}
