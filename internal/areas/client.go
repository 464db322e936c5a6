// Package areas talks to the external area-data service. It is a
// secondary source: every call degrades to a static dataset instead of
// failing.
package areas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"time"
)

// Catalog maps an area name to its sub-areas (societies) in display order.
type Catalog map[string][]string

// Names returns the area names sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type AreaDetail struct {
	Area      string   `json:"area"`
	Societies []string `json:"societies"`
	Status    string   `json:"status"`
}

type BaseInfo struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

// FallbackCatalog is served when the area list cannot be fetched.
func FallbackCatalog() Catalog {
	return Catalog{
		"Alkapuri":   {"Society 1", "Society 2", "Society 3"},
		"Manjalpur":  {"Society A", "Society B"},
		"Sayajigunj": {"Residential Complex", "Apartments"},
		"Wadi":       {"Colony 1", "Colony 2", "Colony 3", "Colony 4"},
	}
}

// FallbackArea is served when a single area cannot be fetched.
func FallbackArea(name string) AreaDetail {
	return AreaDetail{
		Area:      name,
		Societies: []string{"Society A", "Society B", "Society C"},
		Status:    "Available",
	}
}

// FallbackBaseInfo is served when the service root cannot be reached.
func FallbackBaseInfo() BaseInfo {
	return BaseInfo{Message: "SWMS Area API Service", Status: "Available", Version: "1.0.0"}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

// NewClient creates an area API client. timeout bounds every request;
// cacheTTL of zero disables caching.
func NewClient(baseURL string, timeout, cacheTTL time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		cache: NewCache(cacheTTL),
	}
}

// Close releases the cache's background cleanup.
func (c *Client) Close() {
	c.cache.Close()
}

func (c *Client) CacheStats() map[string]interface{} {
	return c.cache.Stats()
}

// Areas returns the area catalog, or FallbackCatalog on any failure.
func (c *Client) Areas(ctx context.Context) Catalog {
	if cached, ok := c.cache.Get("areas"); ok {
		return cached.(Catalog)
	}

	log.Printf("🗺️  Fetching areas from area API...")
	data, err := c.get(ctx, "/api/areas")
	if err == nil {
		var catalog Catalog
		if catalog, err = parseCatalog(data); err == nil {
			log.Printf("✅ Received %d areas from area API", len(catalog))
			c.cache.Set("areas", catalog)
			return catalog
		}
	}

	log.Printf("⚠️  Failed to fetch areas: %v - using fallback areas data", err)
	return FallbackCatalog()
}

// Area returns one area's sub-areas, or FallbackArea on any failure.
func (c *Client) Area(ctx context.Context, name string) AreaDetail {
	key := "area:" + name
	if cached, ok := c.cache.Get(key); ok {
		return cached.(AreaDetail)
	}

	log.Printf("🗺️  Fetching area data for: %s", name)
	data, err := c.get(ctx, "/api/areas/"+url.PathEscape(name))
	if err == nil {
		var detail AreaDetail
		if detail, err = parseArea(data, name); err == nil {
			c.cache.Set(key, detail)
			return detail
		}
	}

	log.Printf("⚠️  Failed to fetch area %s: %v - using fallback data", name, err)
	return FallbackArea(name)
}

// BaseInfo returns the service banner, or FallbackBaseInfo on any failure.
func (c *Client) BaseInfo(ctx context.Context) BaseInfo {
	data, err := c.get(ctx, "/")
	if err == nil {
		var info BaseInfo
		if err = json.Unmarshal(data, &info); err == nil {
			return info
		}
	}

	log.Printf("⚠️  Failed to fetch area API info: %v - using fallback", err)
	return FallbackBaseInfo()
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call area API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("area API returned status %d", resp.StatusCode)
	}
	return body, nil
}

// parseCatalog accepts {"vadodara_societies_by_area": {...}}, a bare
// area-to-list mapping, {"areas": [...]} or a flat list. List entries may
// be names or {"name"|"area", "societies"} objects.
func parseCatalog(data []byte) (Catalog, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty area list")
	}

	if data[0] == '[' {
		return parseAreaList(data)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse areas: %w", err)
	}
	if inner, ok := doc["vadodara_societies_by_area"]; ok {
		return parseCatalog(inner)
	}
	if inner, ok := doc["areas"]; ok {
		return parseCatalog(inner)
	}

	catalog := make(Catalog, len(doc))
	for name, raw := range doc {
		var societies []string
		if err := json.Unmarshal(raw, &societies); err != nil {
			return nil, fmt.Errorf("unexpected sub-area list for %s: %w", name, err)
		}
		catalog[name] = societies
	}
	return catalog, nil
}

func parseAreaList(data []byte) (Catalog, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse area list: %w", err)
	}

	catalog := make(Catalog, len(items))
	for _, item := range items {
		var name string
		if err := json.Unmarshal(item, &name); err == nil {
			catalog[name] = nil
			continue
		}
		var obj struct {
			Name      string   `json:"name"`
			Area      string   `json:"area"`
			Societies []string `json:"societies"`
		}
		if err := json.Unmarshal(item, &obj); err != nil {
			return nil, fmt.Errorf("unexpected area entry: %w", err)
		}
		if obj.Name == "" {
			obj.Name = obj.Area
		}
		if obj.Name != "" {
			catalog[obj.Name] = obj.Societies
		}
	}
	return catalog, nil
}

func parseArea(data []byte, name string) (AreaDetail, error) {
	var detail AreaDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return AreaDetail{}, fmt.Errorf("failed to parse area %s: %w", name, err)
	}
	if detail.Area == "" {
		detail.Area = name
	}
	return detail, nil
}
