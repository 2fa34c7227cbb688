package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// DefaultTimeout is the default per-request timeout for CRM calls.
var DefaultTimeout = 30 * time.Second

// Client talks to a Bitrix-style CRM REST endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the given webhook base URL.
// A zero timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// apiError is the error envelope the CRM returns alongside (or instead of)
// a result. Bitrix reports errors both via non-2xx statuses and via a 200
// body carrying an error code, so both paths are checked.
type apiError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *apiError) message() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Code
}

// ListTypes fetches the available entity types via crm.type.list.
func (c *Client) ListTypes(ctx context.Context) ([]EntityType, error) {
	var out struct {
		Result struct {
			Types []EntityType `json:"types"`
		} `json:"result"`
	}
	if err := c.get(ctx, "crm.type.list", nil, &out); err != nil {
		return nil, fmt.Errorf("list entity types: %w", err)
	}
	return out.Result.Types, nil
}

// wireField is the crm.item.fields shape for a single field. Enum items use
// upper-case ID/VALUE keys, and IDs may arrive as numbers or strings.
type wireField struct {
	Title      string    `json:"title"`
	Type       FieldType `json:"type"`
	IsRequired bool      `json:"isRequired"`
	Items      []struct {
		ID    json.Number `json:"ID"`
		Value string      `json:"VALUE"`
	} `json:"items"`
}

// ListFields fetches the field definitions for one entity type.
// The wire format keys fields by ID in a JSON object, so the returned
// slice is sorted by field ID for deterministic ordering.
func (c *Client) ListFields(ctx context.Context, entityTypeID int) ([]FieldDefinition, error) {
	var out struct {
		Result struct {
			Fields map[string]wireField `json:"fields"`
		} `json:"result"`
	}
	params := url.Values{"entityTypeId": {fmt.Sprint(entityTypeID)}}
	if err := c.get(ctx, "crm.item.fields", params, &out); err != nil {
		return nil, fmt.Errorf("list fields for entity type %d: %w", entityTypeID, err)
	}

	fields := make([]FieldDefinition, 0, len(out.Result.Fields))
	for id, wf := range out.Result.Fields {
		def := FieldDefinition{
			ID:       id,
			Title:    wf.Title,
			Type:     wf.Type,
			Required: wf.IsRequired,
		}
		if wf.Type == FieldEnumeration {
			for _, item := range wf.Items {
				def.EnumOptions = append(def.EnumOptions, EnumOption{
					ID:    item.ID.String(),
					Value: item.Value,
				})
			}
		}
		fields = append(fields, def)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].ID < fields[j].ID })
	return fields, nil
}

// AddItem creates one item via crm.item.add and returns the new item ID.
func (c *Client) AddItem(ctx context.Context, entityTypeID int, fields map[string]any) (int64, error) {
	body, err := json.Marshal(map[string]any{"fields": fields})
	if err != nil {
		return 0, fmt.Errorf("encode create request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/crm.item.add?entityTypeId=%d", c.baseURL, entityTypeID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Result struct {
			Item struct {
				ID int64 `json:"id"`
			} `json:"item"`
		} `json:"result"`
	}
	if err := c.do(req, &out); err != nil {
		return 0, err
	}
	return out.Result.Item.ID, nil
}

// get issues a GET to <base>/<method>?<params> and decodes the result.
func (c *Client) get(ctx context.Context, method string, params url.Values, out any) error {
	endpoint := c.baseURL + "/" + method
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// do executes the request and decodes the body into out, surfacing the
// CRM's error envelope when present.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		return fmt.Errorf("crm error: %s", apiErr.message())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("crm returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
