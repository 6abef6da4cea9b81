package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
)

// Data REST operations against the provider's PostgREST surface (/rest/v1).
// Requests carry the caller's bearer token so the provider's row-level
// security policies decide what each user may read or write. Row
// authorization is owned by the provider, not by this service.

// SelectRows fetches rows from table matching filters, decoding the response
// array into dest. Filters use PostgREST operator syntax, e.g. {"id": "eq.<uuid>"}.
// order, when non-empty, is a column name to sort ascending by.
func (c *Client) SelectRows(ctx context.Context, bearer, table string, filters map[string]string, order string, dest interface{}) error {
	q := url.Values{}
	q.Set("select", "*")
	for _, col := range sortedKeys(filters) {
		q.Set(col, filters[col])
	}
	if order != "" {
		q.Set("order", order)
	}

	body, status, err := c.doData(ctx, http.MethodGet, table, q, bearer, nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		return dataError(status, body)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: decode rows: %v", ErrUnavailable, err)
	}
	return nil
}

// InsertRow inserts a single row and decodes the returned representation
// (an array of inserted rows) into dest.
func (c *Client) InsertRow(ctx context.Context, bearer, table string, row, dest interface{}) error {
	body, status, err := c.doData(ctx, http.MethodPost, table, nil, bearer, row)
	if err != nil {
		return err
	}
	if status >= 400 {
		return dataError(status, body)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: decode inserted row: %v", ErrUnavailable, err)
	}
	return nil
}

// UpdateRows patches rows matching filters and decodes the returned
// representation into dest. An empty result array means no row matched or the
// provider's row security denied the write.
func (c *Client) UpdateRows(ctx context.Context, bearer, table string, filters map[string]string, patch, dest interface{}) error {
	q := url.Values{}
	for _, col := range sortedKeys(filters) {
		q.Set(col, filters[col])
	}

	body, status, err := c.doData(ctx, http.MethodPatch, table, q, bearer, patch)
	if err != nil {
		return err
	}
	if status >= 400 {
		return dataError(status, body)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: decode updated rows: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) doData(ctx context.Context, method, table string, query url.Values, bearer string, body interface{}) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal row: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + "/rest/v1/" + url.PathEscape(table)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("apikey", c.anonKey)
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	return data, resp.StatusCode, nil
}

// dataError translates a non-2xx data response. 401/403 means the bearer
// token itself was rejected; everything else surfaces the PostgREST message.
func dataError(status int, body []byte) error {
	var er struct {
		Message string `json:"message"`
		Details string `json:"details"`
	}
	_ = json.Unmarshal(body, &er)
	msg := er.Message
	if msg == "" {
		msg = "request rejected"
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: %s (status %d)", ErrInvalidToken, msg, status)
	}
	return fmt.Errorf("%w: %s (status %d)", ErrUnavailable, msg, status)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
