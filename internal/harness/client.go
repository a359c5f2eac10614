package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client talks to a harness server over HTTP and satisfies the engine's
// runtime channel interface, so a player process can run against the
// emulator exactly as it would against an LMS.
type Client struct {
	baseURL string
	session string
	http    *http.Client
}

func NewClient(baseURL, session string) *Client {
	return &Client{
		baseURL: baseURL,
		session: session,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) endpoint(parts ...string) string {
	u := fmt.Sprintf("%s/api/v1/sessions/%s", c.baseURL, url.PathEscape(c.session))
	for _, part := range parts {
		u += "/" + part
	}
	return u
}

func (c *Client) post(endpoint string, body any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	resp, err := c.http.Post(endpoint, "application/json", reader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("harness returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) Initialize() error {
	return c.post(c.endpoint("initialize"), nil)
}

func (c *Client) GetValue(key string) (string, error) {
	resp, err := c.http.Get(c.endpoint("values", url.PathEscape(key)))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("harness returned status %d", resp.StatusCode)
	}

	var value valueResponse
	if err := json.NewDecoder(resp.Body).Decode(&value); err != nil {
		return "", fmt.Errorf("failed to decode harness response: %w", err)
	}
	return value.Value, nil
}

func (c *Client) SetValue(key, value string) error {
	return c.post(c.endpoint("values"), setValueRequest{Key: key, Value: value})
}

func (c *Client) Commit() error {
	return c.post(c.endpoint("commit"), nil)
}

func (c *Client) Terminate() error {
	return c.post(c.endpoint("terminate"), nil)
}
