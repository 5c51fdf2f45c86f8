// Package lockers talks to the registry owning physical locker/totem state.
package lockers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Status values reported by the locker registry.
const (
	StatusAvailable   = "available"
	StatusOccupied    = "occupied"
	StatusOpen        = "open"
	StatusMaintenance = "maintenance"
)

// Client provides minimal interactions with the locker registry API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client with sane defaults.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Occupy marks the locker occupied by the activity and records the equipment
// physically stored in it.
func (c *Client) Occupy(ctx context.Context, lockerID, activityID string, equipmentRefs []string) error {
	body, err := json.Marshal(map[string]interface{}{
		"activity_id":    activityID,
		"equipment_refs": equipmentRefs,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/v1/lockers/%s/occupy", c.baseURL, lockerID), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.expectSuccess(req)
}

// Release marks the locker available again, detaching the activity and
// clearing its stored equipment list.
func (c *Client) Release(ctx context.Context, lockerID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/v1/lockers/%s/release", c.baseURL, lockerID), nil)
	if err != nil {
		return err
	}
	return c.expectSuccess(req)
}

// Available reports whether the locker can take a new binding. Occupied and
// maintenance lockers cannot.
func (c *Client) Available(ctx context.Context, lockerID string) (bool, error) {
	status, err := c.Status(ctx, lockerID)
	if err != nil {
		return false, err
	}
	switch status {
	case StatusAvailable, StatusOpen:
		return true, nil
	}
	return false, nil
}

// Status reports the registry's view of the locker.
func (c *Client) Status(ctx context.Context, lockerID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/lockers/%s", c.baseURL, lockerID), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("locker registry error: %s", body)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	return payload.Status, nil
}

func (c *Client) expectSuccess(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("locker registry error: %s", body)
	}
	return nil
}
