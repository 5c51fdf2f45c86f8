// Package identity resolves user roles against the external identity provider.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"example.com/lockout/internal/domain"
)

// Client provides minimal interactions with the identity provider's role API.
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

// ResolveRole returns the role registered for the user, or RoleNone when the
// provider does not know them.
func (c *Client) ResolveRole(ctx context.Context, userID string) (domain.Role, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/users/%s/role", c.baseURL, userID), nil)
	if err != nil {
		return domain.RoleNone, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RoleNone, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.RoleNone, nil
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return domain.RoleNone, fmt.Errorf("identity provider error: %s", body)
	}

	var payload struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.RoleNone, err
	}

	switch domain.Role(payload.Role) {
	case domain.RoleEnergyOwner, domain.RoleSupervisor, domain.RoleWorker:
		return domain.Role(payload.Role), nil
	default:
		return domain.RoleNone, nil
	}
}
