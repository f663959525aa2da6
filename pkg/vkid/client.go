package vkid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/volunteerhub/portal-backend/pkg/logger"
)

// Client represents a VK API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new VK API client with the given configuration
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetUser fetches the profile of the account accessToken belongs to and
// checks that it is userID. users.get without user_ids answers for the token owner.
func (c *Client) GetUser(ctx context.Context, accessToken, userID string) (*User, error) {
	if accessToken == "" || userID == "" {
		return nil, ErrInvalidRequest
	}

	params := url.Values{}
	params.Set("fields", "photo_200,email")
	params.Set("access_token", accessToken)
	params.Set("v", APIVersion)

	body, err := c.doRequest(ctx, "users.get", params)
	if err != nil {
		return nil, err
	}

	var resp usersGetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal users.get response: %w", err)
	}

	if resp.Error != nil {
		logger.Warn("VK API error", map[string]interface{}{
			"code":    resp.Error.Code,
			"message": resp.Error.Message,
		})
		return nil, fmt.Errorf("%w: %d %s", ErrAPIError, resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Response) == 0 {
		return nil, ErrUserNotFound
	}

	user := &resp.Response[0]
	if user.IDString() != userID {
		logger.Warn("VK token belongs to another account", map[string]interface{}{
			"claimed_user_id": userID,
			"token_user_id":   user.ID,
		})
		return nil, ErrUserMismatch
	}

	return user, nil
}

// doRequest performs a GET against a VK API method
func (c *Client) doRequest(ctx context.Context, method string, params url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s?%s", c.config.baseURL(), method, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	logger.Debug("VK API request", map[string]interface{}{
		"method": method,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrAPIError, resp.StatusCode)
	}

	return body, nil
}
