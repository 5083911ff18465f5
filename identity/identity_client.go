package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"
)

// Member is the club membership record returned by the identity service.
type Member struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Roles       []string `json:"roles"`
}

// User is the resolved caller attached to each authenticated request.
type User struct {
	ID          string
	DisplayName string
	Admin       bool
}

// Provider verifies an access token against the club's identity service.
type Provider interface {
	VerifyToken(ctx context.Context, accessToken string) (*Member, error)
}

// Client talks to the club's identity service over HTTP. Verified tokens are
// cached briefly so a burst of requests does not hammer the service.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
}

func NewClient(baseURL string) *Client {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	return &Client{
		baseURL: baseURL,
		client:  client,
		cache:   cache.New(1*time.Minute, 5*time.Minute),
	}
}

func (c *Client) VerifyToken(ctx context.Context, accessToken string) (*Member, error) {
	cachedMember, found := c.cache.Get(accessToken)

	if found {
		return cachedMember.(*Member), nil
	}

	memberURL, err := c.getURL("members", "@me")

	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", memberURL, http.NoBody)

	if err != nil {
		return nil, fmt.Errorf("failed create new request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	res, err := c.client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	defer res.Body.Close()

	bodyBytes, readErr := io.ReadAll(res.Body)

	if res.StatusCode != http.StatusOK {
		if readErr != nil {
			return nil, fmt.Errorf("request failed with status %d; also failed reading body: %w", res.StatusCode, readErr)
		}
		return nil, fmt.Errorf("request failed with status '%v' and body:\n%v", res.StatusCode, string(bodyBytes))
	}

	if readErr != nil {
		return nil, fmt.Errorf("failed to read body: %w", readErr)
	}

	var member = Member{}
	err = json.Unmarshal(bodyBytes, &member)

	if err != nil {
		return nil, fmt.Errorf("failed reading body: %w", err)
	}

	c.cache.Set(accessToken, &member, cache.DefaultExpiration)

	return &member, nil
}

func (c *Client) getURL(elem ...string) (string, error) {
	clientURL, err := url.JoinPath(c.baseURL, elem...)

	if err != nil {
		return "", fmt.Errorf("failed to build url: %w", err)
	}

	return clientURL, nil
}

// UserFromMember resolves the request user, marking admins by role name.
func UserFromMember(m *Member, adminRole string) User {
	return User{
		ID:          m.ID,
		DisplayName: m.DisplayName,
		Admin:       slices.Contains(m.Roles, adminRole),
	}
}
