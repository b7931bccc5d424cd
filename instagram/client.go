package instagram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const graphBaseURL = "https://graph.facebook.com/v21.0"

// Sentinel errors for the publish flow. The orchestrator matches on these
// to decide what lands in the result's post error.
var (
	ErrContainerCreationFailed = errors.New("media container creation failed")
	ErrProcessingTimeout       = errors.New("media processing timed out")
	ErrProcessingFailed        = errors.New("media processing failed")
	ErrPublishCallFailed       = errors.New("media publish call failed")
)

// apiError is the Graph API's error envelope.
type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("graph api error %d (%s): %s", e.Code, e.Type, e.Message)
}

// Client talks to the Instagram Graph API on behalf of one page-linked
// business account. Account discovery runs once and is cached for the
// client's lifetime.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger

	pageID   string
	igUserID string

	sleep func(context.Context, time.Duration) error
}

// NewClient wraps the access token in an oauth2 transport so every request
// carries it as a bearer credential.
func NewClient(token string, log *zap.Logger) *Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(context.Background(), src)
	httpClient.Timeout = 60 * time.Second

	return &Client{
		baseURL:    graphBaseURL,
		httpClient: httpClient,
		log:        log,
		sleep:      sleepCtx,
	}
}

// ResolveAccount discovers the page and its linked Instagram business
// account via /me/accounts. The first page carrying a linked account wins.
func (c *Client) ResolveAccount(ctx context.Context) (string, error) {
	if c.igUserID != "" {
		return c.igUserID, nil
	}

	var resp struct {
		Data []struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			Instagram *struct {
				ID string `json:"id"`
			} `json:"instagram_business_account"`
		} `json:"data"`
	}
	q := url.Values{"fields": {"id,name,instagram_business_account"}}
	if err := c.get(ctx, "/me/accounts", q, &resp); err != nil {
		return "", fmt.Errorf("list pages: %w", err)
	}

	for _, page := range resp.Data {
		if page.Instagram != nil && page.Instagram.ID != "" {
			c.pageID = page.ID
			c.igUserID = page.Instagram.ID
			c.log.Info("resolved business account",
				zap.String("page", page.Name), zap.String("ig_user_id", c.igUserID))
			return c.igUserID, nil
		}
	}
	return "", errors.New("no page with a linked business account")
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error *apiError `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			return envelope.Error
		}
		return fmt.Errorf("status %d: %.200s", resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
