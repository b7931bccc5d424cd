package instagram

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// AccountInfo is the profile summary for the linked business account.
type AccountInfo struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Followers int    `json:"followers_count"`
	MediaCnt  int    `json:"media_count"`
}

// Account fetches the profile summary for the linked business account.
func (c *Client) Account(ctx context.Context) (*AccountInfo, error) {
	igID, err := c.ResolveAccount(ctx)
	if err != nil {
		return nil, err
	}

	info := &AccountInfo{}
	q := url.Values{"fields": {"id,username,followers_count,media_count"}}
	if err := c.get(ctx, "/"+igID, q, info); err != nil {
		return nil, fmt.Errorf("account info: %w", err)
	}
	return info, nil
}

// PublishImage posts a single image. Image containers process synchronously,
// so there is no poll phase.
func (c *Client) PublishImage(ctx context.Context, imageURL, caption string) (string, error) {
	igID, err := c.ResolveAccount(ctx)
	if err != nil {
		return "", err
	}

	form := url.Values{
		"image_url": {imageURL},
		"caption":   {caption},
	}
	var container struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/"+igID+"/media", form, &container); err != nil {
		return "", fmt.Errorf("%w: %v", ErrContainerCreationFailed, err)
	}
	return c.publish(ctx, igID, container.ID)
}

// PublishCarousel posts up to ten images as one swipeable post. Each image
// gets its own child container before the carousel container ties them
// together.
func (c *Client) PublishCarousel(ctx context.Context, imageURLs []string, caption string) (string, error) {
	if len(imageURLs) < 2 {
		return "", errors.New("carousel needs at least two images")
	}
	if len(imageURLs) > 10 {
		imageURLs = imageURLs[:10]
	}

	igID, err := c.ResolveAccount(ctx)
	if err != nil {
		return "", err
	}

	children := make([]string, 0, len(imageURLs))
	for _, img := range imageURLs {
		form := url.Values{
			"image_url":        {img},
			"is_carousel_item": {"true"},
		}
		var child struct {
			ID string `json:"id"`
		}
		if err := c.postForm(ctx, "/"+igID+"/media", form, &child); err != nil {
			return "", fmt.Errorf("%w: child: %v", ErrContainerCreationFailed, err)
		}
		children = append(children, child.ID)
	}

	form := url.Values{
		"media_type": {"CAROUSEL"},
		"caption":    {caption},
	}
	for _, id := range children {
		form.Add("children", id)
	}
	var container struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/"+igID+"/media", form, &container); err != nil {
		return "", fmt.Errorf("%w: carousel: %v", ErrContainerCreationFailed, err)
	}
	return c.publish(ctx, igID, container.ID)
}

// ExchangeToken trades a short-lived user token for a long-lived one.
func (c *Client) ExchangeToken(ctx context.Context, appID, appSecret, shortToken string) (string, error) {
	q := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {appID},
		"client_secret":     {appSecret},
		"fb_exchange_token": {shortToken},
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := c.get(ctx, "/oauth/access_token", q, &resp); err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	if resp.AccessToken == "" {
		return "", errors.New("token exchange returned no token")
	}
	return resp.AccessToken, nil
}
