// Package trends pulls lightweight trend hints for the script composer
// from style subreddits. Hints are strictly optional: any failure here
// degrades to an empty hint list, never to a pipeline error.
package trends

import (
	"context"
	"time"

	"github.com/vartanbeno/go-reddit/v2/reddit"
	"go.uber.org/zap"

	"reel-pipeline/config"
)

// Scout fetches the currently hot post titles from configured subreddits.
type Scout struct {
	client *reddit.Client
	cfg    config.TrendsConfig
	log    *zap.Logger
}

// NewScout builds a scout. With credentials it uses the script-app flow;
// without, the public read-only client.
func NewScout(creds *config.Credentials, cfg config.TrendsConfig, log *zap.Logger) (*Scout, error) {
	var client *reddit.Client
	var err error

	if creds.RedditID != "" && creds.RedditSecret != "" {
		client, err = reddit.NewClient(reddit.Credentials{
			ID:       creds.RedditID,
			Secret:   creds.RedditSecret,
			Username: creds.RedditUsername,
			Password: creds.RedditPassword,
		})
	} else {
		client, err = reddit.NewReadonlyClient()
	}
	if err != nil {
		return nil, err
	}

	return &Scout{client: client, cfg: cfg, log: log}, nil
}

// Hints returns up to MaxHints hot post titles across the configured
// subreddits. Errors are logged and swallowed; the worst case is no hints.
func (s *Scout) Hints(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var hints []string
	for _, sub := range s.cfg.Subreddits {
		if len(hints) >= s.cfg.MaxHints {
			break
		}

		posts, _, err := s.client.Subreddit.HotPosts(ctx, sub, &reddit.ListOptions{
			Limit: s.cfg.MaxHints,
		})
		if err != nil {
			s.log.Warn("trend scout subreddit failed", zap.String("subreddit", sub), zap.Error(err))
			continue
		}

		for _, post := range posts {
			if post.Title == "" {
				continue
			}
			hints = append(hints, post.Title)
			if len(hints) >= s.cfg.MaxHints {
				break
			}
		}
	}

	return hints
}
