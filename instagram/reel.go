package instagram

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

// PublishReel runs the three-step reel flow: create a media container from
// the hosted video URL, poll until remote processing finishes, then publish.
// Processing that never reaches FINISHED within the poll budget aborts
// without a publish attempt.
func (c *Client) PublishReel(ctx context.Context, cfg config.PublishConfig, videoURL, caption string) (string, error) {
	igID, err := c.ResolveAccount(ctx)
	if err != nil {
		return "", err
	}

	job, err := c.createReelContainer(ctx, igID, videoURL, caption)
	if err != nil {
		return "", err
	}
	c.log.Info("media container created", zap.String("container_id", job.ContainerID))

	if err := c.awaitProcessing(ctx, cfg, job); err != nil {
		return "", err
	}

	mediaID, err := c.publish(ctx, igID, job.ContainerID)
	if err != nil {
		return "", err
	}
	c.log.Info("reel published", zap.String("media_id", mediaID))
	return mediaID, nil
}

func (c *Client) createReelContainer(ctx context.Context, igID, videoURL, caption string) (*types.PublishJob, error) {
	form := url.Values{
		"media_type":    {"REELS"},
		"video_url":     {videoURL},
		"caption":       {caption},
		"share_to_feed": {"true"},
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/"+igID+"/media", form, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContainerCreationFailed, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: empty container id", ErrContainerCreationFailed)
	}
	return &types.PublishJob{ContainerID: resp.ID, Status: types.StatusInProgress}, nil
}

// awaitProcessing polls the container status at a fixed cadence. A failed
// status read counts as an attempt but does not abort the wait; the remote
// side may still be processing.
func (c *Client) awaitProcessing(ctx context.Context, cfg config.PublishConfig, job *types.PublishJob) error {
	for job.Attempts < cfg.MaxPolls {
		if err := c.sleep(ctx, cfg.PollInterval()); err != nil {
			return err
		}
		job.Attempts++

		status, err := c.containerStatus(ctx, job.ContainerID)
		if err != nil {
			c.log.Warn("container status read failed",
				zap.Int("attempt", job.Attempts), zap.Error(err))
			continue
		}
		job.Status = status

		switch status {
		case types.StatusFinished:
			return nil
		case types.StatusError:
			return fmt.Errorf("%w: container %s", ErrProcessingFailed, job.ContainerID)
		}
	}
	return fmt.Errorf("%w: container %s still %s after %d polls",
		ErrProcessingTimeout, job.ContainerID, job.Status, job.Attempts)
}

func (c *Client) containerStatus(ctx context.Context, containerID string) (types.ContainerStatus, error) {
	var resp struct {
		StatusCode string `json:"status_code"`
	}
	q := url.Values{"fields": {"status_code"}}
	if err := c.get(ctx, "/"+containerID, q, &resp); err != nil {
		return "", err
	}
	return types.ContainerStatus(resp.StatusCode), nil
}

func (c *Client) publish(ctx context.Context, igID, containerID string) (string, error) {
	form := url.Values{"creation_id": {containerID}}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.postForm(ctx, "/"+igID+"/media_publish", form, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPublishCallFailed, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: empty media id", ErrPublishCallFailed)
	}
	return resp.ID, nil
}
