package types

import "time"

// Product is one catalog item as fetched from the Shopify Storefront API.
// Read-only input to the pipeline; never mutated after fetch.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Currency    string   `json:"currency"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	ShopURL     string   `json:"shop_url"`
	Handle      string   `json:"handle"`
}

// Goal is the target outcome a reel is optimized for.
type Goal string

const (
	GoalReach      Goal = "reach"
	GoalEngagement Goal = "engagement"
	GoalConversion Goal = "conversion"
)

// ReelScript is the structured creative plan for one reel.
// Immutable after composition.
type ReelScript struct {
	Goal         Goal     `json:"reel_goal"`
	Hook         string   `json:"hook"`
	Scenes       []string `json:"scenes"`
	OnScreenText []string `json:"on_screen_text"`
	Caption      string   `json:"caption"`
	Hashtags     []string `json:"hashtags"`
	CTA          string   `json:"cta"`
}

// AudioStyle tags a background track with its vibe.
type AudioStyle string

const (
	StylePhonk     AudioStyle = "phonk"
	StyleLofi      AudioStyle = "lofi"
	StyleUpbeat    AudioStyle = "upbeat"
	StyleCinematic AudioStyle = "cinematic"
)

// AudioTrack is one royalty-free background track from the curated library.
type AudioTrack struct {
	Name  string     `json:"name"`
	Style AudioStyle `json:"style"`
	URL   string     `json:"url"`
	BPM   int        `json:"bpm"` // for future beat syncing
}

// ZoomDirection is the pan/zoom motion applied to a clip.
type ZoomDirection string

const (
	ZoomIn  ZoomDirection = "in"
	ZoomOut ZoomDirection = "out"
)

// Clip is one image slot in the visual timeline.
type Clip struct {
	ImagePath   string        `json:"image_path"`
	Duration    float64       `json:"duration"`
	Zoom        ZoomDirection `json:"zoom"`
	OverlayText []string      `json:"overlay_text"`
}

// AudioPlan describes how the audio streams are mixed into the reel.
// Gains are pre-sum multipliers; FadeOutSec is applied over the final
// seconds of the total duration regardless of which streams exist.
type AudioPlan struct {
	NarrationPath string      `json:"narration_path,omitempty"`
	MusicPath     string      `json:"music_path,omitempty"`
	MusicTrack    *AudioTrack `json:"music_track,omitempty"`
	MusicGain     float64     `json:"music_gain"`
	NarrationGain float64     `json:"narration_gain"`
	FadeOutSec    float64     `json:"fade_out_sec"`
	Silent        bool        `json:"silent"`
}

// Timeline is the fully specified render plan for one reel: ordered clips
// plus the audio mixing plan. Built once per run, consumed exactly once.
// TransitionSec is the extra footage each clip contributes so adjacent
// clips have material to blend over; it does not extend TotalSec.
type Timeline struct {
	Clips         []Clip    `json:"clips"`
	TotalSec      float64   `json:"total_sec"`
	TransitionSec float64   `json:"transition_sec"`
	Audio         AudioPlan `json:"audio"`
}

// RenderedAsset is the encoded video on local disk. It lives inside the
// run's temp directory and is removed by the orchestrator's cleanup.
type RenderedAsset struct {
	Path       string  `json:"path"`
	Duration   float64 `json:"duration"`
	Resolution string  `json:"resolution"`
}

// HostedAsset is the rendered video made reachable at a public URL by a
// temporary hosting service. Remote-owned; no local lifecycle.
type HostedAsset struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}

// ContainerStatus is the remote processing state of a publish job.
type ContainerStatus string

const (
	StatusInProgress ContainerStatus = "IN_PROGRESS"
	StatusFinished   ContainerStatus = "FINISHED"
	StatusError      ContainerStatus = "ERROR"
)

// PublishJob tracks one remote media container through processing.
type PublishJob struct {
	ContainerID string          `json:"container_id"`
	Status      ContainerStatus `json:"status"`
	Attempts    int             `json:"attempts"`
}

// ReelResult is the payload a caller receives for one pipeline run.
// PostError carries an auto-publish failure alongside an otherwise
// successful render+upload result.
type ReelResult struct {
	RunID       string      `json:"run_id"`
	StartedAt   time.Time   `json:"started_at"`
	CompletedAt time.Time   `json:"completed_at"`
	Product     ProductRef  `json:"product"`
	Script      *ReelScript `json:"script"`
	Video       VideoInfo   `json:"video"`
	MediaID     string      `json:"media_id,omitempty"`
	PostError   string      `json:"post_error,omitempty"`
}

// ProductRef is the minimal product identity echoed in results.
type ProductRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// VideoInfo summarizes the rendered and hosted video in results.
type VideoInfo struct {
	Duration   float64 `json:"duration"`
	Resolution string  `json:"resolution"`
	PublicURL  string  `json:"public_url"`
	ExpiresAt  string  `json:"expires_at"`
}
