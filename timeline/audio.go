package timeline

import (
	"hash/fnv"
	"math/rand"
	"time"

	"reel-pipeline/types"
)

// curatedTracks is the royalty-free background library, tagged by style.
// BPM is carried for future beat syncing.
var curatedTracks = []types.AudioTrack{
	// PHONK (high energy / car edits)
	{Name: "Aggressive Phonk", Style: types.StylePhonk, URL: "https://cdn.pixabay.com/audio/2022/03/24/audio_784dc9b48c.mp3", BPM: 120},
	{Name: "Drift Phonk", Style: types.StylePhonk, URL: "https://cdn.pixabay.com/audio/2023/04/13/audio_8e29e5576a.mp3", BPM: 130},
	{Name: "Sigma Grind", Style: types.StylePhonk, URL: "https://cdn.pixabay.com/audio/2024/01/15/audio_273188825c.mp3", BPM: 125},

	// UPBEAT / FASHION (fast cuts, transitions)
	{Name: "Fashion House", Style: types.StyleUpbeat, URL: "https://cdn.pixabay.com/audio/2022/05/27/audio_1808fbf07a.mp3", BPM: 128},
	{Name: "Summer Pop", Style: types.StyleUpbeat, URL: "https://cdn.pixabay.com/audio/2022/10/25/audio_1454504543.mp3", BPM: 124},
	{Name: "Runway Strut", Style: types.StyleUpbeat, URL: "https://cdn.pixabay.com/audio/2023/09/06/audio_243453303c.mp3", BPM: 126},

	// LO-FI / AESTHETIC (chill)
	{Name: "Late Night Drive", Style: types.StyleLofi, URL: "https://cdn.pixabay.com/audio/2022/01/18/audio_d0a13f69d0.mp3", BPM: 90},
	{Name: "Study Session", Style: types.StyleLofi, URL: "https://cdn.pixabay.com/audio/2022/11/22/audio_febc508520.mp3", BPM: 80},

	// CINEMATIC / DRAMATIC (product reveals)
	{Name: "Epic Trailer", Style: types.StyleCinematic, URL: "https://cdn.pixabay.com/audio/2022/03/10/audio_c8c8a73467.mp3", BPM: 100},
	{Name: "Suspense Rise", Style: types.StyleCinematic, URL: "https://cdn.pixabay.com/audio/2022/08/02/audio_884fe92c21.mp3", BPM: 95},
}

// TrackLibrary selects background tracks from the curated set.
type TrackLibrary struct {
	tracks []types.AudioTrack
	rnd    *rand.Rand
}

func NewTrackLibrary() *TrackLibrary {
	return &TrackLibrary{
		tracks: curatedTracks,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ByStyle picks a track of the given style, deterministically keyed so
// the same product always maps to the same track. Falls back to a random
// track when the style has no entries.
func (l *TrackLibrary) ByStyle(style types.AudioStyle, key string) types.AudioTrack {
	var matching []types.AudioTrack
	for _, t := range l.tracks {
		if t.Style == style {
			matching = append(matching, t)
		}
	}
	if len(matching) == 0 {
		return l.Random()
	}

	h := fnv.New32a()
	h.Write([]byte(key))
	return matching[int(h.Sum32())%len(matching)]
}

// Random picks any track. This is the only declared source of randomness
// in timeline construction, used when no explicit style was requested.
func (l *TrackLibrary) Random() types.AudioTrack {
	return l.tracks[l.rnd.Intn(len(l.tracks))]
}
