package render

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reel-pipeline/config"
	"reel-pipeline/types"
)

type fakeRunner struct {
	calls [][]string
	errs  []error
}

func (f *fakeRunner) run(_ context.Context, _ string, args []string) (string, error) {
	f.calls = append(f.calls, args)
	if len(f.errs) == 0 {
		return "", nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return "frame mismatch", err
}

func testEncoder(runner *fakeRunner) *Encoder {
	return &Encoder{
		cfg: config.Default().Render,
		bin: "ffmpeg",
		run: runner.run,
		log: zap.NewNop(),
	}
}

func TestEncodePrimarySucceeds(t *testing.T) {
	runner := &fakeRunner{}
	e := testEncoder(runner)
	tl := testTimeline(3, types.AudioPlan{Silent: true})
	out := filepath.Join(t.TempDir(), "reel.mp4")

	asset, err := e.Encode(context.Background(), tl, out)
	require.NoError(t, err)

	assert.Equal(t, out, asset.Path)
	assert.Equal(t, "1080x1920", asset.Resolution)
	assert.InDelta(t, 1.8, asset.Duration, 1e-9)
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "-filter_complex")
	assert.Contains(t, runner.calls[0], "libx264")
}

func TestEncodeFallsBackToDegradedPass(t *testing.T) {
	runner := &fakeRunner{errs: []error{errors.New("filter parse error")}}
	e := testEncoder(runner)
	tl := testTimeline(2, types.AudioPlan{Silent: true})
	out := filepath.Join(t.TempDir(), "reel.mp4")

	asset, err := e.Encode(context.Background(), tl, out)
	require.NoError(t, err)
	assert.Equal(t, out, asset.Path)

	// Primary, two segments, concat.
	require.Len(t, runner.calls, 4)
	assert.Contains(t, runner.calls[1], "-vf")
	assert.Contains(t, runner.calls[3], "concat")

	list, err := filepath.Glob(filepath.Join(filepath.Dir(out), "segments.txt"))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEncodeBothPassesFail(t *testing.T) {
	runner := &fakeRunner{errs: []error{
		errors.New("filter parse error"),
		errors.New("no such file"),
	}}
	e := testEncoder(runner)
	tl := testTimeline(2, types.AudioPlan{Silent: true})

	_, err := e.Encode(context.Background(), tl, filepath.Join(t.TempDir(), "reel.mp4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncodingFailed)
	assert.Contains(t, err.Error(), "filter parse error")
	assert.Contains(t, err.Error(), "no such file")
}

func TestPrimaryArgsAddTransitionAllowancePerInput(t *testing.T) {
	e := testEncoder(&fakeRunner{})
	tl := testTimeline(2, types.AudioPlan{Silent: true})
	tl.TransitionSec = 0.1

	args := e.primaryArgs(tl, "/tmp/out.mp4")

	// Each input runs clip duration plus the transition allowance; the
	// final -t still pins the output to the plan total.
	perInput := formatSec(0.6 + 0.1)
	var inputDurations []string
	for i, a := range args {
		if a == "-t" && i+2 < len(args) && args[i+2] == "-i" {
			inputDurations = append(inputDurations, args[i+1])
		}
	}
	assert.Equal(t, []string{perInput, perInput}, inputDurations)

	assert.Equal(t, formatSec(tl.TotalSec), args[len(args)-2])
}

func TestPrimaryArgsInputOrder(t *testing.T) {
	e := testEncoder(&fakeRunner{})
	tl := testTimeline(2, types.AudioPlan{
		NarrationPath: "/tmp/narr.mp3",
		MusicPath:     "/tmp/music.mp3",
		NarrationGain: 1.5,
		MusicGain:     0.4,
	})

	args := e.primaryArgs(tl, "/tmp/out.mp4")

	var inputs []string
	for i, a := range args {
		if a == "-i" {
			inputs = append(inputs, args[i+1])
		}
	}
	require.Len(t, inputs, 4)
	assert.Equal(t, "/tmp/narr.mp3", inputs[2])
	assert.Equal(t, "/tmp/music.mp3", inputs[3])
	assert.Equal(t, "/tmp/out.mp4", args[len(args)-1])
}
