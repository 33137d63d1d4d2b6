package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-motion/capture"
	"github.com/nvr-ai/go-motion/frames/framestest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestListCommand(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		capture.FileName("b.mp4", 0),
		capture.FileName("a.mp4", 10),
		capture.FileName("a.mp4", 2),
		"notes.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	var out bytes.Buffer
	cmd := listCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{dir, "--video", "a.mp4"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t,
		"a.mp4\t2\t"+filepath.Join(dir, "a.mp4_frame_2.jpg")+"\n"+
			"a.mp4\t10\t"+filepath.Join(dir, "a.mp4_frame_10.jpg")+"\n",
		out.String())
}

func TestPreviewCommand(t *testing.T) {
	dir := t.TempDir()
	gen := framestest.NewGenerator(320, 240)
	_, err := framestest.WriteSequence(dir, []gocv.Mat{gen.Static(), gen.Static()})
	require.NoError(t, err)

	thumb := filepath.Join(t.TempDir(), "thumb.jpg")
	cmd := previewCommand()
	cmd.SetArgs([]string{dir, "-o", thumb})
	require.NoError(t, cmd.Execute())

	img := gocv.IMRead(thumb, gocv.IMReadColor)
	defer img.Close()
	assert.Equal(t, 240, img.Cols())
	assert.Equal(t, 180, img.Rows())
}
