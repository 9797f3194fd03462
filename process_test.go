package clipper

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esimov/clipper/utils"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func quietProcessor(p *Processor) *Processor {
	p.Spinner = utils.NewSpinnerWriter(io.Discard, "", time.Millisecond*50, false)
	return p
}

func TestProcessor_ParameterPrecedence(t *testing.T) {
	p := &Processor{
		Preset: "star",
		Params: Patch{}.WithSize(20),
	}
	c, target, err := p.NewClipper("img", solidImage(50, 50, red))
	require.NoError(t, err)

	params := c.Get()
	assert.Equal(t, Star, params.Shape)
	assert.Equal(t, 20.0, params.Size)

	b, _ := target.Boundary()
	assert.Equal(t, Compute(params), b)
}

func TestProcessor_RendersTheMergedParametersOnce(t *testing.T) {
	diag := &warnings{}
	p := &Processor{
		Preset:      "heart",
		Params:      Patch{}.WithShape(Custom).WithCustomPath("path('M0 0')").WithTransition("2s linear"),
		Diagnostics: diag,
	}
	c, target, err := p.NewClipper("img", solidImage(10, 10, red))
	require.NoError(t, err)

	assert.Equal(t, Custom, c.Get().Shape)
	assert.Equal(t, "2s linear", target.Transition())
	// Only the final custom path reached the mask target.
	assert.Len(t, diag.msgs, 1)
}

func TestProcessor_UnknownPresetIsReported(t *testing.T) {
	diag := &warnings{}
	p := &Processor{Preset: "blob", Diagnostics: diag}

	c, _, err := p.NewClipper("img", solidImage(10, 10, red))
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), c.Get())
	assert.Equal(t, []string{`preset "blob" not found`}, diag.msgs)
}

func TestProcessor_Process(t *testing.T) {
	p := &Processor{Params: Patch{}.WithShape(Rectangle).WithSize(50)}

	var out bytes.Buffer
	require.NoError(t, p.Process(bytes.NewReader(encodePNG(t, solidImage(40, 40, red))), &out, ".png"))

	img, err := png.Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 40), img.Bounds())

	_, _, _, a := img.At(20, 20).RGBA()
	assert.Equal(t, uint32(0xffff), a)
	_, _, _, a = img.At(2, 2).RGBA()
	assert.Zero(t, a)
}

func TestProcessor_ProcessInvalidInput(t *testing.T) {
	p := &Processor{}
	err := p.Process(bytes.NewReader([]byte("garbage")), io.Discard, ".png")
	assert.Error(t, err)
}

func TestProcessor_ProcessFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	require.NoError(t, os.WriteFile(in, encodePNG(t, solidImage(20, 20, red)), 0644))

	p := &Processor{Preset: "circle"}
	out := filepath.Join(dir, "out.png")
	require.NoError(t, p.ProcessFile(in, out))
	_, err := os.Stat(out)
	assert.NoError(t, err)

	// A failed encoding does not leave a file behind.
	bad := filepath.Join(dir, "out.webp")
	assert.Error(t, p.ProcessFile(in, bad))
	_, err = os.Stat(bad)
	assert.True(t, os.IsNotExist(err))
}

func TestAnimation_RecordFrames(t *testing.T) {
	sched := NewStepScheduler(epoch, 100*time.Millisecond)
	target := NewMaskTarget("red", solidImage(40, 40, red))
	c, err := New(target, Patch{}.WithSize(10), WithScheduler(sched))
	require.NoError(t, err)

	frames := RecordFrames(c, sched, target, Patch{}.WithSize(60), 500*time.Millisecond)

	// One frame per tick, the frame starting the clock included.
	require.Len(t, frames, 6)
	assert.Zero(t, frames[0].NRGBAAt(10, 20).A)
	assert.NotEqual(t, frames[0].Pix, frames[1].Pix)
	assert.Equal(t, red, frames[5].NRGBAAt(10, 20))
	assert.Equal(t, 60.0, c.Get().Size)
}

func TestAnimation_ProcessAnimation(t *testing.T) {
	p := &Processor{Preset: "circle"}
	src := bytes.NewReader(encodePNG(t, solidImage(30, 20, red)))

	var out bytes.Buffer
	to := Patch{}.WithRotation(90)
	require.NoError(t, p.ProcessAnimation(src, &out, to, 200*time.Millisecond, 10))

	anim, err := gif.DecodeAll(&out)
	require.NoError(t, err)
	assert.Len(t, anim.Image, 3)
	for _, d := range anim.Delay {
		assert.Equal(t, 10, d)
	}
	// Rotated frames are centered on a canvas fitting all of them.
	assert.GreaterOrEqual(t, anim.Config.Width, 30)
	assert.GreaterOrEqual(t, anim.Config.Height, 30)
}

func TestAnimation_ProcessAnimationNeedsFrameRate(t *testing.T) {
	p := &Processor{}
	err := p.ProcessAnimation(bytes.NewReader(nil), io.Discard, Patch{}, time.Second, 0)
	assert.Error(t, err)
}

func TestAnimation_EncodeGIF(t *testing.T) {
	assert.Error(t, EncodeGIF(io.Discard, nil, 10))

	frames := []*image.NRGBA{
		solidImage(10, 4, red),
		solidImage(4, 10, color.NRGBA{G: 255, A: 255}),
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeGIF(&buf, frames, 0))

	anim, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	require.Len(t, anim.Image, 2)
	assert.Equal(t, []int{1, 1}, anim.Delay)
	assert.Equal(t, image.Rect(0, 0, 10, 10), anim.Image[0].Bounds())

	// The first frame is vertically centered, the rows above it stay transparent.
	_, _, _, a := anim.Image[0].At(5, 0).RGBA()
	assert.Zero(t, a)
	_, _, _, a = anim.Image[0].At(5, 4).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestExec_SingleFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	require.NoError(t, os.WriteFile(in, encodePNG(t, solidImage(20, 20, red)), 0644))

	var status bytes.Buffer
	p := quietProcessor(&Processor{Preset: "diamond"})
	err := p.Execute(context.Background(), &Ops{Src: in, Dst: out, PipeName: "-", Status: &status})
	require.NoError(t, err)

	assert.Contains(t, status.String(), "out.png")
	assert.Contains(t, status.String(), "Execution time")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
}

func TestExec_UnsupportedDestination(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	require.NoError(t, os.WriteFile(in, encodePNG(t, solidImage(4, 4, red)), 0644))

	p := quietProcessor(&Processor{})
	err := p.Execute(context.Background(), &Ops{Src: in, Dst: filepath.Join(dir, "out.txt"), PipeName: "-", Status: io.Discard})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExec_MissingSource(t *testing.T) {
	p := quietProcessor(&Processor{})
	err := p.Execute(context.Background(), &Ops{Src: "does-not-exist.png", Dst: "out.png", PipeName: "-", Status: io.Discard})
	assert.Error(t, err)
}

func TestExec_Directory(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0755))
	for _, name := range []string{"a.png", "b.PNG", filepath.Join("nested", "c.png")} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), encodePNG(t, solidImage(8, 8, red)), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("skip me"), 0644))

	p := quietProcessor(&Processor{Preset: "heart"})
	err := p.Execute(context.Background(), &Ops{Src: src, Dst: dst, PipeName: "-", Workers: 1, Status: io.Discard})
	require.NoError(t, err)

	for _, name := range []string{"a.png", "b.PNG", filepath.Join("nested", "c.png")} {
		_, err := os.Stat(filepath.Join(dst, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(dst, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestExec_DirectoryConcurrentWorkers(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	names := make([]string, 16)
	for i := range names {
		names[i] = fmt.Sprintf("img%02d.png", i)
		require.NoError(t, os.WriteFile(filepath.Join(src, names[i]), encodePNG(t, solidImage(16, 16, red)), 0644))
	}

	var spinner bytes.Buffer
	p := &Processor{
		Preset:  "star",
		Spinner: utils.NewSpinnerWriter(&spinner, "", time.Millisecond, false),
	}
	err := p.Execute(context.Background(), &Ops{Src: src, Dst: dst, PipeName: "-", Workers: 8, Status: io.Discard})
	require.NoError(t, err)

	for _, name := range names {
		_, err := os.Stat(filepath.Join(dst, name))
		assert.NoError(t, err, name)
	}
	// The progress indicator runs once for the whole batch.
	assert.Equal(t, 1, strings.Count(spinner.String(), "clipped successfully"))
}

func TestExec_DirectoryAnimation(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.jpg.png"), encodePNG(t, solidImage(8, 8, red)), 0644))

	p := quietProcessor(&Processor{})
	op := &Ops{
		Src: src, Dst: dst, PipeName: "-", Workers: 1, Status: io.Discard,
		Animation: &AnimationOps{To: Patch{}.WithSize(10), Duration: 100 * time.Millisecond, FPS: 20},
	}
	require.NoError(t, p.Execute(context.Background(), op))

	f, err := os.Open(filepath.Join(dst, "a.jpg.gif"))
	require.NoError(t, err)
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Greater(t, len(anim.Image), 2)
}

func TestExec_OutputName(t *testing.T) {
	op := &Ops{}
	assert.Equal(t, "a.png", op.outputName("a.png"))
	assert.Equal(t, "dir/a.png", op.outputName("dir/a.jpg"))
	assert.Equal(t, "a.png", op.outputName("a.bmp"))
	assert.Equal(t, "a.tiff", op.outputName("a.tiff"))

	op.Animation = &AnimationOps{}
	assert.Equal(t, "a.gif", op.outputName("a.png"))
}
