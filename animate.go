package clipper

import (
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"io"
	"time"
)

// RecordFrames runs an animation of c towards to on the virtual clock of sched and
// returns the frame rendered by the mask target on every tick, the progress 0 one
// included. The clipper must have been created with the same StepScheduler.
func RecordFrames(c *Clipper, sched *StepScheduler, target *MaskTarget, to Patch, d time.Duration) []*image.NRGBA {
	var frames []*image.NRGBA

	anim := c.Animate(to, d)
	for sched.Step() {
		frames = append(frames, target.Image())
	}
	<-anim.Done()

	return frames
}

// ProcessAnimation decodes the image from r, animates the clip from the processor
// parameters towards to, and encodes the frames as an animated GIF into w.
func (p *Processor) ProcessAnimation(r io.Reader, w io.Writer, to Patch, d time.Duration, fps int) error {
	if fps <= 0 {
		return errors.New("the frame rate should be a positive number")
	}
	img, err := DecodeImage(r)
	if err != nil {
		return err
	}

	sched := NewStepScheduler(time.Time{}, time.Second/time.Duration(fps))
	c, target, err := p.NewClipper("", img, WithScheduler(sched))
	if err != nil {
		return err
	}
	frames := RecordFrames(c, sched, target, to, d)

	return EncodeGIF(w, frames, 100/fps)
}

// EncodeGIF writes the frames as a looping GIF animation. Frames of different sizes,
// as produced by rotations, are centered on a canvas fitting all of them.
// The delay is expressed in 100ths of a second.
func EncodeGIF(w io.Writer, frames []*image.NRGBA, delay int) error {
	if len(frames) == 0 {
		return errors.New("no frames to encode")
	}
	if delay <= 0 {
		delay = 1
	}

	var canvas image.Rectangle
	for _, f := range frames {
		canvas = canvas.Union(image.Rect(0, 0, f.Bounds().Dx(), f.Bounds().Dy()))
	}

	pal := append(color.Palette{color.Transparent}, palette.Plan9[:255]...)
	anim := &gif.GIF{LoopCount: 0}
	for _, f := range frames {
		dst := image.NewPaletted(canvas, pal)
		offset := image.Pt((canvas.Dx()-f.Bounds().Dx())/2, (canvas.Dy()-f.Bounds().Dy())/2)
		r := f.Bounds().Sub(f.Bounds().Min).Add(offset)
		draw.FloydSteinberg.Draw(dst, r, f, f.Bounds().Min)

		anim.Image = append(anim.Image, dst)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalBackground)
	}
	return gif.EncodeAll(w, anim)
}
