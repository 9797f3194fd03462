package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gioui.org/app"
	"github.com/gdamore/tcell/v2"

	"github.com/esimov/clipper"
	"github.com/esimov/clipper/preview"
	"github.com/esimov/clipper/tui"
	"github.com/esimov/clipper/utils"
)

const HelpBanner = `
┌─┐┬  ┬┌─┐┌─┐┌─┐┬─┐
│  │  │├─┘├─┘├┤ ├┬┘
└─┘┴─┘┴┴  ┴  └─┘┴└─

Parametric clip-path generator and animator.
    Version: %s

`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source      = flag.String("in", pipeName, "Source image, directory or URL")
	destination = flag.String("out", pipeName, "Destination image or directory")
	shape       = flag.String("shape", string(clipper.Circle), "Clip shape: "+shapeNames())
	size        = flag.Float64("size", 50, "Shape size, in percent")
	posX        = flag.Float64("x", 50, "Horizontal anchor, in percent")
	posY        = flag.Float64("y", 50, "Vertical anchor, in percent")
	rotation    = flag.Float64("rotation", 0, "Rotation, in degrees")
	customPath  = flag.String("path", "", "Raw clip-path value, implies the custom shape")
	preset      = flag.String("preset", "", "Preset applied before the other parameters: "+strings.Join(clipper.PresetNames, ", "))
	transition  = flag.String("transition", clipper.DefaultTransition, "CSS transition spec")
	printCSS    = flag.Bool("css", false, "Print the CSS declarations instead of clipping an image")
	invert      = flag.Bool("invert", false, "Keep the area outside of the shape")
	feather     = flag.Float64("feather", 0, "Soften the mask edge with a blur of the given sigma")
	faceDetect  = flag.Bool("face", false, "Anchor the shape on the detected face")
	cascade     = flag.String("cc", "", "Cascade classifier")
	faceAngle   = flag.Float64("angle", 0.0, "Plane rotated faces angle")
	animateTo   = flag.String("to", "", "Animate towards the given preset and export a GIF")
	duration    = flag.Duration("duration", clipper.DefaultDuration, "Animation duration")
	fps         = flag.Int("fps", 25, "Frames per second of the exported animation")
	showPreview = flag.Bool("preview", false, "Show the clipped image in a window")
	terminal    = flag.Bool("tui", false, "Play with the parameters in the terminal")
	workers     = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	verbose     = flag.Bool("v", false, "Verbose logging")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		clipper.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	patch := explicitParams()

	if *preset != "" {
		if _, err := lookupPreset(*preset); err != nil {
			fatal(err)
		}
	}
	var to *clipper.Patch
	if *animateTo != "" {
		p, err := lookupPreset(*animateTo)
		if err != nil {
			fatal(err)
		}
		to = &p
	}
	diag := newDiagnostics(os.Stderr)

	switch {
	case *terminal:
		if err := runTerminal(patch, to); err != nil {
			fatal(err)
		}
	case *printCSS:
		runCSS(patch, to, diag)
	default:
		proc := &clipper.Processor{
			Params:  patch,
			Preset:  *preset,
			Invert:  *invert,
			Feather: *feather,

			Diagnostics: diag,
		}
		if *faceDetect {
			if len(*cascade) == 0 {
				fatal(fmt.Errorf("please specify a face classifier in case you are using the -face flag"))
			}
			fd, err := clipper.LoadFaceDetector(*cascade)
			if err != nil {
				fatal(err)
			}
			fd.Angle = *faceAngle
			proc.Face = fd
		}
		if *showPreview {
			runPreview(proc, to)
			return
		}

		op := &clipper.Ops{
			Src:      *source,
			Dst:      *destination,
			PipeName: pipeName,
			Workers:  *workers,
		}
		if to != nil {
			op.Animation = &clipper.AnimationOps{To: *to, Duration: *duration, FPS: *fps}
		}
		if err := proc.Execute(context.Background(), op); err != nil {
			fatal(err)
		}
	}
}

// explicitParams collects the parameters set on the command line. The ones left
// to their defaults do not override the preset or the face anchor.
func explicitParams() clipper.Patch {
	var patch clipper.Patch
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "shape":
			patch = patch.WithShape(clipper.ParseShape(*shape))
		case "size":
			patch = patch.WithSize(*size)
		case "x":
			patch = patch.WithX(*posX)
		case "y":
			patch = patch.WithY(*posY)
		case "rotation":
			patch = patch.WithRotation(utils.Wrap(*rotation, 360))
		case "path":
			patch = patch.WithCustomPath(*customPath).WithShape(clipper.Custom)
		case "transition":
			patch = patch.WithTransition(*transition)
		}
	})
	if patch.Shape != nil && !patch.Shape.Known() {
		log.Printf(utils.DecorateText("unknown shape %q, the image will not be clipped", utils.WarningMessage), *patch.Shape)
	}
	return patch
}

// lookupPreset resolves a preset name given on the command line.
func lookupPreset(name string) (clipper.Patch, error) {
	p, ok := clipper.LookupPreset(name)
	if !ok {
		return clipper.Patch{}, fmt.Errorf("unknown preset %q, use one of: %s", name, strings.Join(clipper.PresetNames, ", "))
	}
	return p, nil
}

// newDiagnostics prints the clipper warnings to w, whatever the log level.
func newDiagnostics(w io.Writer) clipper.Diagnostics {
	logger := log.New(w, "", 0)
	return clipper.DiagnosticsFunc(func(msg string) {
		logger.Print(utils.DecorateText("Warning: "+msg, utils.WarningMessage))
	})
}

// runCSS prints the CSS declarations of the clip. With an animation target
// every frame is printed, prefixed with its timestamp.
func runCSS(patch clipper.Patch, to *clipper.Patch, diag clipper.Diagnostics) {
	target := clipper.NewStyleTarget("clip")
	var sched *clipper.StepScheduler
	if *fps > 0 {
		sched = clipper.NewStepScheduler(time.Time{}, time.Second/time.Duration(*fps))
	} else {
		sched = clipper.NewStepScheduler(time.Time{}, clipper.FrameInterval)
	}
	c, err := clipper.New(target, clipper.Patch{}, clipper.WithScheduler(sched), clipper.WithDiagnostics(diag))
	if err != nil {
		fatal(err)
	}
	if *preset != "" {
		c.Preset(*preset)
	}
	c.Set(patch)

	if to == nil {
		fmt.Println(target.CSS())
		return
	}
	anim := c.Animate(*to, *duration)
	start := sched.Now()
	for {
		now := sched.Now()
		if !sched.Step() {
			break
		}
		fmt.Printf("%s\t%s\n", utils.FormatTime(now.Sub(start)), target.CSS())
	}
	<-anim.Done()
}

// runTerminal starts the interactive terminal preview.
func runTerminal(patch clipper.Patch, to *clipper.Patch) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	a, err := tui.New(screen, clipper.Patch{})
	if err != nil {
		return err
	}
	a.Duration = *duration

	c := a.Clipper()
	if *preset != "" {
		c.Preset(*preset)
	}
	c.Set(patch)
	if to != nil {
		c.Animate(*to, *duration)
	}
	return a.Run()
}

// runPreview shows the clipped source image in a Gio window. Gio needs the main
// goroutine, the window events are processed in a separate one.
func runPreview(proc *clipper.Processor, to *clipper.Patch) {
	img, err := loadImage(*source)
	if err != nil {
		fatal(err)
	}
	name := filepath.Base(*source)

	win := preview.New(fmt.Sprintf("Clipper · %s", name), img.Bounds())

	c, target, err := proc.NewClipper(name, img, clipper.WithScheduler(win))
	if err != nil {
		fatal(err)
	}
	win.SetTarget(target)

	next := 0
	win.OnKey = func(key string) {
		switch key {
		case "Space":
			if to != nil {
				c.Animate(*to, *duration)
				return
			}
			p, _ := clipper.LookupPreset(clipper.PresetNames[next])
			next = (next + 1) % len(clipper.PresetNames)
			c.Animate(p, *duration)
		case "R":
			c.SetRotation(c.Get().Rotation + tui.RotationStep)
		case "0":
			c.Reset()
		case "C":
			c.Clear()
		}
	}
	if to != nil {
		c.Animate(*to, *duration)
	}

	go func() {
		if err := win.Run(); err != nil {
			fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

// loadImage opens a local image or downloads a remote one.
func loadImage(src string) (*image.NRGBA, error) {
	if !utils.IsValidUrl(src) {
		return clipper.OpenImage(src)
	}
	f, err := utils.DownloadImage(context.Background(), src)
	if f != nil {
		defer os.Remove(f.Name())
		defer f.Close()
	}
	if err != nil {
		return nil, err
	}
	return clipper.DecodeImage(f)
}

func shapeNames() string {
	names := make([]string, 0, len(clipper.Shapes)+1)
	for _, s := range clipper.Shapes {
		names = append(names, string(s))
	}
	return strings.Join(append(names, string(clipper.Custom)), ", ")
}

func fatal(err error) {
	log.Fatalf("%s%s",
		utils.DecorateText(fmt.Sprintf("\nError: %v", err), utils.ErrorMessage),
		utils.DefaultColor,
	)
}
