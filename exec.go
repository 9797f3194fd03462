package clipper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/esimov/clipper/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// Ops describes where the images are read from and written to.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int

	// Animation, when not nil, exports an animated GIF instead of a still image.
	Animation *AnimationOps

	// Status receives a line for every processed file. Defaults to os.Stderr.
	Status io.Writer
}

// AnimationOps holds the settings of an animated export.
type AnimationOps struct {
	To       Patch
	Duration time.Duration
	FPS      int
}

// result holds the relevant information about the clipping process of a single file.
type result struct {
	path string
	err  error
}

// Execute runs the processor over the source described by op. The source can be
// a local file, an URL, the stdin pipe or a directory, in which case the supported
// images are clipped concurrently into the destination directory.
func (p *Processor) Execute(ctx context.Context, op *Ops) error {
	if op.Status == nil {
		op.Status = os.Stderr
	}
	if p.Spinner == nil {
		msg := fmt.Sprintf("%s %s",
			utils.DecorateText("✂ CLIPPER", utils.StatusMessage),
			utils.DecorateText("⇢ clipping image...", utils.DefaultMessage),
		)
		p.Spinner = utils.NewSpinner(msg, time.Millisecond*80, true)
	}

	// Capture CTRL-C signal and restore the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	quit := make(chan struct{})
	defer func() {
		signal.Stop(signalChan)
		close(quit)
	}()
	go func() {
		select {
		case <-signalChan:
			p.Spinner.RestoreCursor()
			os.Exit(1)
		case <-quit:
		}
	}()

	src := op.Src
	// Check if source path is a local image or URL.
	if utils.IsValidUrl(src) {
		f, err := utils.DownloadImage(ctx, src)
		if f != nil {
			f.Close()
			defer os.Remove(f.Name())
		}
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		src = f.Name()
	}

	var (
		fs  os.FileInfo
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if src == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		if err := os.MkdirAll(op.Dst, 0755); err != nil {
			return fmt.Errorf("unable to create the destination directory: %w", err)
		}
		err = spin(p.Spinner, func() error {
			return op.runWorkers(ctx, p, src)
		})
	case mode.IsRegular() || mode&os.ModeNamedPipe != 0 || src == op.PipeName:
		if op.Dst != op.PipeName && !IsSupported(op.Dst) {
			return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(op.Dst))
		}
		err = spin(p.Spinner, func() error {
			return op.process(p, src, op.Dst)
		})
		op.printOpStatus(op.Dst, err)
	default:
		return fmt.Errorf("%s is neither a file nor a directory", op.Src)
	}

	if err == nil {
		fmt.Fprintf(op.Status, "\nExecution time: %s\n",
			utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage),
		)
	}
	return err
}

// spin keeps the progress indicator running while fn executes. The spinner is
// started and stopped once, whatever the number of workers fn runs.
func spin(s *utils.Spinner, fn func() error) error {
	successMsg := fmt.Sprintf("%s %s %s",
		utils.DecorateText("✂ CLIPPER", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the image has been clipped successfully ✔", utils.SuccessMessage),
	)
	errorMsg := fmt.Sprintf("%s %s %s",
		utils.DecorateText("✂ CLIPPER", utils.StatusMessage),
		utils.DecorateText("clipping image failed...", utils.DefaultMessage),
		utils.DecorateText("✘", utils.ErrorMessage),
	)

	// Start the progress indicator.
	s.Start()
	err := fn()
	if err != nil {
		s.StopMsg = errorMsg
	} else {
		s.StopMsg = successMsg
	}
	// Stop the progress indicator.
	s.Stop()

	return err
}

// runWorkers clips the images found under dir using a pool of workers.
// Every failure is reported and the joined errors are returned.
func (op *Ops) runWorkers(ctx context.Context, p *Processor, dir string) error {
	var (
		wg   sync.WaitGroup
		errs []error
	)
	workers := op.Workers
	// Limit the concurrently running workers to maxWorkers.
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	ch := make(chan result)
	done := make(chan struct{})
	defer close(done)

	paths, errc := walkDir(ctx, done, dir, SupportedExtensions)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(p, dir, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	// Consume the channel values.
	for res := range ch {
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.path, res.err))
		}
		op.printOpStatus(res.path, res.err)
	}

	if err := <-errc; err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// consumer reads the path names from the paths channel and clips the images,
// mirroring the source tree layout into the destination directory.
func (op *Ops) consumer(
	p *Processor,
	root string,
	res chan<- result,
	done <-chan struct{},
	paths <-chan string,
) {
	for src := range paths {
		rel, err := filepath.Rel(root, src)
		if err != nil {
			rel = filepath.Base(src)
		}
		dst := filepath.Join(op.Dst, op.outputName(rel))
		if err == nil {
			err = os.MkdirAll(filepath.Dir(dst), 0755)
		}
		if err == nil {
			err = op.process(p, src, dst)
		}

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			err:  err,
		}:
		}
	}
}

// outputName returns the destination file name of a source image. Animations are
// always GIFs, while clipped stills go to PNG unless the source format keeps alpha.
func (op *Ops) outputName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := strings.TrimSuffix(name, filepath.Ext(name))

	if op.Animation != nil {
		return base + ".gif"
	}
	switch ext {
	case ".png", ".gif", ".tif", ".tiff":
		return name
	}
	return base + ".png"
}

// process calls the clipper over the source image and returns the error in case exists.
func (op *Ops) process(p *Processor, in, out string) (err error) {
	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		return err
	}
	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			f.Close()
		}
		if f, ok := dst.(*os.File); ok && f != os.Stdout {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			// remove the generated image file in case of an error
			if err != nil {
				os.Remove(f.Name())
			}
		}
	}()

	ext := filepath.Ext(out)
	if out == op.PipeName {
		ext = ""
	}
	if a := op.Animation; a != nil {
		return p.ProcessAnimation(src, dst, a.To, a.Duration, a.FPS)
	}
	return p.Process(src, dst, ext)
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

// printOpStatus displays the relevant information about the clipping process.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		fmt.Fprintf(op.Status, "%s%s",
			utils.DecorateText(fmt.Sprintf("\nError clipping the image %s", filepath.Base(fname)), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(op.Status, "\nThe image has been saved as: %s %s\n\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each supported image to a new channel.
// It finishes in case the done channel is getting closed or the context is cancelled.
func walkDir(
	ctx context.Context,
	done <-chan struct{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !isValidExtension(strings.ToLower(filepath.Ext(f.Name())), srcExts) {
				return nil
			}

			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case <-ctx.Done():
				return ctx.Err()
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
