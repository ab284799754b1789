package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Webcam captures a camera through an ffmpeg child process emitting raw
// RGBA frames already scaled to the grid size.
type Webcam struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stream *stream
	log    *zap.Logger
}

func platformInput(goos string) (format, device string) {
	switch goos {
	case "darwin":
		return "avfoundation", "0"
	case "windows":
		return "dshow", "video=Integrated Camera"
	}
	return "v4l2", "/dev/video0"
}

// ffmpegArgs builds the capture command line for cfg.
func ffmpegArgs(cfg Config, goos string) []string {
	format, device := platformInput(goos)
	if cfg.Format != "" {
		format = cfg.Format
	}
	if cfg.Device != "" {
		device = cfg.Device
	}
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-f", format,
		"-video_size", strconv.Itoa(cfg.CaptureWidth) + "x" + strconv.Itoa(cfg.CaptureHeight),
		"-i", device,
		"-vf", "scale=" + strconv.Itoa(cfg.Width) + ":" + strconv.Itoa(cfg.Height),
		"-pix_fmt", "rgba",
		"-f", "rawvideo",
		"-",
	}
}

// OpenWebcam starts ffmpeg and waits for the first frame. Every failure is
// reported as ErrDeviceAcquisition.
func OpenWebcam(ctx context.Context, cfg Config, log *zap.Logger) (*Webcam, error) {
	if log == nil {
		log = zap.NewNop()
	}
	bin, err := exec.LookPath(cfg.FFmpeg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceAcquisition, err)
	}
	args := ffmpegArgs(cfg, runtime.GOOS)
	cmd := exec.CommandContext(ctx, bin, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceAcquisition, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start ffmpeg: %v", ErrDeviceAcquisition, err)
	}
	log.Debug("ffmpeg started", zap.String("path", bin), zap.Strings("args", args))

	w := &Webcam{cmd: cmd, stdout: stdout, stream: newStream(stdout, cfg.Width, cfg.Height), log: log}
	timeout := make(chan struct{})
	if cfg.FirstFrameTimeout > 0 {
		t := time.AfterFunc(cfg.FirstFrameTimeout, func() { close(timeout) })
		defer t.Stop()
	}
	if err := w.stream.waitFirst(timeout); err != nil {
		_ = w.Close()
		return nil, err
	}
	log.Info("webcam ready", zap.Int("width", cfg.Width), zap.Int("height", cfg.Height))
	return w, nil
}

func (w *Webcam) Frame() *image.RGBA { return w.stream.Frame() }

// Close stops ffmpeg and waits for the reader to drain.
func (w *Webcam) Close() error {
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
	_ = w.stdout.Close()
	<-w.stream.done
	err := w.cmd.Wait()
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		// Killed on purpose.
		return nil
	}
	return err
}
