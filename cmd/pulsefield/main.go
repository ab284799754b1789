package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"pulsefield/internal/app"
	"pulsefield/internal/scene"
	"pulsefield/internal/video"
)

var version = "0.1.0"

// CLI defines the command-line interface
type CLI struct {
	Version bool `short:"v" help:"Show version information"`

	Width  int `default:"1280" help:"Window width in pixels"`
	Height int `default:"720" help:"Window height in pixels"`

	Track  []string `type:"existingfile" help:"WAV file for scene 1, 2 and 3 in order; missing tracks are synthesized"`
	Volume float64  `default:"1" help:"Playback volume between 0 and 1"`

	Video       string `default:"webcam" enum:"webcam,pattern,none" help:"Video source (${enum})"`
	VideoDevice string `help:"Capture device passed to ffmpeg (default depends on the platform)"`
	VideoFormat string `help:"ffmpeg input format such as v4l2, avfoundation or dshow"`
	FFmpeg      string `name:"ffmpeg" default:"ffmpeg" help:"ffmpeg executable"`

	GridWidth  int `default:"120" help:"Particle columns"`
	GridHeight int `default:"90" help:"Particle rows"`

	Scene   int  `default:"1" help:"Scene to start in (1-3)"`
	Gamma   bool `help:"Append gamma correction to every scene"`
	FFTSize int  `name:"fft-size" default:"2048" help:"Analyser FFT size, a power of two"`

	LogLevel string `default:"info" enum:"debug,info,warn,error" help:"Log level (${enum})"`
	Debug    bool   `help:"Human readable development logging"`
}

func (c *CLI) config() app.Config {
	cfg := app.DefaultConfig()
	cfg.Width, cfg.Height = c.Width, c.Height
	cfg.Tracks = c.Track
	cfg.Volume = c.Volume
	cfg.Scene = scene.Index(c.Scene - 1)
	cfg.Scenes.GammaCorrection = c.Gamma
	cfg.Analyzer.FFTSize = c.FFTSize

	cfg.Grid.Width, cfg.Grid.Height = c.GridWidth, c.GridHeight
	cfg.Video.Kind = video.Kind(c.Video)
	cfg.Video.Width, cfg.Video.Height = c.GridWidth, c.GridHeight
	cfg.Video.Device = c.VideoDevice
	cfg.Video.Format = c.VideoFormat
	cfg.Video.FFmpeg = c.FFmpeg
	return cfg
}

func main() {
	cli := &CLI{}
	kong.Parse(cli,
		kong.Name("pulsefield"),
		kong.Description("Audio-reactive webcam particle field"),
		kong.UsageOnError(),
	)
	if cli.Version {
		fmt.Println("pulsefield", version)
		os.Exit(0)
	}

	log, err := newLogger(cli.LogLevel, cli.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := cli.config()
	if err := app.Run(cfg, log); err != nil {
		log.Error("pulsefield stopped", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}
