// Command sonido extracts notes from audio files, estimates pitch live, and
// writes test tones.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/RyanBlaney/sonido-pitch/detector"
	"github.com/RyanBlaney/sonido-pitch/logging"
	"github.com/RyanBlaney/sonido-pitch/transcode"
)

const usage = `usage: sonido <command> [flags]

commands:
  notes  extract the note sequence of an audio file
  live   estimate pitch in real time from the microphone or a file
  tone   write a harmonic test tone to a WAV file

run "sonido <command> -h" for command flags`

// commonFlags are shared by every subcommand
type commonFlags struct {
	configPath string
	logFormat  string
	logLevel   string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "JSON config file layered over the defaults")
	fs.StringVar(&c.logFormat, "log-format", "default", "log output: default, text, json")
	fs.StringVar(&c.logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

// setup installs the global logger and loads the detector configuration
func (c *commonFlags) setup() (*detector.Config, error) {
	level, err := logging.ParseLevel(c.logLevel)
	if err != nil {
		return nil, err
	}

	switch c.logFormat {
	case "default":
	case "text", "json":
		logging.SetGlobalLogger(logging.NewLogrusLogger(os.Stderr, c.logFormat))
	default:
		return nil, fmt.Errorf("unknown log format %q", c.logFormat)
	}
	logging.SetLevel(level)

	if c.configPath == "" {
		return detector.DefaultConfig(), nil
	}
	return detector.LoadConfig(c.configPath)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "notes":
		err = runNotes(ctx, args)
	case "live":
		err = runLive(ctx, args)
	case "tone":
		err = runTone(args)
	case "-h", "--help", "help":
		fmt.Println(usage)
		fmt.Printf("\nsupported audio formats: %s\n", strings.Join(transcode.SupportedExtensions(), " "))
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		logging.Error(err, "Command failed", logging.Fields{"command": os.Args[1]})
		os.Exit(1)
	}
}
