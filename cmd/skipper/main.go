package main

/*------------------------------------------------------------------
 *
 * Purpose: Main program for "skipper", a streaming MUSIC/TALK audio
 * filter.
 *
 * Reads raw PCM from standard input, segments it with a precomputed
 * tensor discriminator, and either passes it through or elides one
 * class with crossfaded transitions to standard output.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	skipper "github.com/dbry/skipper/src"
)

func main() {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)

	analysisPath := fs.StringP("analysis", "a", "", "write descriptor stream to PATH")
	channels := fs.IntP("channels", "c", 2, "channel count override (1 or 2)")
	tensorPath := fs.StringP("tensor", "d", "", "tensor file to use as the discriminator")
	keepAlive := fs.BoolP("keep-alive", "k", false, "keep-alive crossfades during long skips")
	leftDebug := fs.IntP("left-debug", "l", 0, "left debug channel override (1=mono,2=filtered,3=level,4=tensor)")
	rightDebug := fs.IntP("right-debug", "r", 0, "right debug channel override (1=mono,2=filtered,3=level,4=tensor)")
	skipMusic := fs.StringP("skip-music", "m", "", "skip MUSIC, optional +-threshold override")
	skipTalk := fs.StringP("skip-talk", "t", "", "skip TALK, optional +-threshold override (sign inverted relative to -m)")
	skipAll := fs.BoolP("skip-all", "n", false, "skip everything")
	passAll := fs.BoolP("pass-all", "p", false, "pass all (default)")
	quiet := fs.BoolP("quiet", "q", false, "quiet")
	rate := fs.IntP("rate", "s", 44100, "sample rate override")
	verbose := fs.StringP("verbose", "v", "", "verbose; optional progress period in seconds")
	configPath := fs.String("config", "skipper.yaml", "optional defaults file, merged before flags")
	help := fs.Bool("help", false, "display help text")

	fs.Lookup("skip-music").NoOptDefVal = " "
	fs.Lookup("skip-talk").NoOptDefVal = " "
	fs.Lookup("verbose").NoOptDefVal = " "

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - streaming MUSIC/TALK audio filter\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Reads raw signed 16-bit PCM on stdin, writes stereo PCM on stdout.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}
	if *help {
		fs.Usage()
		os.Exit(0)
	}

	cfg, err := buildConfig(fs, *configPath, *channels, *rate, *tensorPath, *analysisPath,
		*keepAlive, *leftDebug, *rightDebug, *skipMusic, *skipTalk, *skipAll, *passAll,
		*quiet, *verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := skipper.NewLogger(os.Stderr, cfg.Quiet, cfg.Verbose)

	tensorFile, err := os.Open(cfg.TensorPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "resource:", err)
		os.Exit(1)
	}
	tensor, err := skipper.ReadTensor(tensorFile)
	tensorFile.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var analysisOut io.Writer
	if cfg.AnalysisPath != "" {
		f, ferr := os.Create(cfg.AnalysisPath)
		if ferr != nil {
			fmt.Fprintln(os.Stderr, ferr)
			os.Exit(1)
		}
		defer f.Close()
		analysisOut = f
	}

	pipeline := skipper.NewPipeline(cfg, tensor, os.Stdout, analysisOut, logger)
	if err := pipeline.Run(os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildConfig merges an optional YAML defaults file with the parsed
// CLI flags into a skipper.Config; flags always win over the defaults
// file.
func buildConfig(fs *pflag.FlagSet, configPath string, channels, rate int, tensorPath, analysisPath string,
	keepAlive bool, leftDebug, rightDebug int, skipMusic, skipTalk string, skipAll, passAll bool,
	quiet bool, verbose string) (skipper.Config, error) {

	cfg, err := skipper.LoadDefaults(configPath, skipper.DefaultConfig())
	if err != nil {
		return skipper.Config{}, err
	}

	if fs.Changed("channels") {
		cfg.Channels = channels
	}
	if fs.Changed("rate") {
		cfg.Rate = rate
	}
	cfg.TensorPath = tensorPath
	cfg.AnalysisPath = analysisPath
	if fs.Changed("keep-alive") {
		cfg.KeepAlive = keepAlive
	}
	if fs.Changed("quiet") {
		cfg.Quiet = quiet
	}

	ld, err := skipper.ParseDebugChannel(leftDebug)
	if err != nil {
		return skipper.Config{}, err
	}
	rd, err := skipper.ParseDebugChannel(rightDebug)
	if err != nil {
		return skipper.Config{}, err
	}
	cfg.LeftDebug = ld
	cfg.RightDebug = rd

	switch {
	case skipAll:
		cfg.Policy = skipper.SkipAllModes
	case fs.Changed("skip-music"):
		cfg.Policy = skipper.SkipMusic
		delta, derr := parseThreshold(skipMusic)
		if derr != nil {
			return skipper.Config{}, derr
		}
		cfg.Threshold = skipper.DefaultThreshold + delta
	case fs.Changed("skip-talk"):
		cfg.Policy = skipper.SkipTalk
		delta, derr := parseThreshold(skipTalk)
		if derr != nil {
			return skipper.Config{}, derr
		}
		// Sign is inverted relative to -m.
		cfg.Threshold = skipper.DefaultThreshold - delta
	case passAll:
		cfg.Policy = skipper.PassAll
	}

	if fs.Changed("verbose") {
		cfg.Verbose = true
		if trimmed := strings.TrimSpace(verbose); trimmed != "" {
			n, perr := strconv.Atoi(trimmed)
			if perr != nil {
				return skipper.Config{}, fmt.Errorf("invalid -v period %q: %w", verbose, perr)
			}
			cfg.ProgressSeconds = n
		}
	}

	if cfg.TensorPath == "" {
		return skipper.Config{}, fmt.Errorf("a tensor file is required (-d PATH)")
	}

	if verr := cfg.Validate(); verr != nil {
		return skipper.Config{}, verr
	}
	return cfg, nil
}

// parseThreshold parses the optional +-N argument of -m/-t. A blank
// (flag given with no value) yields a zero override.
func parseThreshold(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid threshold override %q: %w", raw, err)
	}
	return float64(n), nil
}
