// Command scoreblock renders embedded music-notation blocks from documents
// (or bare notation files) into SVG scores, and can play them or export them
// as .wav or .mid.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jlaakso/scoreblock"
	"github.com/jlaakso/scoreblock/block"
	"github.com/jlaakso/scoreblock/cache"
	"github.com/jlaakso/scoreblock/oto"
	"github.com/jlaakso/scoreblock/preprocess"
	"github.com/jlaakso/scoreblock/render"
	"github.com/jlaakso/scoreblock/synth"
	"github.com/jlaakso/scoreblock/version"
)

func main() {
	play := flag.Bool("p", false, "Play the blocks (default behaviour when no other output is defined).")
	svgOut := flag.Bool("g", false, "Output every block as an .svg score.")
	wavOut := flag.Bool("w", false, "Output every block as a .wav file.")
	midOut := flag.Bool("m", false, "Output every block as a .mid file.")
	expandOut := flag.Bool("x", false, "Output the preprocessed notation of every block as .abc text.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting .wav.")
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original document is.")
	settings := flag.String("y", "", "YAML file with synthesis settings (sample rate, channels, gain, ramp).")
	cacheDir := flag.String("t", defaultCacheDir(), "Directory for the parsed-tune cache. Empty disables the cache.")
	debug := flag.Bool("d", false, "Print debug logging.")
	versionFlag := flag.Bool("v", false, "Print version.")
	help := flag.Bool("h", false, "Show help.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	initLogger(*debug)
	if !*svgOut && !*wavOut && !*midOut && !*expandOut {
		*play = true // with nothing to output, the default behaviour is just to play
	}

	config := scoreblock.DefaultSynthConfig()
	if *settings != "" {
		data, err := os.ReadFile(*settings)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read settings: %v\n", err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			fmt.Fprintf(os.Stderr, "could not parse settings: %v\n", err)
			os.Exit(1)
		}
	}

	var audio *oto.Context
	if *play {
		var err error
		audio, err = oto.NewContext(config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
			os.Exit(1)
		}
	}
	engraver, err := render.NewEngraver()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create engraver: %v\n", err)
		os.Exit(1)
	}
	tuneCache := cache.New(*cacheDir)

	process := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		blocks := []string{string(inputBytes)}
		if strings.EqualFold(filepath.Ext(filename), ".md") {
			blocks = block.ScanBlocks(string(inputBytes), block.Language)
			if len(blocks) == 0 {
				slog.Info("document contains no notation blocks", "file", filename)
				return nil
			}
		}
		for i, source := range blocks {
			output := func(extension string, contents []byte) error {
				return writeOutput(filename, i, len(blocks), extension, contents, *directory, *stdout)
			}
			options, body, err := preprocess.Process(source)
			if err != nil {
				// recoverable: render continues with the defaults
				slog.Error("options annotation could not be parsed", "file", filename, "block", i+1, "error", err)
			}
			expanded := preprocess.ExpandDirectives(body)
			if *expandOut {
				if err := output(".abc", []byte(expanded)); err != nil {
					return fmt.Errorf("error outputting expanded notation: %v", err)
				}
			}

			key := cache.Key(source)
			tune, cached := tuneCache.Get(key)
			var svg []byte
			if !cached || *svgOut {
				result, err := engraver.Render(expanded, options)
				if err != nil {
					return fmt.Errorf("could not render block %v of %v: %v", i+1, filename, err)
				}
				tune = result.Tune
				svg = result.SVG
				tuneCache.Put(key, tune)
			}
			if *svgOut {
				if err := output(".svg", svg); err != nil {
					return fmt.Errorf("error outputting .svg file: %v", err)
				}
			}
			if *wavOut {
				wav, err := scoreblock.Wav(synth.Render(tune, config), *pcm, config)
				if err != nil {
					return fmt.Errorf("could not generate .wav file: %v", err)
				}
				if err := output(".wav", wav); err != nil {
					return fmt.Errorf("error outputting .wav file: %v", err)
				}
			}
			if *midOut {
				mid, err := tune.MIDI()
				if err != nil {
					return fmt.Errorf("could not generate .mid file: %v", err)
				}
				if err := output(".mid", mid); err != nil {
					return fmt.Errorf("error outputting .mid file: %v", err)
				}
			}
			if *play {
				if err := playTune(audio, tune, config); err != nil {
					return fmt.Errorf("could not play block %v of %v: %v", i+1, filename, err)
				}
			}
		}
		return nil
	}

	retCode := 0
	for _, param := range flag.Args() {
		if err := process(param); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			retCode = 1
		}
	}
	os.Exit(retCode)
}

// initLogger configures the shared slog logger so all packages log through
// the same handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, AddSource: debug})
	slog.SetDefault(slog.New(h))
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "scoreblock")
}

func writeOutput(filename string, index, total int, extension string, contents []byte, directory string, stdout bool) error {
	if stdout {
		os.Stdout.Write(contents)
		return nil
	}
	_, name := filepath.Split(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if total > 1 {
		name = fmt.Sprintf("%s-%d", name, index+1)
	}
	dir := directory
	if dir == "" {
		dir = filepath.Dir(filename)
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("could not create output directory %v: %v", dir, err)
	}
	f := filepath.Join(dir, name+extension)
	if err := os.WriteFile(f, contents, 0644); err != nil {
		return fmt.Errorf("could not write file %v: %v", f, err)
	}
	return nil
}

func playTune(audio *oto.Context, tune scoreblock.Tune, config scoreblock.SynthConfig) error {
	engine, transport, err := audio.Output()
	if err != nil {
		return err
	}
	defer engine.Stop()
	if err := engine.Init(context.Background(), tune, config); err != nil {
		return err
	}
	transport.Play()
	deadline := time.Now().Add(time.Duration(tune.Seconds()*float64(time.Second)) + time.Second)
	for transport.Running() && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Scoreblock renders music-notation blocks from markdown documents or bare\nnotation files, plays them, and exports them as .svg, .wav or .mid.\n\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
