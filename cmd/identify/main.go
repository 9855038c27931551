// Command identify reads lines of text and prints one language label
// per line (§6 "CLI surface"). Also answers to "detect", its alias.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"strings"
	"syscall"

	"github.com/golang/glog"
	"github.com/kho/easy"

	"github.com/heliots/heli"
)

func main() {
	var args struct {
		ModelDir         string `name:"model-dir" usage:"model image directory (see §6 discovery order if empty)"`
		Threads          int    `name:"threads" usage:"0: synchronous, 1: single worker, >1: worker pool"`
		BatchSize        int    `name:"batch-size" usage:"lines dispatched per batch"`
		TopK             int    `name:"topk" usage:"also print up to this many ranked candidates"`
		IgnoreConfidence bool   `name:"ignore-confidence" usage:"always emit the best-scoring language, never und"`
		PrintScores      bool   `name:"print-scores" usage:"append a tab and a score to each output line"`
		PrintRaw         bool   `name:"print-raw" usage:"with --print-scores, print the raw penalty instead of confidence"`
	}
	cpuprofile := flag.String("cpuprofile", "", "path to write CPU profile")
	memprofile := flag.String("memprofile", "", "path to write memory profile")
	args.BatchSize = 64
	easy.ParseFlagsAndArgs(&args)

	if *cpuprofile != "" {
		w := easy.MustCreate(*cpuprofile)
		pprof.StartCPUProfile(w)
		defer func() {
			pprof.StopCPUProfile()
			w.Close()
		}()
	}
	if *memprofile != "" {
		defer func() {
			w := easy.MustCreate(*memprofile)
			pprof.WriteHeapProfile(w)
			w.Close()
		}()
	}

	rest := flag.Args()
	if len(rest) > 0 && (rest[0] == "identify" || rest[0] == "detect") {
		rest = rest[1:]
	}

	dir, err := heli.DiscoverModelDir(args.ModelDir)
	if err != nil {
		glog.Error(err)
		os.Exit(1)
	}
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	model, thresholds, err := heli.LoadImage(dir)
	if err != nil {
		glog.Error(err)
		os.Exit(1)
	}
	defer model.Close()
	runtime.GC()
	runtime.ReadMemStats(&after)
	glog.Infof("model memory overhead: %.2fMB", float64(after.Alloc-before.Alloc)/float64(1<<20))

	if args.IgnoreConfidence {
		thresholds = nil
	}

	macro, err := loadMacrotable(dir, model.Registry())
	if err != nil {
		glog.Warningf("no macrolanguage table loaded: %v", err)
	}

	in, out, err := openInOut(rest)
	if err != nil {
		glog.Error(err)
		os.Exit(1)
	}
	defer out.Close()

	lines, err := readAllLines(in)
	if err != nil {
		glog.Error(err)
		os.Exit(2)
	}

	pipeline := heli.NewPipeline(heli.Options{
		Threads:    args.Threads,
		BatchSize:  args.BatchSize,
		TopK:       args.TopK,
		Thresholds: thresholds,
		Macro:      macro,
	})
	results, err := pipeline.Run(context.Background(), lines, func() *heli.Scorer {
		return heli.NewScorer(model)
	})
	if err != nil {
		glog.Error(err)
		os.Exit(2)
	}

	// A closed output pipe ends the run quietly with exit status 0.
	signal.Ignore(syscall.SIGPIPE)
	reg := model.Registry()
	w := bufio.NewWriter(out)
	for _, res := range results {
		writeResult(w, reg, res, args.PrintScores, args.PrintRaw)
	}
	if err := w.Flush(); err != nil {
		if errors.Is(err, syscall.EPIPE) {
			return
		}
		glog.Error(err)
		os.Exit(2)
	}
}

func writeResult(w *bufio.Writer, reg *heli.Registry, res heli.Result, printScores, printRaw bool) {
	fmt.Fprint(w, reg.CodeOf(res.Label))
	if printScores {
		score := res.Confidence
		if printRaw {
			score = res.Score
		}
		fmt.Fprintf(w, "\t%g", score)
	}
	fmt.Fprintln(w)
	for _, c := range res.TopK {
		fmt.Fprintf(w, "\t%s\t%g\n", reg.CodeOf(c.Lang), c.Score)
	}
}

func openInOut(positional []string) (in *os.File, out *os.File, err error) {
	in, out = os.Stdin, os.Stdout
	if len(positional) > 0 && positional[0] != "-" {
		if in, err = easy.Open(positional[0]); err != nil {
			return nil, nil, err
		}
	}
	if len(positional) > 1 && positional[1] != "-" {
		out = easy.MustCreate(positional[1])
	}
	return in, out, nil
}

func readAllLines(f *os.File) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// loadMacrotable loads the optional macrolanguage table from dir, if
// the model image shipped one (§4.8 "applied only to top-k results").
func loadMacrotable(dir string, reg *heli.Registry) (*heli.Macrotable, error) {
	f, err := easy.Open(dir + "/macrolanguages")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pairs := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("heli: malformed macrolanguage line %q", line)
		}
		pairs[parts[0]] = parts[1]
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return heli.NewMacrotable(reg, pairs)
}
