// Command create-model counts one plain-text corpus of cleaned
// sentences per language into the count tables consumed by binarize
// (§4.9).
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
	"github.com/kho/easy"

	"github.com/heliots/heli"
)

func main() {
	var args struct {
		Input  string `name:"input" usage:"directory of <code>.txt corpora, one cleaned sentence per line"`
		Output string `name:"output" usage:"directory to write <code>.model count tables into"`
		Cutoff int64  `name:"cutoff" usage:"prune keys observed fewer than this many times"`
	}
	args.Cutoff = heli.DefaultPruneCutoff
	easy.ParseFlagsAndArgs(&args)

	if args.Input == "" || args.Output == "" {
		glog.Error("both --input and --output are required")
		os.Exit(1)
	}
	if err := os.MkdirAll(args.Output, 0o755); err != nil {
		glog.Error(err)
		os.Exit(2)
	}

	entries, err := os.ReadDir(args.Input)
	if err != nil {
		glog.Error(err)
		os.Exit(1)
	}

	reg := heli.NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		code := strings.TrimSuffix(e.Name(), ".txt")
		if _, ok := reg.LangIndex(code); !ok {
			glog.Warningf("skipping %s: %q is not a known language code", e.Name(), code)
			continue
		}
		if err := countOne(filepath.Join(args.Input, e.Name()), filepath.Join(args.Output, code+".model"), code, args.Cutoff); err != nil {
			glog.Error(err)
			os.Exit(2)
		}
		if glog.V(1) {
			glog.Infof("counted %s", code)
		}
	}
}

func countOne(inPath, outPath, code string, cutoff int64) error {
	in, err := easy.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	lc, err := heli.CountCorpus(in, code)
	if err != nil {
		return err
	}
	heli.Finalize(lc, cutoff)

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return heli.WriteLangCounts(out, lc)
}
