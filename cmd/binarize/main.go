// Command binarize turns a directory of plain-text per-language count
// tables (§6 "Plain-text training model") into a binary model image
// (§6 "Binary model image") consumable by identify.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/kho/easy"

	"github.com/heliots/heli"
)

func main() {
	var args struct {
		Input         string  `name:"input" usage:"directory of <code>.model plain-text count tables"`
		Output        string  `name:"output" usage:"directory to write the binary model image into"`
		Thresholds    string  `name:"thresholds" usage:"optional confidence thresholds file (<code>\\t<value> per line)"`
		RelevantLangs string  `name:"relevant-langs" usage:"comma-separated subset of languages to build a model for"`
		Scale         float64 `name:"scale" usage:"hash table load-factor multiplier"`
	}
	args.Scale = 1.5
	easy.ParseFlagsAndArgs(&args)

	if args.Input == "" || args.Output == "" {
		glog.Error("both --input and --output are required")
		os.Exit(1)
	}
	if err := os.MkdirAll(args.Output, 0o755); err != nil {
		glog.Error(err)
		os.Exit(2)
	}

	full := heli.NewRegistry()
	reg := full
	if args.RelevantLangs != "" {
		var err error
		reg, err = full.Subset(strings.Split(args.RelevantLangs, ","))
		if err != nil {
			glog.Error(err)
			os.Exit(1)
		}
	}

	entries, err := os.ReadDir(args.Input)
	if err != nil {
		glog.Error(err)
		os.Exit(1)
	}

	builder := heli.NewBuilder(reg, args.Scale)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".model") {
			continue
		}
		code := strings.TrimSuffix(e.Name(), ".model")
		if _, ok := reg.LangIndex(code); !ok {
			if glog.V(1) {
				glog.Infof("skipping %s: not in the selected language set", e.Name())
			}
			continue
		}
		lc, err := loadLangCounts(filepath.Join(args.Input, e.Name()), code)
		if err != nil {
			glog.Error(err)
			os.Exit(1)
		}
		if err := builder.Add(lc); err != nil {
			glog.Error(err)
			os.Exit(1)
		}
	}

	subs, err := builder.Build()
	if err != nil {
		glog.Error(err)
		os.Exit(2)
	}

	thresholds, err := loadOrDefaultThresholds(args.Thresholds, reg)
	if err != nil {
		glog.Error(err)
		os.Exit(1)
	}

	if err := heli.WriteImage(args.Output, reg, subs, thresholds); err != nil {
		glog.Error(err)
		os.Exit(2)
	}
	glog.Infof("wrote model image for %d language(s) to %s", len(reg.Codes()), args.Output)
}

func loadLangCounts(path, code string) (*heli.LangCounts, error) {
	f, err := easy.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return heli.ReadLangCounts(f, code)
}

// loadOrDefaultThresholds loads a thresholds file if given, otherwise
// builds an all-zero table (equivalent to --ignore-confidence at
// identify time, until offline validation produces real thresholds).
func loadOrDefaultThresholds(path string, reg *heli.Registry) (*heli.Thresholds, error) {
	values := make(map[string]float64)
	if path != "" {
		f, err := easy.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			parts := strings.SplitN(line, "\t", 2)
			if len(parts) != 2 {
				return nil, fmt.Errorf("heli: malformed confidence threshold line %q", line)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if err != nil {
				return nil, err
			}
			values[parts[0]] = v
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
	}
	return heli.NewThresholds(reg, values)
}
