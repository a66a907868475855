// Command jointset clusters orientation measurements read from a CSV file
// into joint sets and reports Fisher statistics for each set.
//
//	jointset -in joints.csv -format 1 -k 3 -out classified.csv -plot net.png
package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/TrevorS/jointset"
)

// parseSeeds parses a comma-separated list of plunge/trend pairs.
func parseSeeds(s string) ([]jointset.Seed, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]jointset.Seed, 0, len(parts))
	for _, p := range parts {
		pt := strings.Split(strings.TrimSpace(p), "/")
		if len(pt) != 2 {
			return nil, fmt.Errorf("invalid seed '%s': want plunge/trend", p)
		}
		plunge, err := strconv.ParseFloat(strings.TrimSpace(pt[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed plunge '%s': %w", pt[0], err)
		}
		trend, err := strconv.ParseFloat(strings.TrimSpace(pt[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed trend '%s': %w", pt[1], err)
		}
		out = append(out, jointset.Seed{Plunge: plunge, Trend: trend})
	}
	return out, nil
}

// readTable reads a two column numeric table. Extra columns are ignored. A
// first row that does not parse is taken as a header.
func readTable(r io.Reader) ([][2]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var table [][2]float64
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: need 2 columns, got %d", line, len(rec))
		}
		a, errA := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		b, errB := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if errA != nil || errB != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: invalid number in %q", line, rec[:2])
		}
		table = append(table, [2]float64{a, b})
	}
	return table, nil
}

// applyFlags copies every flag set on the command line onto rc.
func applyFlags(fs *flag.FlagSet, rc *RunConfig) {
	fs.Visit(func(f *flag.Flag) {
		v := f.Value.(flag.Getter).Get()
		switch f.Name {
		case "format":
			n := v.(int)
			rc.Format = &n
		case "k":
			k := v.(float64)
			rc.Classes = &k
		case "mode":
			m := v.(string)
			rc.Mode = &m
		case "seeds":
			seeds := v.(string)
			rc.Seeds = &seeds
		case "algorithm":
			a := v.(string)
			rc.Algorithm = &a
		case "metric":
			m := v.(string)
			rc.Metric = &m
		case "max-iterations":
			n := v.(int)
			rc.MaxIterations = &n
		case "seed":
			n := v.(uint64)
			rc.RandomSeed = &n
		case "significance":
			x := v.(float64)
			rc.Significance = &x
		case "workers":
			n := v.(int)
			rc.Workers = &n
		}
	})
}

func main() {
	fs := flag.CommandLine
	in := fs.String("in", "", "Input CSV file with two numeric columns (default stdin)")
	fs.Int("format", 1, "Input format: 1 dip direction/dip, 2 dip/dip direction, 3 trend/plunge, 4 plunge/trend")
	fs.Float64("k", 1, "Number of joint sets for automatic seeding (rounded)")
	fs.String("mode", "auto", "Seeding mode: 'auto' or 'manual'")
	fs.String("seeds", "", "Manual seeds as plunge/trend pairs, e.g. 40/270,80/90")
	fs.String("algorithm", "alternate", "Medoid refinement: 'alternate' or 'pam'")
	fs.String("metric", "chord", "Distance between vectors: 'chord' or 'angular'")
	fs.Int("max-iterations", 100, "Iteration cap for medoid refinement")
	fs.Uint64("seed", 0, "Random seed for automatic seeding (0 uses the clock)")
	fs.Float64("significance", 0.05, "Goodness-of-fit significance level")
	fs.Int("workers", 0, "Worker goroutines (0 uses all CPUs)")
	configPath := fs.String("config", "", "Optional JSON run configuration; flags override it")
	out := fs.String("out", "", "Write classified records to this CSV file")
	jsonOut := fs.String("json", "", "Write the full report to this JSON file")
	plotOut := fs.String("plot", "", "Write an equal-area stereonet to this PNG file")
	interactive := fs.Bool("interactive", false, "After each run, read a new class count (or seeds) from stdin")
	flag.Parse()

	rc := &RunConfig{}
	if *configPath != "" {
		loaded, err := LoadRunConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		rc = loaded
	}
	applyFlags(fs, rc)
	if err := rc.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg := jointset.DefaultConfig()
	if err := rc.Apply(&cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *interactive && *in == "" {
		log.Fatalf("-interactive reads answers from stdin, so -in is required")
	}
	var r io.Reader = os.Stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatalf("Could not open input file %s: %v", *in, err)
		}
		defer f.Close()
		r = f
	}
	table, err := readTable(r)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	session, err := jointset.NewSession(table, rc.GetFormat())
	if err != nil {
		log.Fatalf("Invalid input: %v", err)
	}
	log.Printf("Loaded %d records (%s)", len(table), session.Format)

	outputs := outputPaths{csv: *out, json: *jsonOut, plot: *plotOut}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		rep, err := session.Run(cfg)
		if err != nil {
			log.Fatalf("Run failed: %v", err)
		}
		if err := rep.Summary(os.Stdout); err != nil {
			log.Fatalf("Failed to write summary: %v", err)
		}
		if err := outputs.write(session, rep); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		if !*interactive {
			return
		}

		next, ok := prompt(scanner, cfg)
		if !ok {
			return
		}
		cfg = next
	}
}

// prompt asks for the next class count (or seed list in manual mode) until
// it gets a usable answer. ok is false when the user ends the session.
func prompt(scanner *bufio.Scanner, cfg jointset.Config) (jointset.Config, bool) {
	for {
		if cfg.Mode == jointset.ModeManual {
			fmt.Print("\nSeeds as plunge/trend,... (blank to finish): ")
		} else {
			fmt.Print("\nNumber of classes (blank to finish): ")
		}
		if !scanner.Scan() {
			return cfg, false
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return cfg, false
		}

		if cfg.Mode == jointset.ModeManual {
			seeds, err := parseSeeds(line)
			if err != nil {
				log.Printf("%v", err)
				continue
			}
			cfg.Seeds = seeds
			return cfg, true
		}
		k, err := strconv.ParseFloat(line, 64)
		if err != nil {
			log.Printf("invalid class count '%s': %v", line, err)
			continue
		}
		cfg.Classes = jointset.RoundClasses(k)
		return cfg, true
	}
}

type outputPaths struct {
	csv, json, plot string
}

func (o outputPaths) write(s *jointset.Session, rep *jointset.Report) error {
	if o.csv != "" {
		f, err := os.Create(o.csv)
		if err != nil {
			return err
		}
		rows := jointset.Export(s.Set, rep)
		if err := jointset.WriteCSV(f, rows, s.Format); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Printf("Wrote %d classified records to %s", len(rows), o.csv)
	}
	if o.json != "" {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.json, data, 0644); err != nil {
			return err
		}
		log.Printf("Wrote report %s to %s", rep.RunID, o.json)
	}
	if o.plot != "" {
		if err := writeStereonet(o.plot, s, rep); err != nil {
			return err
		}
		log.Printf("Wrote stereonet to %s", o.plot)
	}
	return nil
}
