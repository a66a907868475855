package jointset

import (
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Session holds the immutable working data of one input table. Run may be
// called any number of times, for example to re-cluster with a different
// class count; runs share nothing but the input.
type Session struct {
	Format Format
	Set    *DualSet
}

// NewSession validates the table and builds the dual-hemisphere set.
func NewSession(table [][2]float64, f Format) (*Session, error) {
	records, err := NewRecords(table, f)
	if err != nil {
		return nil, err
	}
	return &Session{Format: f, Set: NewDualSet(records)}, nil
}

// ClassResult describes one class that survived pruning.
type ClassResult struct {
	// ID numbers retained classes 1..m in clustering-label order.
	ID int `json:"id"`
	// Label is the raw clustering label in 1..2k.
	Label  int `json:"label"`
	Medoid int `json:"medoid"`
	// Members are dual-set indices carrying Label.
	Members []int `json:"members"`
	// Records are the distinct input rows behind Members, ascending.
	Records []int `json:"records"`

	Stats   *FisherSummary `json:"stats,omitempty"`
	Fit     *GoodnessOfFit `json:"fit,omitempty"`
	Density DensityResult  `json:"density"`

	Status Status  `json:"status"`
	Issues []Issue `json:"issues,omitempty"`
}

// Report is the result of one clustering run.
type Report struct {
	RunID      string        `json:"run_id"`
	Format     Format        `json:"format"`
	Records    int           `json:"records"`
	Config     Config        `json:"config"`
	Clustering *Clustering   `json:"clustering"`
	Classes    []ClassResult `json:"classes"`
	// Pruned lists the raw labels dropped because their mean pointed into
	// the upper hemisphere.
	Pruned []int `json:"pruned"`
	// Dataset is the density grid of all input records.
	Dataset DensityResult `json:"dataset"`
	// Issues aggregates every recoverable problem met during the run.
	Issues []Issue `json:"issues,omitempty"`
}

// Run clusters the session's data and characterizes every retained class.
// Only invalid configuration is returned as an error; per-class problems
// are recorded in the report and do not stop other classes.
func (s *Session) Run(cfg Config) (*Report, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	ds := s.Set

	var medoids []int
	var seeding []Issue
	switch cfg.Mode {
	case ModeManual:
		medoids = ManualMedoids(ds.Vectors, cfg.Seeds)
	default:
		seed := cfg.RandomSeed
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		medoids = AutoMedoids(ds, cfg.Classes, rng)
		if cfg.Classes > ds.N {
			seeding = append(seeding, Issue{
				Kind:   IssueClusteringDegeneracy,
				Detail: fmt.Sprintf("%d classes requested but only %d records; using %d", cfg.Classes, ds.N, ds.N),
			})
		}
	}

	clustering, issues, err := ClusterMedoids(ds.Vectors, medoids, cfg)
	if err != nil {
		return nil, err
	}

	rep := &Report{
		RunID:      uuid.NewString(),
		Format:     s.Format,
		Records:    ds.N,
		Config:     cfg,
		Clustering: clustering,
	}
	rep.record(seeding...)
	rep.record(issues...)

	members := make(map[int][]int)
	for i, l := range clustering.Labels {
		members[l] = append(members[l], i)
	}
	labels := make([]int, 0, len(members))
	for l := range members {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	for _, label := range labels {
		cr, keep := s.characterize(label, members[label], clustering.Medoids[label-1], cfg)
		if !keep {
			rep.Pruned = append(rep.Pruned, label)
			continue
		}
		cr.ID = len(rep.Classes) + 1
		rep.Classes = append(rep.Classes, cr)
		rep.record(cr.Issues...)
	}

	rep.Dataset = Density(ds.Primary(), cfg.Workers)
	return rep, nil
}

// characterize computes statistics, goodness of fit and density for one
// raw class. keep is false when the class is pruned.
func (s *Session) characterize(label int, members []int, medoid int, cfg Config) (cr ClassResult, keep bool) {
	ds := s.Set
	cr = ClassResult{Label: label, Medoid: medoid, Members: members}

	seen := make(map[int]bool, len(members))
	vectors := make([]Vector, len(members))
	for i, m := range members {
		vectors[i] = ds.Vectors[m]
		if o := ds.Original(m); !seen[o] {
			seen[o] = true
			cr.Records = append(cr.Records, o)
		}
	}
	sort.Ints(cr.Records)

	fs, issues, err := Fisher(vectors, len(cr.Records), ds.N, label)
	cr.Issues = append(cr.Issues, issues...)
	if err != nil {
		// Without a mean the hemisphere is unknown, so the class is kept
		// and reported rather than silently pruned.
		cr.Issues = append(cr.Issues, Issue{Kind: IssueDegenerateClass, Class: label, Detail: err.Error()})
		cr.Status = StatusError
		cr.Density = Density(vectors, cfg.Workers)
		return cr, true
	}
	if UpperHemisphere(fs.Mean) {
		return cr, false
	}
	cr.Stats = &fs

	fit, err := FitFisher(label, vectors, fs.Mean, fs.K, cfg.Significance)
	if err != nil {
		cr.Issues = append(cr.Issues, Issue{Kind: IssueGoodnessOfFit, Class: label, Detail: "GOF test failed: " + err.Error()})
	} else {
		cr.Fit = fit
	}

	cr.Density = Density(vectors, cfg.Workers)

	cr.Status = StatusOK
	if len(cr.Issues) > 0 {
		cr.Status = StatusWarning
	}
	return cr, true
}

// record appends issues to the report and logs each one.
func (r *Report) record(issues ...Issue) {
	for _, is := range issues {
		log.Printf("jointset: %s", is)
		r.Issues = append(r.Issues, is)
	}
}

// Class returns the retained class with the given ID, or nil.
func (r *Report) Class(id int) *ClassResult {
	if id < 1 || id > len(r.Classes) {
		return nil
	}
	return &r.Classes[id-1]
}

// Summary writes a human readable account of the run.
func (r *Report) Summary(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("Run %s: %d records (%s), %d classes retained, %d pruned\n",
		r.RunID, r.Records, r.Format, len(r.Classes), len(r.Pruned))
	ew.printf("Maximum concentration, all data: %.2f%% per 1%% area\n", r.Dataset.Max)

	for _, c := range r.Classes {
		ew.printf("\nClass %d (label %d) [%s]\n", c.ID, c.Label, c.Status)
		if c.Stats == nil {
			ew.printf("  %d members, mean direction undefined\n", len(c.Members))
			continue
		}
		st := c.Stats
		ew.printf("  n=%d (%.1f%%)\n", st.Count, st.Percent)
		ew.printf("  mean dip direction/dip %05.1f/%04.1f  trend/plunge %05.1f/%04.1f\n",
			st.MeanDipDirection, st.MeanDip, st.MeanTrend, st.MeanPlunge)
		ew.printf("  K=%.2f  cone99=%.2f°  aperture=%.2f°  max concentration=%.2f%%\n",
			st.K, st.ConfidenceCone, st.Aperture, c.Density.Max)
		if c.Fit == nil {
			ew.printf("  GOF test failed\n")
			continue
		}
		f := c.Fit
		ew.printf("  radial (exponential, KS)  p=%.4f %s\n", f.Radial.PValue, verdict(f.Radial.Accept))
		ew.printf("  azimuth (uniform, Kuiper) p=%.4f %s\n", f.Azimuthal.PValue, verdict(f.Azimuthal.Accept))
		ew.printf("  normal (self-fitted, KS)  p=%.4f %s\n", f.Normal.PValue, verdict(f.Normal.Accept))
	}

	if len(r.Issues) > 0 {
		ew.printf("\nWarnings:\n")
		for _, is := range r.Issues {
			ew.printf("  %s\n", is)
		}
	}
	return ew.err
}

func verdict(accept bool) string {
	if accept {
		return "accept"
	}
	return "reject"
}

// errWriter keeps the first write error so Summary can print unchecked.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
