// Package jointset groups geological orientation measurements into joint
// sets and describes each set with Fisher spherical statistics.
//
// Planes (dip direction/dip) and lines (trend/plunge) are turned into unit
// vectors together with their reflections, so that clustering treats poles
// and axes as undirected. The doubled set is partitioned around medoids,
// each class gets a mean direction, concentration K, 99% confidence cone and
// spherical aperture, and classes whose mean points upward are pruned in
// favor of their antipodal twins.
//
// Basic usage:
//
//	s, err := jointset.NewSession(table, jointset.FormatDipDirectionDip)
//	cfg := jointset.DefaultConfig()
//	cfg.Classes = 3
//	rep, err := s.Run(cfg)
//	// rep.Classes[i].Stats is the Fisher summary of class i+1
//	// rep.Classes[i].Fit holds the goodness-of-fit tests
//	rows := jointset.Export(s.Set, rep)
//
// # Seeding
//
// In automatic mode (the default) initial medoids come from a symmetric
// k-means++ draw. In manual mode each plunge/trend seed, and its reflection,
// is snapped to the nearest measured vector:
//
//	cfg.Mode = jointset.ModeManual
//	cfg.Seeds = []jointset.Seed{{Plunge: 40, Trend: 270}, {Plunge: 80, Trend: 90}}
//
// # Goodness of fit
//
// Each retained class is rotated so that its mean lies on the vertical axis
// and, separately, on the horizon. The colatitudes are tested against an
// exponential distribution (Kolmogorov–Smirnov), the azimuths against a
// uniform one (Kuiper), and the horizon-frame longitudes against a normal
// distribution whose spread is estimated from the same sample. The last
// test is a self-consistency check only.
//
// # Density
//
// Density counts, for each node of a fixed 331-node polar grid on the
// equal-area projection, the percentage of axes falling inside a counting
// cone covering 1% of the hemisphere.
package jointset
