// Package analysis turns solver output files into the scalar
// quantities the optimizer searches over. The supported output format
// is the spreadsheet export of a two-port s-parameter sweep: CSV rows
// of frequency, real and imaginary transmission, from which resonance
// quantities are measured directly off the curve.
package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/emtune/tuner-core/internal/search"
)

// Quantities the analyzer can measure.
const (
	QuantityF0     = "f0"
	QuantityBW     = "three_dB_BW"
	QuantityQR     = "QR"
	QuantityQC     = "QC"
	QuantityQI     = "QI"
)

var supportedQuantities = []string{QuantityQR, QuantityQC, QuantityQI, QuantityF0, QuantityBW}

// freqUnitScale maps a frequency unit label to its multiplier in Hz.
var freqUnitScale = map[string]float64{
	"Hz":  1,
	"KHz": 1e3,
	"MHz": 1e6,
	"GHz": 1e9,
	"THz": 1e12,
	"PHz": 1e15,
}

// SParamAnalyzer measures single-resonator quantities from s-parameter
// spreadsheet output. It implements search.Analyzer and
// search.QuantityValidator.
type SParamAnalyzer struct {
	// FreqUnit is the unit of the frequency column, e.g. "GHz".
	FreqUnit string
	// Ext is the output file extension including the dot. Defaults to
	// ".csv".
	Ext string
}

// NewSParamAnalyzer creates an analyzer for spreadsheet output with
// frequencies in freqUnit.
func NewSParamAnalyzer(freqUnit string) (*SParamAnalyzer, error) {
	if _, ok := freqUnitScale[freqUnit]; !ok {
		return nil, fmt.Errorf("unknown frequency unit %q", freqUnit)
	}
	return &SParamAnalyzer{FreqUnit: freqUnit, Ext: ".csv"}, nil
}

// ValidateQuantity rejects quantity names this analyzer cannot
// measure. Called at optimizer construction.
func (a *SParamAnalyzer) ValidateQuantity(quantity string) error {
	for _, q := range supportedQuantities {
		if q == quantity {
			return nil
		}
	}
	return fmt.Errorf("cannot optimize for %q, supported quantities are %v", quantity, supportedQuantities)
}

// Analyze measures one quantity from outputDir/artifactName plus the
// output extension. A missing output file surfaces as
// search.ErrOutputNotReady so the caller can retry the round later.
func (a *SParamAnalyzer) Analyze(artifactName, outputDir, quantity string) (float64, error) {
	ext := a.Ext
	if ext == "" {
		ext = ".csv"
	}
	path := filepath.Join(outputDir, artifactName+ext)
	curve, err := readCurve(path, freqUnitScale[a.FreqUnit])
	if err != nil {
		return 0, err
	}

	switch quantity {
	case QuantityF0:
		f0, _, err := curve.resonance()
		return f0, err
	case QuantityBW:
		_, bw, err := curve.bandwidth()
		return bw, err
	case QuantityQR:
		qr, _, _, err := curve.qValues()
		return qr, err
	case QuantityQC:
		_, qc, _, err := curve.qValues()
		return qc, err
	case QuantityQI:
		_, _, qi, err := curve.qValues()
		return qi, err
	default:
		return 0, fmt.Errorf("cannot analyze for %q: %w", quantity, errUnknownQuantity)
	}
}

var errUnknownQuantity = errors.New("unknown quantity")

// curve is a transmission magnitude curve in dB over frequency in Hz,
// ordered by frequency.
type curve struct {
	freqs []float64
	magDB []float64
}

// readCurve parses CSV rows of (frequency, re, im), skipping any
// non-numeric header rows.
func readCurve(path string, freqScale float64) (*curve, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, search.ErrOutputNotReady)
	}
	if err != nil {
		return nil, fmt.Errorf("opening solver output %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	c := &curve{}
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing solver output %s: %w", path, err)
	}
	for _, rec := range records {
		if len(rec) < 3 {
			continue
		}
		freq, err1 := strconv.ParseFloat(rec[0], 64)
		re, err2 := strconv.ParseFloat(rec[1], 64)
		im, err3 := strconv.ParseFloat(rec[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			// Header or comment row.
			continue
		}
		mag := math.Hypot(re, im)
		if mag <= 0 {
			return nil, fmt.Errorf("solver output %s: zero transmission at %g", path, freq)
		}
		c.freqs = append(c.freqs, freq*freqScale)
		c.magDB = append(c.magDB, 20*math.Log10(mag))
	}
	if len(c.freqs) < 3 {
		return nil, fmt.Errorf("solver output %s: too few data rows (%d)", path, len(c.freqs))
	}
	return c, nil
}

// resonance finds the transmission dip: its frequency and depth in dB.
func (c *curve) resonance() (f0, minDB float64, err error) {
	minIdx := 0
	for i, m := range c.magDB {
		if m < c.magDB[minIdx] {
			minIdx = i
		}
	}
	if minIdx == 0 || minIdx == len(c.magDB)-1 {
		return 0, 0, fmt.Errorf("resonance dip sits at the sweep edge, widen the sweep")
	}
	return c.freqs[minIdx], c.magDB[minIdx], nil
}

// bandwidth measures the 3 dB full width of the dip by interpolating
// the crossings on both sides of the minimum.
func (c *curve) bandwidth() (f0, bw float64, err error) {
	f0, minDB, err := c.resonance()
	if err != nil {
		return 0, 0, err
	}
	level := minDB + 3

	minIdx := 0
	for i, m := range c.magDB {
		if m < c.magDB[minIdx] {
			minIdx = i
		}
	}

	left := math.NaN()
	for i := minIdx; i > 0; i-- {
		if c.magDB[i-1] >= level && c.magDB[i] < level {
			left = interpCrossing(c.freqs[i-1], c.magDB[i-1], c.freqs[i], c.magDB[i], level)
			break
		}
	}
	right := math.NaN()
	for i := minIdx; i < len(c.magDB)-1; i++ {
		if c.magDB[i] < level && c.magDB[i+1] >= level {
			right = interpCrossing(c.freqs[i], c.magDB[i], c.freqs[i+1], c.magDB[i+1], level)
			break
		}
	}
	if math.IsNaN(left) || math.IsNaN(right) {
		return 0, 0, fmt.Errorf("3 dB points not contained in the sweep, widen the sweep")
	}
	return f0, right - left, nil
}

// qValues derives the resonator, coupling and internal quality factors
// from the dip width and depth: QR = f0/BW, QC = QR/(1-S21min),
// 1/QI = 1/QR - 1/QC.
func (c *curve) qValues() (qr, qc, qi float64, err error) {
	f0, bw, err := c.bandwidth()
	if err != nil {
		return 0, 0, 0, err
	}
	_, minDB, err := c.resonance()
	if err != nil {
		return 0, 0, 0, err
	}

	qr = f0 / bw
	sMin := math.Pow(10, minDB/20)
	if sMin >= 1 {
		return 0, 0, 0, fmt.Errorf("no transmission dip (S21 min %g >= 1)", sMin)
	}
	qc = qr / (1 - sMin)
	if qc <= qr {
		return 0, 0, 0, fmt.Errorf("degenerate quality factors (QC %g <= QR %g)", qc, qr)
	}
	qi = qr * qc / (qc - qr)
	return qr, qc, qi, nil
}

// interpCrossing linearly interpolates the frequency where the curve
// crosses level between two samples.
func interpCrossing(f1, m1, f2, m2, level float64) float64 {
	if m2 == m1 {
		return (f1 + f2) / 2
	}
	return f1 + (level-m1)/(m2-m1)*(f2-f1)
}
