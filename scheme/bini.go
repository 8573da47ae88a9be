package scheme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Order in which the three sections of a Bini value line appear.
var biniSections = [...]Kind{D, F, G}

// ReadBini parses a scheme in the Bini format.
func ReadBini(r io.Reader) (*Scheme, error) {
	var (
		s      *Scheme
		lineNo int
		seen   []bool
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if len(line) < 2 || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch {
		case strings.EqualFold(fields[0], "bini"):
			if s != nil {
				return nil, errors.Errorf("line %d: duplicate Bini header", lineNo)
			}
			if len(fields) != 5 {
				return nil, errors.Errorf("line %d: invalid Bini line, 4 fields expected: %q", lineNo, line)
			}
			vals, err := atois(fields[1:])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			d, err := NewDimensions(vals[0], vals[1], vals[2], vals[3])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			s = New(d)
			seen = make([]bool, d.Products)
		case strings.EqualFold(fields[0], "product"):
			if len(fields) != 4 || fields[1] != "Gamma" || fields[2] != "Alpha" || fields[3] != "Beta" {
				return nil, errors.Errorf("line %d: invalid product line, \"product Gamma Alpha Beta\" expected: %q", lineNo, line)
			}
		case strings.Contains(line, ";"):
			if s == nil {
				return nil, errors.Errorf("line %d: value line before Bini header", lineNo)
			}
			k, err := s.parseValueLine(line)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNo)
			}
			if seen[k] {
				return nil, errors.Errorf("line %d: duplicate product %d", lineNo, k+1)
			}
			seen[k] = true
		default:
			return nil, errors.Errorf("line %d: unexpected line %q", lineNo, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read Bini scheme")
	}
	if s == nil {
		return nil, errors.New("missing Bini header")
	}
	for k, ok := range seen {
		if !ok {
			return nil, errors.Errorf("missing value line for product %d", k+1)
		}
	}
	return s, nil
}

// parseValueLine parses "k ; gamma ; alpha ; beta" and returns the 0-based product.
func (s *Scheme) parseValueLine(line string) (int, error) {
	parts := strings.Split(line, ";")
	if len(parts) != 4 {
		return 0, errors.Errorf("value line with 4 sections expected: %q", line)
	}
	k, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, errors.Errorf("invalid product index %q", parts[0])
	}
	if k < 1 || k > s.Dims.Products {
		return 0, errors.Errorf("inconsistent product index %d", k)
	}
	k--
	for i, kind := range biniSections {
		vals, err := atois(strings.Fields(parts[i+1]))
		if err != nil {
			return 0, err
		}
		if want := s.Dims.Size(kind); len(vals) != want {
			return 0, errors.Errorf("%d %s values expected, got %d", want, kind.Matrix(), len(vals))
		}
		cols := s.Dims.Cols(kind)
		for j, v := range vals {
			if v < -127 || v > 127 {
				return 0, errors.Errorf("coefficient %d out of range", v)
			}
			s.Set(kind, j/cols, j%cols, k, int8(v))
		}
	}
	return k, nil
}

func atois(fields []string) ([]int, error) {
	res := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, errors.Errorf("invalid integer %q", f)
		}
		res[i] = n
	}
	return res, nil
}

// LoadBini reads a Bini scheme from the file at path.
func LoadBini(path string) (*Scheme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %q", path)
	}
	defer f.Close()
	s, err := ReadBini(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse Bini file %q", path)
	}
	return s, nil
}

// WriteBini writes s in the Bini format. Every line of comment is
// written as a "#" comment before the header.
func WriteBini(w io.Writer, s *Scheme, comment ...string) error {
	bw := bufio.NewWriter(w)
	d := s.Dims
	fmt.Fprintln(bw, "#")
	for _, c := range comment {
		fmt.Fprintf(bw, "# %s\n", c)
	}
	mode := ""
	if s.IsMod2() {
		mode = "(mod 2!) "
	}
	fmt.Fprintf(bw, "# Scheme for the %s matrix multiplication problem in Bini matrix %sformat\n", d.Signature(), mode)
	fmt.Fprintln(bw, "#")
	fmt.Fprintf(bw, "Bini %d %d %d %d\n\n", d.ARows, d.ACols, d.BCols, d.Products)
	fmt.Fprintf(bw, "product %-*s %-*s %s\n", d.Size(D)*3+1, "Gamma", d.Size(F)*3+1, "Alpha", "Beta")
	for k := 0; k < d.Products; k++ {
		fmt.Fprintf(bw, "%3d", k+1)
		for i, kind := range biniSections {
			bw.WriteString(" ;")
			if i == 0 {
				bw.WriteString(" ")
			}
			for _, idx := range d.Indices(kind) {
				fmt.Fprintf(bw, "%3d", s.At(kind, idx.Row, idx.Col, k))
			}
		}
		bw.WriteString("\n")
	}
	fmt.Fprintln(bw, "\n#")
	return errors.Wrap(bw.Flush(), "could not write Bini scheme")
}

// MarshalBini returns the Bini text of s.
func MarshalBini(s *Scheme) []byte {
	var sb strings.Builder
	// Writes to a strings.Builder never fail.
	_ = WriteBini(&sb, s)
	return []byte(sb.String())
}
