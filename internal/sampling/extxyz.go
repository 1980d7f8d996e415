package sampling

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/ArnoutMaet/walker-masses/internal/system"
)

// ErrFormat indicates malformed extended-XYZ input.
var ErrFormat = errors.New("sampling: malformed extended-xyz")

// WriteFrame appends one extended-XYZ block: atom count, a comment line
// with the lattice and property declaration, then one line per atom.
func WriteFrame(w io.Writer, f *system.Frame) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n", len(f.Numbers))

	if f.Box != nil {
		fmt.Fprint(bw, `Lattice="`)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				if i != 0 || j != 0 {
					fmt.Fprint(bw, " ")
				}
				fmt.Fprintf(bw, "%.8f", f.Box.At(i, j))
			}
		}
		fmt.Fprint(bw, `" `)
	}
	pbc := "F F F"
	if f.PBC {
		pbc = "T T T"
	}
	fmt.Fprintf(bw, "Properties=species:S:1:pos:R:3 pbc=\"%s\"\n", pbc)

	for i, z := range f.Numbers {
		sym, err := system.Symbol(z)
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "%-2s %16.8f %16.8f %16.8f\n",
			sym, f.Positions.At(i, 0), f.Positions.At(i, 1), f.Positions.At(i, 2))
	}
	return bw.Flush()
}

// ReadFrame parses one frame block. It accepts plain XYZ as well: a
// comment line without a Lattice entry yields a non-periodic frame.
func ReadFrame(r *bufio.Reader) (*system.Frame, error) {
	// Blank lines between frames are tolerated; the comment line below is
	// read verbatim since plain XYZ allows it to be empty.
	countLine, err := nextLine(r)
	for err == nil && strings.TrimSpace(countLine) == "" {
		countLine, err = nextLine(r)
	}
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil || n < 1 {
		return nil, fmt.Errorf("%w: bad atom count %q", ErrFormat, strings.TrimSpace(countLine))
	}

	comment, err := nextLine(r)
	if err != nil {
		return nil, err
	}
	box, err := parseLattice(comment)
	if err != nil {
		return nil, err
	}

	frame := &system.Frame{
		Numbers:   make([]int, n),
		Positions: mat.NewDense(n, 3, nil),
		Box:       box,
		PBC:       box != nil,
	}
	for i := 0; i < n; i++ {
		line, err := nextLine(r)
		if err != nil {
			return nil, fmt.Errorf("%w: truncated after %d atoms", ErrFormat, i)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, fmt.Errorf("%w: atom line %q", ErrFormat, line)
		}
		z, err := system.AtomicNumber(fields[0])
		if err != nil {
			return nil, err
		}
		frame.Numbers[i] = z
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(fields[1+j], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: coordinate %q", ErrFormat, fields[1+j])
			}
			frame.Positions.Set(i, j, v)
		}
	}
	return frame, nil
}

// ReadFile parses all frames of a trajectory file.
func ReadFile(path string) ([]*system.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var frames []*system.Frame
	r := bufio.NewReader(f)
	for {
		frame, err := ReadFrame(r)
		if errors.Is(err, io.EOF) {
			if len(frames) == 0 {
				return nil, fmt.Errorf("%w: no frames in %s", ErrFormat, path)
			}
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
}

func nextLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF && strings.TrimSpace(line) != "" {
		// final line without trailing newline
		return line, nil
	}
	if err != nil {
		return "", err
	}
	return line, nil
}

func parseLattice(comment string) (*mat.Dense, error) {
	idx := strings.Index(comment, `Lattice="`)
	if idx < 0 {
		return nil, nil
	}
	rest := comment[idx+len(`Lattice="`):]
	end := strings.Index(rest, `"`)
	if end < 0 {
		return nil, fmt.Errorf("%w: unterminated Lattice", ErrFormat)
	}
	fields := strings.Fields(rest[:end])
	if len(fields) != 9 {
		return nil, fmt.Errorf("%w: Lattice has %d components", ErrFormat, len(fields))
	}
	data := make([]float64, 9)
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: lattice component %q", ErrFormat, field)
		}
		data[i] = v
	}
	return mat.NewDense(3, 3, data), nil
}
