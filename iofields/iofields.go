// Package iofields implements the ASCII whitespace-separated field I/O
// spec.md §6 names: the params file (dx, dy), mesh description matrices
// (zone layout, boundary types, zone velocities) and per-rank initial and
// per-timestep field files. Parsing follows the teacher's readfiles
// package idiom (bufio.Reader, strconv parsing of whitespace-separated
// tokens) but returns error instead of panicking, per spec.md §7's "log,
// don't abort" policy for file I/O failure.
package iofields

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadParams parses a mesh folder's params file: two whitespace-separated
// scalars, dx then dy, per spec.md §6.
func ReadParams(path string) (dx, dy float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("iofields: open params file %s: %w", path, err)
	}
	defer f.Close()

	vals, err := readTokens(f, 2)
	if err != nil {
		return 0, 0, fmt.Errorf("iofields: parse params file %s: %w", path, err)
	}
	return vals[0], vals[1], nil
}

// ReadMatrix parses an ASCII matrix of shape ny*nx, rows separated by
// newlines, columns whitespace-separated, into a flat row-major slice.
func ReadMatrix(path string, ny, nx int) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("iofields: open %s: %w", path, err)
	}
	defer f.Close()

	vals, err := readTokens(f, ny*nx)
	if err != nil {
		return nil, fmt.Errorf("iofields: parse %s: %w", path, err)
	}
	return vals, nil
}

// WriteMatrix writes a flat row-major ny*nx field as an ASCII matrix, one
// row per line, matching the input format ReadMatrix consumes — used for
// the per-timestep field output spec.md §6 describes.
func WriteMatrix(path string, field []float64, ny, nx int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("iofields: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 0; i < ny; i++ {
		for j := 0; j < nx; j++ {
			if j > 0 {
				w.WriteByte(' ')
			}
			fmt.Fprintf(w, "%.17g", field[i*nx+j])
		}
		w.WriteByte('\n')
	}
	return w.Flush()
}

// LoadField reads one rank's initial field file (u_<r>.dat etc.). On
// failure it reports ok=false rather than returning a hard error, so the
// caller can log and zero-initialize per spec.md §7's documented
// weakness, or treat it as fatal when cfg.FailOnMissingField is set.
func LoadField(path string, ny, nx int) (field []float64, ok bool, err error) {
	field, err = ReadMatrix(path, ny, nx)
	if err != nil {
		return make([]float64, ny*nx), false, err
	}
	return field, true, nil
}

// readTokens reads exactly n whitespace-separated float64 tokens from r.
func readTokens(r io.Reader, n int) ([]float64, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	vals := make([]float64, 0, n)
	for sc.Scan() {
		tok := strings.TrimSpace(sc.Text())
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid token %q: %w", tok, err)
		}
		vals = append(vals, v)
		if len(vals) == n {
			return vals, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("expected %d values, got %d", n, len(vals))
}
