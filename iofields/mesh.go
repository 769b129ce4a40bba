package iofields

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cfdsim/simplecfd/mesh"
)

// ReadBCTypeMatrix parses the mesh-description boundary-type file spec.md
// §6 names: one row per newline, whitespace-separated name tokens within a
// row. Unlike the numeric matrix files, this rank's ny, nx are not known
// in advance of reading it — this file IS the rank's shape, so the shape
// is inferred from the file itself (row count, first row's token count)
// rather than passed in, and every row is required to carry the same
// token count.
func ReadBCTypeMatrix(path string) (names []string, ny, nx int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("iofields: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		row := strings.Fields(line)
		if nx == 0 {
			nx = len(row)
		} else if len(row) != nx {
			return nil, 0, 0, fmt.Errorf("iofields: %s row %d has %d columns, expected %d", path, ny, len(row), nx)
		}
		names = append(names, row...)
		ny++
	}
	if err := sc.Err(); err != nil {
		return nil, 0, 0, err
	}
	if ny == 0 || nx == 0 {
		return nil, 0, 0, fmt.Errorf("iofields: %s is empty", path)
	}
	return names, ny, nx, nil
}

// ZoneVelocity is one line of a zone-velocity file: zone id plus its
// prescribed u, v.
type ZoneVelocity struct {
	Zone int
	U, V float64
}

// ReadZoneVelocities parses a zone-velocity file: one "zoneID u v" triple
// per line.
func ReadZoneVelocities(path string) ([]ZoneVelocity, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no zones declared for this mesh
		}
		return nil, fmt.Errorf("iofields: open %s: %w", path, err)
	}
	defer f.Close()

	var zones []ZoneVelocity
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("iofields: malformed zone-velocity line %q in %s", line, path)
		}
		zone, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("iofields: bad zone id %q in %s: %w", fields[0], path, err)
		}
		u, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("iofields: bad u %q in %s: %w", fields[1], path, err)
		}
		v, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("iofields: bad v %q in %s: %w", fields[2], path, err)
		}
		zones = append(zones, ZoneVelocity{Zone: zone, U: u, V: v})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return zones, nil
}

// LoadMesh builds one rank's Mesh from a mesh folder, per spec.md §6's
// file layout: params.* for dx/dy, bctype_<rank>.txt for this rank's
// ny*nx boundary-type matrix (mandatory — it is also where this rank's
// shape comes from, see ReadBCTypeMatrix), zoneid_<rank>.txt for its
// zone-id matrix (optional), and zonevel_<rank>.txt for prescribed zone
// velocities (optional) — mesh description files are pre-partitioned
// per rank at generation time, the same convention spec.md §6 already
// uses for the steady/ initial-field files.
//
// Initial fields (steady/u_<rank>.dat etc.) are loaded separately by
// LoadInitialFields, since their failure is non-fatal per spec.md §7
// while a malformed mesh description is a fatal configuration error.
func LoadMesh(folder string, rank int) (*mesh.Mesh, float64, float64, error) {
	dx, dy, err := findParams(folder)
	if err != nil {
		return nil, 0, 0, err
	}

	bcPath := fmt.Sprintf("%s/bctype_%d.txt", folder, rank)
	names, ny, nx, err := ReadBCTypeMatrix(bcPath)
	if err != nil {
		return nil, 0, 0, err
	}

	b := mesh.NewBuilder(nx, ny)
	b.SetFromBCTypeNames(names)

	zonePath := fmt.Sprintf("%s/zoneid_%d.txt", folder, rank)
	if ids, err := ReadMatrix(zonePath, ny, nx); err == nil {
		intIDs := make([]int, len(ids))
		for i, v := range ids {
			intIDs[i] = int(v)
		}
		b.SetZoneIDs(intIDs)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, 0, 0, err
	}

	zones, err := ReadZoneVelocities(fmt.Sprintf("%s/zonevel_%d.txt", folder, rank))
	if err != nil {
		return nil, 0, 0, err
	}
	for _, z := range zones {
		b.SetZoneVelocity(z.Zone, z.U, z.V)
	}

	return b.Build(), dx, dy, nil
}

// LoadInitialFields loads one rank's steady-state initial fields. Per
// spec.md §7, a missing file is not fatal unless cfg requires it: the
// caller is expected to zero-initialize and log on !ok.
func LoadInitialFields(folder string, rank, ny, nx int) (u, v, p, uf, vf []float64, ok bool, err error) {
	load := func(name string) ([]float64, bool, error) {
		path := fmt.Sprintf("%s/steady/%s_%d.dat", folder, name, rank)
		return LoadField(path, ny, nx)
	}
	var okAll = true
	var firstErr error
	u, okU, errU := load("u")
	v, okV, errV := load("v")
	p, okP, errP := load("p")
	uf, okUf, errUf := load("uf")
	vf, okVf, errVf := load("vf")
	for _, pair := range []struct {
		ok  bool
		err error
	}{{okU, errU}, {okV, errV}, {okP, errP}, {okUf, errUf}, {okVf, errVf}} {
		if !pair.ok {
			okAll = false
			if firstErr == nil {
				firstErr = pair.err
			}
		}
	}
	return u, v, p, uf, vf, okAll, firstErr
}

func findParams(folder string) (float64, float64, error) {
	for _, name := range []string{"params.txt", "params.dat", "params"} {
		if dx, dy, err := ReadParams(folder + "/" + name); err == nil {
			return dx, dy, nil
		}
	}
	return 0, 0, fmt.Errorf("iofields: no params file found in %s", folder)
}
