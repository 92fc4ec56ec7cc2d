package copydylibs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/blacktop/go-macho"
	"github.com/blacktop/go-macho/types"
)

// MachOLister reads dependencies straight from the Mach-O load commands,
// for hosts without otool
type MachOLister struct{}

// Dependencies implements Lister. The dylib's own LC_ID_DYLIB comes first,
// followed by the linked libraries, matching the order otool -L prints them.
// Fat files list every architecture in turn.
func (l *MachOLister) Dependencies(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	thin, fat, err := readMagic(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch {
	case thin:
		m, err := macho.NewFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Mach-O %s: %w", path, err)
		}
		defer m.Close()
		return machODependencies(m), nil

	case fat:
		ff, err := macho.NewFatFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fat binary %s: %w", path, err)
		}
		defer ff.Close()

		var deps []string
		for _, arch := range ff.Arches {
			deps = append(deps, machODependencies(arch.File)...)
		}
		return deps, nil

	default:
		return nil, fmt.Errorf("%s is not a Mach-O file", path)
	}
}

func machODependencies(m *macho.File) []string {
	var deps []string
	if id := m.DylibID(); id != nil {
		deps = append(deps, id.Name)
	}
	return append(deps, m.ImportedLibraries()...)
}

// readMagic classifies the first four bytes. Thin headers are stored in the
// target's byte order (little-endian on every Apple CPU), fat headers are
// always big-endian.
func readMagic(r io.ReaderAt) (thin, fat bool, err error) {
	var buf [4]byte
	if _, err := r.ReadAt(buf[:], 0); err != nil {
		return false, false, err
	}
	le := types.Magic(binary.LittleEndian.Uint32(buf[:]))
	be := types.Magic(binary.BigEndian.Uint32(buf[:]))
	return le == types.Magic32 || le == types.Magic64, be == types.MagicFat, nil
}

// IsMachO reports whether path starts with a thin or fat Mach-O magic number
func IsMachO(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	thin, fat, err := readMagic(f)
	return err == nil && (thin || fat)
}
