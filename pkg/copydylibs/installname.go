package copydylibs

import "path/filepath"

// InstallNameChange is one install_name_tool edit
type InstallNameChange struct {
	Old string // Install name as recorded in the binary
	New string // Replacement, e.g. @rpath/libz.1.dylib
}

// Args returns the install_name_tool arguments applying the change to target.
// If target is the library the old name refers to, its own identity is
// changed with -id. Otherwise the reference is rewritten with -change.
func (c InstallNameChange) Args(target string) []string {
	_, oldFile := splitInstallName(c.Old)
	if filepath.Base(target) == oldFile {
		return []string{"-id", c.New, target}
	}
	return []string{"-change", c.Old, c.New, target}
}

// InstallNames records the changes to make per file, in the order files
// were examined
type InstallNames struct {
	files   []string
	changes map[string][]InstallNameChange
}

// NewInstallNames returns an empty record
func NewInstallNames() *InstallNames {
	return &InstallNames{changes: make(map[string][]InstallNameChange)}
}

// Add appends a change for file
func (n *InstallNames) Add(file string, change InstallNameChange) {
	if _, ok := n.changes[file]; !ok {
		n.files = append(n.files, file)
	}
	n.changes[file] = append(n.changes[file], change)
}

// Files returns the recorded files in first-seen order
func (n *InstallNames) Files() []string {
	return n.files
}

// Changes returns the changes recorded for file
func (n *InstallNames) Changes(file string) []InstallNameChange {
	return n.changes[file]
}

// Len returns the total number of changes
func (n *InstallNames) Len() int {
	total := 0
	for _, c := range n.changes {
		total += len(c)
	}
	return total
}
