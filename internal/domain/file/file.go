package file

import "sort"

// DefaultGroups is the default number of scan groups (and workers).
const DefaultGroups = 4

// Metadata describes one file in a collection at enumeration time.
type Metadata struct {
	Name       string
	Collection string
	Path       string
	Size       int64
}

// Group is an ordered set of files scanned by one worker.
type Group []Metadata

// Size returns the total bytes in the group.
func (g Group) Size() int64 {
	var n int64
	for _, m := range g {
		n += m.Size
	}
	return n
}

// Partition splits files into exactly k groups. Files are ordered by size
// and dealt largest-first, round-robin: the i-th largest goes to group i%k.
// Ties are broken by name so the assignment does not depend on input order.
func Partition(files []Metadata, k int) []Group {
	if k < 1 {
		k = 1
	}
	sorted := append([]Metadata(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Size != sorted[j].Size {
			return sorted[i].Size < sorted[j].Size
		}
		return sorted[i].Name < sorted[j].Name
	})

	groups := make([]Group, k)
	for i := range groups {
		groups[i] = Group{}
	}
	for i := 0; i < len(sorted); i++ {
		groups[i%k] = append(groups[i%k], sorted[len(sorted)-1-i])
	}
	return groups
}
