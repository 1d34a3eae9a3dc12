package compare

import (
	"sort"

	"github.com/mcdonaldj/rarlens/internal/rar"
)

// EntryChange represents a member that differs between two archives
type EntryChange struct {
	Path   string
	Status rune // 'M' modified, 'A' added, 'D' deleted
	Size1  uint64
	Size2  uint64
}

// ListingDiff contains the comparison between two archive listings
type ListingDiff struct {
	Changes  []EntryChange
	Added    int
	Modified int
	Deleted  int
}

// Listings compares two listings by name, CRC and size. Directories are skipped.
func Listings(entries1, entries2 []rar.Entry) *ListingDiff {
	files1 := fileMap(entries1)
	files2 := fileMap(entries2)

	allPaths := make(map[string]bool)
	for path := range files1 {
		allPaths[path] = true
	}
	for path := range files2 {
		allPaths[path] = true
	}

	result := &ListingDiff{}
	for path := range allPaths {
		e1, in1 := files1[path]
		e2, in2 := files2[path]

		change := EntryChange{Path: path}
		switch {
		case in1 && !in2:
			change.Status = 'D'
			change.Size1 = e1.Size
			result.Deleted++
		case !in1 && in2:
			change.Status = 'A'
			change.Size2 = e2.Size
			result.Added++
		case e1.CRC != e2.CRC || e1.Size != e2.Size:
			change.Status = 'M'
			change.Size1 = e1.Size
			change.Size2 = e2.Size
			result.Modified++
		default:
			continue
		}
		result.Changes = append(result.Changes, change)
	}

	// Sort changes: M, A, D then by path
	order := map[rune]int{'M': 0, 'A': 1, 'D': 2}
	sort.Slice(result.Changes, func(i, j int) bool {
		if result.Changes[i].Status != result.Changes[j].Status {
			return order[result.Changes[i].Status] < order[result.Changes[j].Status]
		}
		return result.Changes[i].Path < result.Changes[j].Path
	})

	return result
}

func fileMap(entries []rar.Entry) map[string]rar.Entry {
	files := make(map[string]rar.Entry, len(entries))
	for _, e := range entries {
		if e.IsDirectory {
			continue
		}
		files[e.Name] = e
	}
	return files
}
