// Package grouping clusters duplicate findings into identity groups: every
// file connected to another through a chain of duplicate matches lands in
// the same group.
package grouping

import (
	"sort"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
)

// Group is one identity cluster, listed by file name.
type Group struct {
	Files []string `json:"files"`
}

// Groups computes the connected components of the duplicate-match graph.
// Nodes are file names; each DuplicateMatch contributes an undirected edge
// between the original file and the matched file. Singletons are dropped:
// a file with no duplicate link is not a group.
func Groups(records []*model.DuplicatedRecord) []Group {
	adj := make(map[string][]string)
	for _, rec := range records {
		for _, m := range rec.Duplicates {
			if rec.OriginalFileName == "" || m.FileName == "" {
				continue
			}
			adj[rec.OriginalFileName] = append(adj[rec.OriginalFileName], m.FileName)
			adj[m.FileName] = append(adj[m.FileName], rec.OriginalFileName)
		}
	}

	names := make([]string, 0, len(adj))
	for name := range adj {
		names = append(names, name)
	}
	sort.Strings(names)

	visited := make(map[string]bool)
	var groups []Group
	for _, name := range names {
		if visited[name] {
			continue
		}
		var component []string
		dfs(name, adj, visited, &component)
		if len(component) >= 2 {
			sort.Strings(component)
			groups = append(groups, Group{Files: component})
		}
	}
	return groups
}

func dfs(name string, adj map[string][]string, visited map[string]bool, component *[]string) {
	visited[name] = true
	*component = append(*component, name)
	for _, neighbor := range adj[name] {
		if !visited[neighbor] {
			dfs(neighbor, adj, visited, component)
		}
	}
}
