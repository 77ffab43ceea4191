package inputs

import (
	"strings"
)

// Kind discriminates the supported source reference types.
type Kind string

const (
	KindDir     Kind = "dir"
	KindArchive Kind = "archive"
	KindGit     Kind = "git"
)

// Source is the reference to the project to analyse: a local directory, an
// uploaded archive, or repository coordinates.
type Source struct {
	Kind   Kind   `json:"kind"`
	Path   string `json:"path,omitempty"`
	URL    string `json:"url,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// SourceFile is one decoded text file of the project under analysis.
type SourceFile struct {
	RelPath string
	Content string
}

// DetectSource classifies a raw input argument into a Source. Anything that
// parses as a clone URL is treated as repository coordinates, paths ending in
// .zip as archives, everything else as a directory.
func DetectSource(input, branch string) Source {
	switch {
	case strings.HasPrefix(input, "http://"),
		strings.HasPrefix(input, "https://"),
		strings.HasPrefix(input, "ssh://"),
		strings.HasPrefix(input, "git@"):
		return Source{Kind: KindGit, URL: input, Branch: branch}
	case strings.HasSuffix(strings.ToLower(input), ".zip"):
		return Source{Kind: KindArchive, Path: input}
	default:
		return Source{Kind: KindDir, Path: input}
	}
}

// Describe returns the loggable identity of the source.
func (s Source) Describe() string {
	if s.Kind == KindGit {
		return s.URL
	}
	return s.Path
}
