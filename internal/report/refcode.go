package report

import (
	"strings"

	"archreport/internal/archive"
)

// ReferenceCodeOptions controls how reference codes are composed.
type ReferenceCodeOptions struct {
	Inherit        bool   // compose identifiers along the ancestor path
	Separator      string // between path identifiers
	RepositoryCode string // prefixed with a space when set
}

// ReferenceCode composes the reference code of n from its ancestors (root to
// parent, tree root excluded) and its own identifier.
func (o ReferenceCodeOptions) ReferenceCode(n *archive.Node, ancestors []*archive.Node) string {
	sep := o.Separator
	if sep == "" {
		sep = "-"
	}

	var parts []string
	if o.Inherit {
		for _, a := range ancestors {
			if a.Identifier != "" {
				parts = append(parts, a.Identifier)
			}
		}
	}
	if n.Identifier != "" {
		parts = append(parts, n.Identifier)
	}

	code := strings.Join(parts, sep)
	if o.RepositoryCode != "" && code != "" {
		return o.RepositoryCode + " " + code
	}
	return code
}
