package chunking

import (
	"fmt"
	"strconv"
	"strings"
)

// Candidate metadata keys checked in priority order. Extractors differ in what
// they call these fields, so resolution tries each name before walking up the
// ancestor chain.
var (
	pageKeys    = []string{"page_number", "page", "page_num", "pg", "page_index", "pageno"}
	headingKeys = []string{
		"heading", "title", "section_title", "heading_text",
		"h1", "h2", "h3", "name", "section", "caption", "headings",
	}
)

// maxAncestorLevels bounds the heading walk so a malformed parent cycle cannot
// spin forever.
const maxAncestorLevels = 10

// ResolvePage returns the page number for a unit, preferring its own metadata
// and otherwise taking the first page-like value found walking ancestors
// nearest-to-farthest. Nil when no ancestor knows a page.
func ResolvePage(u *StructuralUnit) *int {
	if u == nil {
		return nil
	}
	if p := pageFromMeta(u.Meta); p != nil {
		return p
	}
	for parent := u.Parent; parent != nil; parent = parent.Parent {
		if p := pageFromMeta(parent.Meta); p != nil {
			return p
		}
	}
	return nil
}

func pageFromMeta(meta map[string]any) *int {
	for _, key := range pageKeys {
		v, ok := meta[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case int:
			return intPtr(n)
		case int32:
			return intPtr(int(n))
		case int64:
			return intPtr(int(n))
		case float64:
			return intPtr(int(n))
		case string:
			if parsed, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return intPtr(parsed)
			}
		}
	}
	return nil
}

func intPtr(n int) *int { return &n }

// ResolveHeadings builds the root-to-leaf heading path for a unit. The unit's
// own heading fields are appended first; ancestor headings found walking
// nearest-to-farthest are inserted at the front, which flips the traversal
// into root-to-leaf order. Breadcrumb rendering downstream relies on that
// ordering. Duplicates keep their first insertion position.
func ResolveHeadings(u *StructuralUnit) []string {
	if u == nil {
		return nil
	}
	var headings []string
	seen := make(map[string]struct{})

	appendHeading := func(val string) {
		if val == "" {
			return
		}
		if _, dup := seen[val]; dup {
			return
		}
		headings = append(headings, val)
		seen[val] = struct{}{}
	}

	for _, key := range headingKeys {
		appendHeading(headingValue(u.Meta[key]))
	}

	parent := u.Parent
	for level := 0; parent != nil && level < maxAncestorLevels; level++ {
		for _, key := range headingKeys {
			val := headingValue(parent.Meta[key])
			if val == "" {
				continue
			}
			if _, dup := seen[val]; dup {
				continue
			}
			headings = append([]string{val}, headings...)
			seen[val] = struct{}{}
		}
		parent = parent.Parent
	}
	return headings
}

// headingValue renders a metadata value as a heading string. List values are
// joined with " > " to keep nested titles on one breadcrumb segment.
func headingValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []string:
		return strings.TrimSpace(strings.Join(val, " > "))
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.TrimSpace(strings.Join(parts, " > "))
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}
