// Package selector resolves ordered CSS selector fallback chains against a live document.
//
// The third-party markup changes without notice, so every lookup of "where does X live"
// goes through a Chain instead of a hard-coded selector. Chains are tried in order and
// resolved again on every call; a stale match is worse than a recomputation.
package selector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// Chain is an ordered list of candidate selectors for one logical element.
type Chain []string

// Match is the outcome of resolving a Chain.
type Match struct {
	Selection *goquery.Selection // Matched elements, nil when nothing matched.
	Selector  string             // The selector that matched.
	Index     int                // Position of Selector in the chain, -1 when nothing matched.
}

// Found reports whether any selector of the chain matched.
func (m Match) Found() bool {
	return m.Selection != nil && m.Selection.Length() > 0
}

// Len returns the number of matched elements.
func (m Match) Len() int {
	if m.Selection == nil {
		return 0
	}
	return m.Selection.Length()
}

var notFound = Match{Index: -1}

// Resolve returns the first element matched by the first selector of the chain that matches
// anything inside scope.
func Resolve(chain Chain, scope *goquery.Selection) Match {
	m := ResolveAll(chain, scope)
	if !m.Found() {
		return m
	}
	m.Selection = m.Selection.First()
	return m
}

// ResolveAll returns every element matched by the first selector of the chain with at least
// one match. Families are never merged.
func ResolveAll(chain Chain, scope *goquery.Selection) Match {
	if scope == nil || scope.Length() == 0 {
		return notFound
	}

	for i, sel := range chain {
		if !Valid(sel) {
			continue
		}
		found := scope.Find(sel)
		if found.Length() > 0 {
			return Match{Selection: found, Selector: sel, Index: i}
		}
	}

	return notFound
}

// Text returns the first non-empty trimmed text produced by the chain in order.
// Unlike Resolve it keeps going when a selector matches an element without text.
func Text(chain Chain, scope *goquery.Selection) string {
	if scope == nil {
		return ""
	}
	for _, sel := range chain {
		if !Valid(sel) {
			continue
		}
		if text := strings.TrimSpace(scope.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// Attr returns the first non-empty trimmed attribute value produced by the chain in order.
func Attr(chain Chain, scope *goquery.Selection, name string) string {
	if scope == nil {
		return ""
	}
	for _, sel := range chain {
		if !Valid(sel) {
			continue
		}
		if value, ok := scope.Find(sel).First().Attr(name); ok {
			if value = strings.TrimSpace(value); value != "" {
				return value
			}
		}
	}
	return ""
}

// Count returns the number of elements each selector of the chain matches, in chain order.
// It is used for diagnostics when a chain fails.
func Count(chain Chain, scope *goquery.Selection) map[string]int {
	counts := make(map[string]int, len(chain))
	for _, sel := range chain {
		if scope == nil || !Valid(sel) {
			counts[sel] = 0
			continue
		}
		counts[sel] = scope.Find(sel).Length()
	}
	return counts
}

// Valid reports whether sel compiles as a CSS selector.
func Valid(sel string) bool {
	if strings.TrimSpace(sel) == "" {
		return false
	}
	_, err := cascadia.Compile(sel)
	return err == nil
}
