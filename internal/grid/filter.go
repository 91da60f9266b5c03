package grid

import "strings"

// Sentinel values for the filter controls.
const (
	FilterAll = "all"

	SourceTypeOO = "OO"
	SourceTypePO = "PO"

	CategoryOther = "other"

	LifecycleActive = "active"
	LifecycleClosed = "closed"
)

// namedCategories are the code-prefix buckets; anything else is "other".
var namedCategories = []string{"10", "20", "21", "30"}

// SourceTypeCycle and CategoryCycle enumerate the filter control values in
// menu order, starting from the defaults.
var (
	SourceTypeCycle = []string{FilterAll, SourceTypeOO, SourceTypePO}
	CategoryCycle   = []string{FilterAll, "10", "20", "21", "30", CategoryOther}
	LifecycleCycle  = []string{LifecycleActive, LifecycleClosed}
)

// FilterState holds the current values of the four independent filter
// controls. It is mutated only by explicit user filter changes and read by
// Visible on every re-evaluation.
type FilterState struct {
	SourceType string // "all", "OO" or "PO"; prefix of the PO number
	Category   string // "all", a named bucket, or "other"
	Lifecycle  string // "active" or "closed"
	Search     string // free text, case-insensitive substring
}

// DefaultFilterState matches the grid's initial controls: everything shown
// except closed lines.
func DefaultFilterState() FilterState {
	return FilterState{
		SourceType: FilterAll,
		Category:   FilterAll,
		Lifecycle:  LifecycleActive,
	}
}

// CategoryOf derives the bucket of a product code from its first two
// characters: exactly 10, 20, 21 or 30, anything else is "other".
func CategoryOf(productCode string) string {
	runes := []rune(strings.TrimSpace(productCode))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	prefix := string(runes)
	for _, c := range namedCategories {
		if prefix == c {
			return c
		}
	}
	return CategoryOther
}

// Visible decides whether a canonical row passes the current filters. It is
// a pure function over the canonical row: pending unsaved values never
// influence visibility. Predicates short-circuit in fixed order, cheapest
// first.
func Visible(r Row, fs FilterState) bool {
	// 1. Source type: PO number prefix.
	if fs.SourceType != "" && fs.SourceType != FilterAll {
		if !strings.HasPrefix(strings.ToUpper(r.PONumber), fs.SourceType) {
			return false
		}
	}

	// 2. Category bucket from product code.
	if fs.Category != "" && fs.Category != FilterAll {
		bucket := CategoryOf(r.ProductCode)
		if fs.Category == CategoryOther {
			if bucket != CategoryOther {
				return false
			}
		} else if bucket != fs.Category {
			return false
		}
	}

	// 3. Lifecycle against the closed sentinel.
	status := strings.TrimSpace(r.ExcelStatus)
	switch fs.Lifecycle {
	case LifecycleClosed:
		if status != StatusClosed {
			return false
		}
	default: // active
		if status == StatusClosed {
			return false
		}
	}

	// 4. Completed lines are permanently hidden. This is a fixed business
	// rule, not a user-toggleable filter.
	if r.Outstanding() <= 0 {
		return false
	}

	// 5. Free-text search over the searchable columns.
	return matchesSearch(r, fs.Search)
}

// VisibleRows filters canonical rows preserving order.
func VisibleRows(rows []Row, fs FilterState) []Row {
	var out []Row
	for _, r := range rows {
		if Visible(r, fs) {
			out = append(out, r)
		}
	}
	return out
}

func matchesSearch(r Row, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{r.PONumber, r.ProductCode, r.ProductName, r.Warehouse, r.Remarks} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
