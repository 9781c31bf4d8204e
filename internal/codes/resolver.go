// internal/codes/resolver.go
package codes

import (
	"sort"
	"strings"

	"github.com/tj309c/supply-signals/internal/domain"
	"github.com/tj309c/supply-signals/pkg/logger"
)

// Resolver maps any historical material code to its canonical current code.
// It is built once per run from the supersession table and is immutable and
// safe for concurrent reads afterwards.
type Resolver struct {
	oldToCurrent map[string]string
	families     map[string]domain.CodeFamily
	issues       *domain.IssueLog
}

// NewResolver builds the code-family graph from supersession rows.
// Rows without a current code are skipped. An old code already claimed by a
// different family keeps its first mapping; the conflict is recorded as a
// warning. A code that is both a family's current code and another family's
// old code (a chained supersession) is also flagged: resolution is a single
// hop and never follows the chain.
func NewResolver(rows []domain.SupersessionRow) *Resolver {
	r := &Resolver{
		oldToCurrent: make(map[string]string, len(rows)*2),
		families:     make(map[string]domain.CodeFamily),
		issues:       domain.NewIssueLog("code_resolver"),
	}

	var conflicts []string
	for _, row := range rows {
		current := normalizeCode(row.CurrentCode)
		if current == "" {
			r.issues.Warnf("supersession row without current code skipped (last_old=%q original=%q)",
				row.LastOldCode, row.OriginalCode)
			continue
		}

		fam, ok := r.families[current]
		if !ok {
			fam = domain.CodeFamily{Current: current}
		}

		lastOld := normalizeCode(row.LastOldCode)
		original := normalizeCode(row.OriginalCode)

		for _, old := range []string{lastOld, original} {
			if old == "" || old == current {
				continue
			}
			// A code already claimed by this family (original == last old)
			// is the same supersession step stated twice.
			if existing, claimed := r.oldToCurrent[old]; claimed {
				if existing != current {
					conflicts = append(conflicts, old)
				}
				continue
			}
			r.oldToCurrent[old] = current
			fam.OldCodes = append(fam.OldCodes, old)
		}

		r.families[current] = fam
	}

	var overlapping []string
	for current := range r.families {
		if _, claimed := r.oldToCurrent[current]; claimed {
			overlapping = append(overlapping, current)
		}
	}
	sort.Strings(overlapping)

	r.issues.WarnKeys("old code mapped to multiple current codes, first mapping kept", dedupe(conflicts))
	r.issues.WarnKeys("code is both current and superseded, chains are not collapsed", overlapping)

	logger.Log.Debug().
		Int("families", len(r.families)).
		Int("old_codes", len(r.oldToCurrent)).
		Msg("code resolver built")
	return r
}

// Resolve returns the canonical current code for any code. Codes unknown to
// the supersession table resolve to themselves.
func (r *Resolver) Resolve(code string) string {
	c := normalizeCode(code)
	if c == "" {
		return ""
	}
	if current, ok := r.oldToCurrent[c]; ok {
		return current
	}
	return c
}

// IsOld reports whether the code is a superseded one.
func (r *Resolver) IsOld(code string) bool {
	_, ok := r.oldToCurrent[normalizeCode(code)]
	return ok
}

// FamilyOf returns every code that refers to the same product as the given
// code, current code first. A code with no supersession history returns a
// single-element family of itself.
func (r *Resolver) FamilyOf(code string) []string {
	current := r.Resolve(code)
	if current == "" {
		return nil
	}
	fam, ok := r.families[current]
	if !ok {
		return []string{current}
	}
	out := make([]string, 0, 1+len(fam.OldCodes))
	out = append(out, current)
	out = append(out, fam.OldCodes...)
	return out
}

// Families returns the full family map keyed by current code.
func (r *Resolver) Families() map[string]domain.CodeFamily {
	return r.families
}

// Issues returns the data-quality findings recorded while building the graph.
func (r *Resolver) Issues() []domain.Issue {
	return r.issues.All()
}

// Summary reports the shape of the loaded graph.
func (r *Resolver) Summary() domain.ResolverSummary {
	s := domain.ResolverSummary{
		TotalFamilies: len(r.families),
		TotalOldCodes: len(r.oldToCurrent),
	}
	unique := make(map[string]struct{}, len(r.families)+len(r.oldToCurrent))
	for current, fam := range r.families {
		unique[current] = struct{}{}
		for _, old := range fam.OldCodes {
			unique[old] = struct{}{}
		}
		switch size := 1 + len(fam.OldCodes); {
		case size == 2:
			s.FamiliesWith2Codes++
		case size == 3:
			s.FamiliesWith3Codes++
		case size >= 4:
			s.FamiliesWith4OrMore++
		}
	}
	s.TotalUniqueCodes = len(unique)
	return s
}

// CurrentCodes returns all current codes in deterministic order.
func (r *Resolver) CurrentCodes() []string {
	out := make([]string, 0, len(r.families))
	for current := range r.families {
		out = append(out, current)
	}
	sort.Strings(out)
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func dedupe(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(codes))
	out := codes[:0]
	for _, c := range codes {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
