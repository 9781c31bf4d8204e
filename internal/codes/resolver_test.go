// internal/codes/resolver_test.go
package codes

import (
	"testing"

	"github.com/tj309c/supply-signals/internal/domain"
)

func testRows() []domain.SupersessionRow {
	return []domain.SupersessionRow{
		{CurrentCode: "NEW-1", LastOldCode: "MID-1", OriginalCode: "ORIG-1"},
		{CurrentCode: "NEW-2", LastOldCode: "OLD-2", OriginalCode: "OLD-2"},
		{CurrentCode: "NEW-3", LastOldCode: "OLD-3", OriginalCode: ""},
		{CurrentCode: "", LastOldCode: "ORPHAN", OriginalCode: "ORPHAN-ORIG"},
	}
}

func TestResolveOldCodes(t *testing.T) {
	r := NewResolver(testRows())

	cases := []struct {
		in, want string
	}{
		{"MID-1", "NEW-1"},
		{"ORIG-1", "NEW-1"},
		{"NEW-1", "NEW-1"},
		{"OLD-2", "NEW-2"},
		{"OLD-3", "NEW-3"},
		{"UNKNOWN-9", "UNKNOWN-9"},
		{"  mid-1 ", "NEW-1"},
	}
	for _, tc := range cases {
		if got := r.Resolve(tc.in); got != tc.want {
			t.Errorf("Resolve(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r := NewResolver(testRows())
	for _, code := range []string{"MID-1", "ORIG-1", "NEW-1", "OLD-2", "UNKNOWN-9"} {
		once := r.Resolve(code)
		if twice := r.Resolve(once); twice != once {
			t.Errorf("Resolve(Resolve(%q)): got %q then %q", code, once, twice)
		}
	}
}

func TestFamilyContainsAllCodes(t *testing.T) {
	r := NewResolver(testRows())

	// Every code in a family must resolve back into the same family.
	for _, seed := range []string{"NEW-1", "MID-1", "ORIG-1"} {
		fam := r.FamilyOf(seed)
		if len(fam) != 3 {
			t.Fatalf("FamilyOf(%q) = %v, want 3 codes", seed, fam)
		}
		if fam[0] != "NEW-1" {
			t.Errorf("FamilyOf(%q)[0] = %q, want current code first", seed, fam[0])
		}
		for _, member := range fam {
			if r.Resolve(member) != "NEW-1" {
				t.Errorf("family member %q resolves to %q, want NEW-1", member, r.Resolve(member))
			}
		}
	}
}

func TestOriginalEqualToLastOldNotDuplicated(t *testing.T) {
	r := NewResolver(testRows())
	fam := r.FamilyOf("NEW-2")
	if len(fam) != 2 {
		t.Fatalf("FamilyOf(NEW-2) = %v, want [NEW-2 OLD-2]", fam)
	}
}

func TestUnknownCodeFamilyIsItself(t *testing.T) {
	r := NewResolver(testRows())
	fam := r.FamilyOf("LONER-1")
	if len(fam) != 1 || fam[0] != "LONER-1" {
		t.Fatalf("FamilyOf(LONER-1) = %v, want [LONER-1]", fam)
	}
}

func TestRowWithoutCurrentCodeSkippedWithWarning(t *testing.T) {
	r := NewResolver(testRows())
	if r.Resolve("ORPHAN") != "ORPHAN" {
		t.Errorf("orphan old code must resolve to itself, got %q", r.Resolve("ORPHAN"))
	}
	var warned bool
	for _, is := range r.Issues() {
		if is.Severity == domain.SeverityWarning {
			warned = true
		}
	}
	if !warned {
		t.Error("expected a warning for the row without a current code")
	}
}

func TestConflictingOldCodeKeepsFirstMapping(t *testing.T) {
	rows := []domain.SupersessionRow{
		{CurrentCode: "NEW-A", LastOldCode: "SHARED"},
		{CurrentCode: "NEW-B", LastOldCode: "SHARED"},
	}
	r := NewResolver(rows)
	if got := r.Resolve("SHARED"); got != "NEW-A" {
		t.Errorf("Resolve(SHARED) = %q, want first-seen NEW-A", got)
	}
	var conflictWarning bool
	for _, is := range r.Issues() {
		if len(is.Keys) > 0 && is.Keys[0] == "SHARED" {
			conflictWarning = true
		}
	}
	if !conflictWarning {
		t.Error("expected a conflict warning naming SHARED")
	}
}

func TestChainedSupersessionWarnsAndStaysSingleHop(t *testing.T) {
	cases := []struct {
		name string
		rows []domain.SupersessionRow
	}{
		{"chain in row order", []domain.SupersessionRow{
			{CurrentCode: "MID", LastOldCode: "FIRST"},
			{CurrentCode: "LAST", LastOldCode: "MID"},
		}},
		{"chain in reverse order", []domain.SupersessionRow{
			{CurrentCode: "LAST", LastOldCode: "MID"},
			{CurrentCode: "MID", LastOldCode: "FIRST"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewResolver(tc.rows)

			// Resolution is one hop: FIRST keeps its direct mapping even
			// though MID was itself superseded.
			if got := r.Resolve("FIRST"); got != "MID" {
				t.Errorf("Resolve(FIRST) = %q, want MID", got)
			}
			if got := r.Resolve("MID"); got != "LAST" {
				t.Errorf("Resolve(MID) = %q, want LAST", got)
			}

			var warned bool
			for _, is := range r.Issues() {
				for _, k := range is.Keys {
					if k == "MID" {
						warned = true
					}
				}
			}
			if !warned {
				t.Error("expected a warning naming MID as both current and superseded")
			}
		})
	}
}

func TestIsOld(t *testing.T) {
	r := NewResolver(testRows())
	if !r.IsOld("MID-1") {
		t.Error("IsOld(MID-1) = false, want true")
	}
	if r.IsOld("NEW-1") {
		t.Error("IsOld(NEW-1) = true, want false")
	}
	if r.IsOld("UNKNOWN-9") {
		t.Error("IsOld(UNKNOWN-9) = true, want false")
	}
}

func TestSummary(t *testing.T) {
	r := NewResolver(testRows())
	s := r.Summary()
	if s.TotalFamilies != 3 {
		t.Errorf("TotalFamilies = %d, want 3", s.TotalFamilies)
	}
	if s.TotalOldCodes != 4 {
		t.Errorf("TotalOldCodes = %d, want 4", s.TotalOldCodes)
	}
	if s.FamiliesWith3Codes != 1 {
		t.Errorf("FamiliesWith3Codes = %d, want 1", s.FamiliesWith3Codes)
	}
	if s.FamiliesWith2Codes != 2 {
		t.Errorf("FamiliesWith2Codes = %d, want 2", s.FamiliesWith2Codes)
	}
	if s.TotalUniqueCodes != 7 {
		t.Errorf("TotalUniqueCodes = %d, want 7", s.TotalUniqueCodes)
	}
}
