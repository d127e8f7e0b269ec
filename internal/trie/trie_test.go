package trie

import (
	"slices"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/clinsight/cdsengine/internal/types"
)

func collect(t *Trie, prefix string, limit int) []string {
	var out []string
	for token := range t.PrefixMatches(prefix, limit) {
		out = append(out, token)
	}
	return out
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CKD_NSAID", "ckdnsaid"},
		{"Ibuprofen", "ibuprofen"},
		{"rule-1", "rule"},
		{"rule2", "rule"},
		{"eGFR", "egfr"},
		{"", ""},
		{"123", ""},
		{"QT_interval", "qtinterval"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInsertSearch_RoundTrip(t *testing.T) {
	tr := New()
	tokens := []string{"CKD_NSAID", "CKD_Stage", "QT_Prolongation", "ibuprofen"}
	for _, token := range tokens {
		if err := tr.Insert(token); err != nil {
			t.Fatalf("Insert(%q) error = %v, want nil", token, err)
		}
	}
	for _, token := range tokens {
		if !tr.Search(token) {
			t.Errorf("Search(%q) = false, want true", token)
		}
	}
	if tr.Search("naproxen") {
		t.Errorf("Search(naproxen) = true, want false")
	}
	if tr.Len() != len(tokens) {
		t.Errorf("Len() = %d, want %d", tr.Len(), len(tokens))
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	tr := New()
	if err := tr.Insert("Ibuprofen"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if tr.Search("Ibuprofen") != tr.Search("ibuprofen") {
		t.Errorf("case variants disagree: Search(Ibuprofen)=%v Search(ibuprofen)=%v",
			tr.Search("Ibuprofen"), tr.Search("ibuprofen"))
	}
	if !tr.Search("IBUPROFEN") {
		t.Errorf("Search(IBUPROFEN) = false, want true")
	}
}

func TestSearch_PrefixIsNotToken(t *testing.T) {
	tr := New()
	if err := tr.Insert("testing"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if tr.Search("test") {
		t.Errorf("Search(test) = true, want false (prefix only)")
	}
}

func TestInsert_EmptyNormalization(t *testing.T) {
	tr := New()

	// "123" normalizes to the empty string, which is not present yet.
	if tr.Search("123") {
		t.Errorf("Search(123) = true before empty insert, want false")
	}

	if err := tr.Insert("123"); err != nil {
		t.Fatalf("Insert(123) error = %v", err)
	}
	if !tr.Search("") {
		t.Errorf("Search(\"\") = false after empty insert, want true")
	}
	if !tr.Search("456") {
		t.Errorf("Search(456) = false, want true (normalizes to empty)")
	}
}

func TestInsert_Idempotent(t *testing.T) {
	tr := New()
	for i := 0; i < 3; i++ {
		if err := tr.Insert("CKD_NSAID"); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d after duplicate inserts, want 1", tr.Len())
	}
	matches := collect(tr, "ckd", 10)
	if len(matches) != 1 {
		t.Errorf("PrefixMatches yielded %d results, want 1 (no duplicates)", len(matches))
	}
}

func TestInsert_NormalizationCollision(t *testing.T) {
	tr := New()
	if err := tr.Insert("rule-1"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	nodesAfterFirst := tr.NodeCount()

	// "rule2" collides with "rule-1" under a-z normalization.
	if err := tr.Insert("rule2"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if tr.NodeCount() != nodesAfterFirst {
		t.Errorf("NodeCount() = %d, want %d (collision allocates nothing)", tr.NodeCount(), nodesAfterFirst)
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}

func TestInsert_TokenTooLong(t *testing.T) {
	tr := New()
	long := strings.Repeat("a", types.MaxTokenLength+1)
	if err := tr.Insert(long); err != types.ErrTokenTooLong {
		t.Fatalf("Insert() error = %v, want ErrTokenTooLong", err)
	}
	if tr.NodeCount() != 1 || tr.Len() != 0 {
		t.Errorf("failed insert mutated trie: nodes=%d tokens=%d", tr.NodeCount(), tr.Len())
	}
}

func TestPrefixMatches_Lexicographic(t *testing.T) {
	tr := New()
	for _, token := range []string{"CKD_Stage", "CKD_NSAID"} {
		if err := tr.Insert(token); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	got := collect(tr, "ckd", 10)
	want := []string{"ckdnsaid", "ckdstage"}
	if !slices.Equal(got, want) {
		t.Errorf("PrefixMatches(ckd, 10) = %v, want %v", got, want)
	}
}

func TestPrefixMatches_Limit(t *testing.T) {
	tr := New()
	for _, token := range []string{"aa", "ab", "ac", "ad"} {
		if err := tr.Insert(token); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	got := collect(tr, "a", 2)
	want := []string{"aa", "ab"}
	if !slices.Equal(got, want) {
		t.Errorf("PrefixMatches(a, 2) = %v, want %v", got, want)
	}
	if got := collect(tr, "a", 0); got != nil {
		t.Errorf("PrefixMatches(a, 0) = %v, want empty", got)
	}
}

func TestPrefixMatches_Restartable(t *testing.T) {
	tr := New()
	for _, token := range []string{"warfarin", "watch"} {
		if err := tr.Insert(token); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	seq := tr.PrefixMatches("wa", 10)
	first := []string{}
	for token := range seq {
		first = append(first, token)
	}
	second := []string{}
	for token := range seq {
		second = append(second, token)
	}
	if !slices.Equal(first, second) {
		t.Errorf("sequence not restartable: first=%v second=%v", first, second)
	}
}

func TestClear(t *testing.T) {
	tr := New()
	if err := tr.Insert("amiodarone"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	tr.Clear()
	if tr.Search("amiodarone") {
		t.Errorf("Search() = true after Clear, want false")
	}
	if tr.Len() != 0 || tr.NodeCount() != 1 {
		t.Errorf("Clear left tokens=%d nodes=%d", tr.Len(), tr.NodeCount())
	}

	// Trie remains usable after Clear.
	if err := tr.Insert("sotalol"); err != nil {
		t.Fatalf("Insert() after Clear error = %v", err)
	}
	if !tr.Search("sotalol") {
		t.Errorf("Search(sotalol) = false after re-populate, want true")
	}
}

// genToken produces arbitrary mixed-case alphanumeric tokens including
// characters outside the trie alphabet.
func genToken() gopter.Gen {
	return gen.SliceOf(gen.RuneRange('0', 'z')).Map(func(rs []rune) string {
		if len(rs) > 32 {
			rs = rs[:32]
		}
		return string(rs)
	})
}

// Property: every inserted token is found afterwards.
func TestInsertSearch_PropertyRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("insert then search succeeds", prop.ForAll(
		func(tokens []string) bool {
			tr := New()
			for _, token := range tokens {
				if err := tr.Insert(token); err != nil {
					return false
				}
			}
			for _, token := range tokens {
				if !tr.Search(token) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genToken()),
	))

	properties.TestingRun(t)
}

// Property: search result depends only on the normalized form.
func TestSearch_PropertyNormalizationInvariant(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("case and punctuation do not affect lookup", prop.ForAll(
		func(token string) bool {
			tr := New()
			if err := tr.Insert(token); err != nil {
				return false
			}
			return tr.Search(strings.ToUpper(token)) == tr.Search(strings.ToLower(token))
		},
		genToken(),
	))

	properties.TestingRun(t)
}

// Property: prefix enumeration yields sorted, deduplicated normalized tokens.
func TestPrefixMatches_PropertySortedUnique(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("enumeration is sorted and unique", prop.ForAll(
		func(tokens []string) bool {
			tr := New()
			for _, token := range tokens {
				if err := tr.Insert(token); err != nil {
					return false
				}
			}
			got := collect(tr, "", types.MaxTrieNodes)
			if !slices.IsSorted(got) {
				return false
			}
			seen := map[string]bool{}
			for _, token := range got {
				if seen[token] {
					return false
				}
				seen[token] = true
			}
			return true
		},
		gen.SliceOf(genToken()),
	))

	properties.TestingRun(t)
}
