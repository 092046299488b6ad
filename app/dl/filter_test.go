package dl

import (
	"strings"
	"testing"

	"pixivdl/app/pixiv"
)

func intp(v int) *int {
	return &v
}

func sampleIllust() *pixiv.Illust {
	return &pixiv.Illust{
		ID:             555,
		Title:          "test",
		User:           pixiv.User{ID: 42},
		Tags:           []pixiv.Tag{{Name: "猫", TranslatedName: "cat"}, {Name: "オリジナル", TranslatedName: "original"}},
		PageCount:      3,
		SanityLevel:    4,
		Visible:        true,
		TotalBookmarks: 250,
		PageURLs:       []string{"a", "b", "c"},
	}
}

func TestClassifyAccepts(t *testing.T) {
	il := sampleIllust()
	policy := Policy{
		MinLewd:       intp(2),
		MaxLewd:       intp(6),
		ForbiddenTags: NewTagSet([]string{"dog"}),
	}

	verdict, err := Classify(il, policy, nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if verdict.Rejected {
		t.Errorf("Expected acceptance, got rejection: %s", verdict.Reason)
	}
}

func TestClassifyRejectionRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*pixiv.Illust)
		policy Policy
		reason string
	}{
		{
			name:   "invisible",
			mutate: func(il *pixiv.Illust) { il.Visible = false },
			reason: "illustration is not visible",
		},
		{
			name:   "r18",
			mutate: func(il *pixiv.Illust) { il.XRestrict = 1 },
			reason: "illustration is R-18",
		},
		{
			name:   "lewd below minimum",
			policy: Policy{MinLewd: intp(6)},
			reason: "illustration lewd level (4) is below minimum level (6)",
		},
		{
			name:   "lewd above maximum",
			policy: Policy{MaxLewd: intp(2)},
			reason: "illustration lewd level (4) is above maximum level (2)",
		},
		{
			name:   "filtered tag",
			policy: Policy{ForbiddenTags: NewTagSet([]string{"cat"})},
			reason: "illustration contains filtered tags [cat]",
		},
		{
			name:   "missing required tags",
			policy: Policy{RequiredTags: NewTagSet([]string{"bird"})},
			reason: "illustration missing any of the required tags [bird]",
		},
		{
			name:   "too many bookmarks",
			policy: Policy{MaxBookmarks: intp(100)},
			reason: "illustration has too many bookmarks (250 > 100)",
		},
		{
			name:   "not enough bookmarks",
			policy: Policy{MinBookmarks: intp(500)},
			reason: "illustration doesn't have enough bookmarks (250 < 500)",
		},
		{
			name:   "too many pages",
			policy: Policy{MaxPages: intp(2)},
			reason: "illustration has too many pages (3 > 2)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			il := sampleIllust()
			if tt.mutate != nil {
				tt.mutate(il)
			}

			verdict, err := Classify(il, tt.policy, nil)
			if err != nil {
				t.Fatalf("Classify returned error: %v", err)
			}
			if !verdict.Rejected {
				t.Fatal("Expected rejection, got acceptance")
			}
			if verdict.Reason != tt.reason {
				t.Errorf("Expected reason %q, got %q", tt.reason, verdict.Reason)
			}
		})
	}
}

func TestClassifyRulePriority(t *testing.T) {
	// Violates R-18, lewd minimum and bookmark minimum at once; only the
	// highest-priority rule may be reported.
	il := sampleIllust()
	il.XRestrict = 1
	il.SanityLevel = 1
	il.TotalBookmarks = 0

	policy := Policy{MinLewd: intp(4), MinBookmarks: intp(100)}

	verdict, err := Classify(il, policy, nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if verdict.Reason != "illustration is R-18" {
		t.Errorf("Expected R-18 rejection to win, got %q", verdict.Reason)
	}
}

func TestClassifyBlacklist(t *testing.T) {
	il := sampleIllust()

	lookup := func(authorID, artworkID int64, tags []string) (string, error) {
		if authorID != 42 {
			t.Errorf("Expected author 42, got %d", authorID)
		}
		if artworkID != 555 {
			t.Errorf("Expected artwork 555, got %d", artworkID)
		}
		return `tag "cat"`, nil
	}

	verdict, err := Classify(il, Policy{}, lookup)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if verdict.Reason != `illustration is blacklisted (tag "cat")` {
		t.Errorf("Unexpected reason: %q", verdict.Reason)
	}
}

func TestClassifyUnfiltered(t *testing.T) {
	// Unfiltered mode bypasses everything except visibility.
	il := sampleIllust()
	il.XRestrict = 1
	il.TotalBookmarks = 0

	policy := Policy{MinBookmarks: intp(100), Unfiltered: true}

	verdict, err := Classify(il, policy, nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if verdict.Rejected {
		t.Errorf("Expected acceptance in unfiltered mode, got: %s", verdict.Reason)
	}

	il.Visible = false
	verdict, err = Classify(il, policy, nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if !verdict.Rejected {
		t.Error("Invisible works must be rejected even in unfiltered mode")
	}
}

func TestClassifyMatchesTranslatedTags(t *testing.T) {
	il := sampleIllust()

	// "CAT" only matches via case folding of the translated name.
	verdict, err := Classify(il, Policy{ForbiddenTags: NewTagSet([]string{"CAT"})}, nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if !verdict.Rejected {
		t.Fatal("Expected rejection via translated tag")
	}
	if !strings.Contains(verdict.Reason, "cat") {
		t.Errorf("Expected folded tag in reason, got %q", verdict.Reason)
	}
}

func TestClassifyDeterministicReason(t *testing.T) {
	il := sampleIllust()
	policy := Policy{ForbiddenTags: NewTagSet([]string{"cat", "original"})}

	first, err := Classify(il, policy, nil)
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	for i := 0; i < 20; i++ {
		verdict, err := Classify(il, policy, nil)
		if err != nil {
			t.Fatalf("Classify returned error: %v", err)
		}
		if verdict.Reason != first.Reason {
			t.Fatalf("Reason changed between runs: %q vs %q", first.Reason, verdict.Reason)
		}
	}
	if first.Reason != "illustration contains filtered tags [cat, original]" {
		t.Errorf("Unexpected reason: %q", first.Reason)
	}
}
