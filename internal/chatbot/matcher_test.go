package chatbot

import (
	"context"
	"errors"
	"testing"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

func activeFanpage() *models.Fanpage {
	return &models.Fanpage{
		PageID:               "100200300",
		Name:                 "Shop Test",
		AccessToken:          "token",
		AIEnabled:            true,
		DefaultScriptGroupID: "group-1",
	}
}

func TestFindBestMatchPrefersSubScriptOnTie(t *testing.T) {
	source := &fakeScriptSource{
		subs: []models.SubScript{{
			ID:        1,
			Keywords:  `["xin chào"]`,
			MatchMode: models.MatchContains,
			Response:  "Chào bạn từ sub-script",
		}},
		scripts: []models.Script{{
			ID:       2,
			Triggers: `["xin chào"]`,
			Response: "Chào bạn từ script",
		}},
	}
	matcher := NewMatcher(source)

	match, err := matcher.FindBestMatch(context.Background(), "xin chào", activeFanpage())
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.SubScript == nil || match.SubScript.ID != 1 {
		t.Errorf("tie should go to the sub-script, got %+v", match)
	}
	if match.Template != "Chào bạn từ sub-script" {
		t.Errorf("unexpected template %q", match.Template)
	}
}

func TestFindBestMatchHigherConfidenceScriptWins(t *testing.T) {
	source := &fakeScriptSource{
		subs: []models.SubScript{{
			ID:        1,
			Keywords:  `["giá", "ship", "bảo hành"]`,
			MatchMode: models.MatchContains,
			Response:  "sub",
		}},
		scripts: []models.Script{{
			ID:       2,
			Triggers: `["giá"]`,
			Response: "script",
		}},
	}
	matcher := NewMatcher(source)

	// Sub-script scores 1/3, script scores 1/1.
	match, err := matcher.FindBestMatch(context.Background(), "cho hỏi giá", activeFanpage())
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if match == nil || match.Script == nil || match.Script.ID != 2 {
		t.Fatalf("expected the script to win, got %+v", match)
	}
}

func TestFindBestMatchHonorsPriorityOrderWithinSet(t *testing.T) {
	// The source returns rows already sorted by priority; the first positive
	// candidate wins and later ones are never considered.
	source := &fakeScriptSource{
		subs: []models.SubScript{
			{ID: 1, Priority: 10, Keywords: `["giá"]`, MatchMode: models.MatchContains, Response: "high priority"},
			{ID: 2, Priority: 1, Keywords: `["giá thế nào"]`, MatchMode: models.MatchContains, Response: "low priority"},
		},
	}
	matcher := NewMatcher(source)

	match, err := matcher.FindBestMatch(context.Background(), "giá thế nào", activeFanpage())
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if match == nil || match.SubScript == nil || match.SubScript.ID != 1 {
		t.Fatalf("expected the first-listed sub-script, got %+v", match)
	}
}

func TestFindBestMatchThreshold(t *testing.T) {
	// One keyword of two matches: confidence 0.5, below the 0.6 floor.
	source := &fakeScriptSource{
		subs: []models.SubScript{{
			ID:        1,
			Keywords:  `["giá", "ship"]`,
			MatchMode: models.MatchContains,
			Response:  "sub",
		}},
	}
	matcher := NewMatcher(source)

	match, err := matcher.FindBestMatch(context.Background(), "giá bao nhiêu", activeFanpage())
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if match != nil {
		t.Errorf("confidence 0.5 must not clear the threshold, got %+v", match)
	}

	// Two of three keywords: 2/3 * 1.2 = 0.8, above the floor.
	source.subs[0].Keywords = `["giá", "ship", "bảo hành"]`
	match, err = matcher.FindBestMatch(context.Background(), "giá và ship", activeFanpage())
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if match == nil {
		t.Fatal("confidence 0.8 should clear the threshold")
	}

	// Two of four keywords: 2/4 * 1.2 = exactly 0.6. The floor is inclusive.
	source.subs[0].Keywords = `["giá", "ship", "bảo hành", "đổi trả"]`
	match, err = matcher.FindBestMatch(context.Background(), "giá và ship", activeFanpage())
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if match == nil {
		t.Fatal("confidence exactly 0.6 must be selected")
	}
	if match.Confidence != 0.6 {
		t.Fatalf("confidence = %v, want exactly 0.6", match.Confidence)
	}

	// Three of seven keywords: 3/7 * 1.2 ~ 0.514, just under the floor.
	source.subs[0].Keywords = `["giá", "ship", "bảo hành", "đổi trả", "màu", "size", "cod"]`
	match, err = matcher.FindBestMatch(context.Background(), "giá ship bảo hành thế nào", activeFanpage())
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if match != nil {
		t.Errorf("confidence just under 0.6 must not be selected, got %+v", match)
	}
}

func TestFindBestMatchNoCandidates(t *testing.T) {
	matcher := NewMatcher(&fakeScriptSource{})

	match, err := matcher.FindBestMatch(context.Background(), "xin chào", activeFanpage())
	if err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	if match != nil {
		t.Errorf("expected no match, got %+v", match)
	}
}

func TestFindBestMatchSurvivesOneFailedLookup(t *testing.T) {
	source := &fakeScriptSource{
		subErr: errors.New("db down"),
		scripts: []models.Script{{
			ID:       7,
			Triggers: `["xin chào"]`,
			Response: "script only",
		}},
	}
	matcher := NewMatcher(source)

	match, err := matcher.FindBestMatch(context.Background(), "xin chào", activeFanpage())
	if err != nil {
		t.Fatalf("one failed lookup must not fail the match: %v", err)
	}
	if match == nil || match.Script == nil || match.Script.ID != 7 {
		t.Fatalf("expected the script set to carry the match, got %+v", match)
	}
}

func TestFindBestMatchBothLookupsFailed(t *testing.T) {
	source := &fakeScriptSource{
		subErr:    errors.New("db down"),
		scriptErr: errors.New("db down"),
	}
	matcher := NewMatcher(source)

	match, err := matcher.FindBestMatch(context.Background(), "xin chào", activeFanpage())
	if err == nil {
		t.Fatal("expected an error when both lookups fail")
	}
	if match != nil {
		t.Errorf("expected no match, got %+v", match)
	}
}

func TestFindBestMatchFetchesBothSets(t *testing.T) {
	source := &fakeScriptSource{}
	matcher := NewMatcher(source)

	if _, err := matcher.FindBestMatch(context.Background(), "hello", activeFanpage()); err != nil {
		t.Fatalf("FindBestMatch: %v", err)
	}
	subCalls, scriptCalls := source.calls()
	if subCalls != 1 || scriptCalls != 1 {
		t.Errorf("expected one fetch per set, got subs=%d scripts=%d", subCalls, scriptCalls)
	}
}
