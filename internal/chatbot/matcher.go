package chatbot

import (
	"context"
	"log"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

// confidenceThreshold is the fixed policy floor a candidate must reach to be
// selected; anything below defers to the AI fallback or a human agent.
const confidenceThreshold = 0.6

// Match is a selected script or sub-script candidate.
type Match struct {
	SubScript  *models.SubScript
	Script     *models.Script
	Template   string
	Confidence float64
	Action     models.Action
}

// Matcher selects the best scripted reply for an inbound message.
type Matcher struct {
	scripts ScriptSource
}

func NewMatcher(scripts ScriptSource) *Matcher {
	return &Matcher{scripts: scripts}
}

// FindBestMatch scores the fanpage's active sub-scripts and scripts against
// the message and returns the winner, or nil when nothing reaches the
// confidence threshold. The two candidate sets are fetched concurrently.
//
// Within a set, the first candidate with positive confidence wins: the sets
// arrive sorted by descending priority, so the scan is an explicit
// highest-priority-first early exit. Across the two per-set winners the higher
// confidence wins, with ties going to the sub-script.
func (m *Matcher) FindBestMatch(ctx context.Context, text string, fanpage *models.Fanpage) (*Match, error) {
	scope := fanpage.DefaultScriptGroupID

	type subResult struct {
		subs []models.SubScript
		err  error
	}
	type scriptResult struct {
		scripts []models.Script
		err     error
	}

	subCh := make(chan subResult, 1)
	scriptCh := make(chan scriptResult, 1)

	go func() {
		subs, err := m.scripts.ActiveSubScripts(ctx, scope)
		subCh <- subResult{subs, err}
	}()
	go func() {
		scripts, err := m.scripts.ActiveScripts(ctx, scope)
		scriptCh <- scriptResult{scripts, err}
	}()

	subRes := <-subCh
	scriptRes := <-scriptCh

	if subRes.err != nil {
		log.Printf("Matcher: sub-script lookup failed for page %s: %v", fanpage.PageID, subRes.err)
	}
	if scriptRes.err != nil {
		log.Printf("Matcher: script lookup failed for page %s: %v", fanpage.PageID, scriptRes.err)
	}
	if subRes.err != nil && scriptRes.err != nil {
		return nil, subRes.err
	}

	subMatch := bestSubScript(text, subRes.subs)
	scriptMatch := bestScript(text, scriptRes.scripts)

	selected := pickWinner(subMatch, scriptMatch)
	if selected == nil || selected.Confidence < confidenceThreshold {
		return nil, nil
	}
	return selected, nil
}

func bestSubScript(text string, subs []models.SubScript) *Match {
	for i := range subs {
		sub := &subs[i]
		confidence := Score(text, sub.KeywordList(), sub.MatchMode)
		if confidence > 0 {
			return &Match{
				SubScript:  sub,
				Template:   sub.Response,
				Confidence: confidence,
				Action:     sub.Action,
			}
		}
	}
	return nil
}

func bestScript(text string, scripts []models.Script) *Match {
	for i := range scripts {
		script := &scripts[i]
		confidence := Score(text, script.TriggerList(), models.MatchContains)
		if confidence > 0 {
			return &Match{
				Script:     script,
				Template:   script.Response,
				Confidence: confidence,
				Action:     script.Action,
			}
		}
	}
	return nil
}

// pickWinner prefers the sub-script on equal confidence: sub-scripts are the
// richer matching mechanism.
func pickWinner(sub, script *Match) *Match {
	if sub == nil {
		return script
	}
	if script == nil {
		return sub
	}
	if script.Confidence > sub.Confidence {
		return script
	}
	return sub
}
