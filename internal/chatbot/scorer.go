package chatbot

import (
	"regexp"
	"strings"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

// Score rates how well a message matches a set of trigger keywords under a
// match mode. The result is always in [0, 1]. An empty keyword list never
// matches and scores 0.
//
// A single exact-mode keyword that equals the normalized text short-circuits
// to 1.0 regardless of any other keywords. Otherwise the base score is the
// fraction of keywords that matched, boosted by 1.2 (capped at 1.0) when more
// than one keyword matched.
func Score(text string, keywords []string, mode models.MatchMode) float64 {
	text = strings.ToLower(strings.TrimSpace(text))

	total := 0
	matched := 0
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		total++
		if matchKeyword(text, keyword, mode) {
			if mode == models.MatchExact {
				return 1.0
			}
			matched++
		}
	}

	if total == 0 || matched == 0 {
		return 0
	}

	score := float64(matched) / float64(total)
	if matched > 1 {
		score = score * 1.2
		if score > 1.0 {
			score = 1.0
		}
	}
	return score
}

func matchKeyword(text, keyword string, mode models.MatchMode) bool {
	switch mode {
	case models.MatchExact:
		return text == keyword
	case models.MatchStartsWith:
		return strings.HasPrefix(text, keyword)
	case models.MatchRegex:
		re, err := regexp.Compile("(?i)" + keyword)
		if err != nil {
			// Invalid pattern degrades to substring containment.
			return strings.Contains(text, keyword)
		}
		return re.MatchString(text)
	default:
		return strings.Contains(text, keyword)
	}
}
