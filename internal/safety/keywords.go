// Package safety implements the rule-based craving-safety classifier and
// the prompt construction around it.
//
// Keyword lists and canned text blocks are module-level configuration data;
// control flow never depends on their contents beyond membership checks, so
// they can be swapped for localization or testing without touching logic.
package safety

import "regexp"

// Trigger phrase lists, checked in strict priority order by Classify.

var crisisTriggers = []string{
	"kill myself",
	"suicide",
	"want to die",
	"end it all",
	"end my life",
	"ending my life",
	"self harm",
	"hurt myself",
	"cut myself",
	"overdose",
	"don't want to live",
}

var disorderedEatingTriggers = []string{
	"binge",
	"binged",
	"purge",
	"purging",
	"throw up",
	"vomiting",
	"laxatives",
	"out of control",
	"can't control",
	"ate too much",
	"punish myself",
	"restrict",
	"starve",
	"stop eating",
	"don't deserve",
	"fast for",
	"fasting for",
	"water fast",
	"cleanse",
	"detox",
	"compensate",
}

var medicalTriggers = []string{
	"should i stop eating",
	"what should i eat",
	"meal plan",
	"diet plan",
	"how many calories",
	"prescription",
	"medication",
	"cure",
	"treat my",
	"diagnose",
	"medical advice",
}

var mentalDistressTriggers = []string{
	"hopeless",
	"hate myself",
	"worthless",
	"depressed",
	"anxious",
	"panic",
	"overwhelming",
	"tired of trying",
}

var mediumRiskTriggers = []string{
	"diabetes",
	"prediabetes",
	"doctor said",
	"health issue",
	"failed",
	"broke my streak",
	"disappointed in myself",
	"worthless",
	"shame",
	"guilty",
	"disgusted",
	"hate myself for",
	"ruined",
	"messed up",
	"why did i",
}

// Phrases within the medium-risk set that indicate a health condition
// rather than a slip.
var healthConditionPhrases = map[string]bool{
	"diabetes":    true,
	"prediabetes": true,
	"doctor said": true,
}

// Shame/failure vocabulary within the medium-risk set indicating a slip.
var slipPhrases = map[string]bool{
	"failed":                 true,
	"broke my streak":        true,
	"disappointed in myself": true,
	"shame":                  true,
	"guilty":                 true,
	"disgusted":              true,
	"hate myself for":        true,
	"ruined":                 true,
	"messed up":              true,
	"why did i":              true,
}

// compiledTrigger pairs a phrase with its word-boundary matcher so the
// classifier never fires inside unrelated words ("cut" must not match
// "cute").
type compiledTrigger struct {
	phrase string
	re     *regexp.Regexp
}

func compileTriggers(phrases []string) []compiledTrigger {
	out := make([]compiledTrigger, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, compiledTrigger{
			phrase: p,
			re:     regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(p) + `\b`),
		})
	}
	return out
}

var (
	crisisMatchers           = compileTriggers(crisisTriggers)
	disorderedEatingMatchers = compileTriggers(disorderedEatingTriggers)
	medicalMatchers          = compileTriggers(medicalTriggers)
	mentalDistressMatchers   = compileTriggers(mentalDistressTriggers)
	mediumRiskMatchers       = compileTriggers(mediumRiskTriggers)
)
