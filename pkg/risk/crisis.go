package risk

import "regexp"

// CrisisMessage points someone at immediate help. It is surfaced whenever
// DetectCrisis returns a flag.
const CrisisMessage = "If you are in immediate danger, please contact local emergency services now. " +
	"In the U.S. you can call or text 988 to reach the Suicide & Crisis Lifeline at any time."

const (
	FlagSelfHarm   = "self_harm"
	FlagHarmOthers = "harm_to_others"
)

var crisisPatterns = []struct {
	flag string
	re   *regexp.Regexp
}{
	{FlagSelfHarm, regexp.MustCompile(`(?i)\b(suicid\w*|kill(ing)? myself|end(ing)? my life|want(ed)? to die|self[- ]harm\w*|hurt(ing)? myself|cut(ting)? myself|no reason to live)\b`)},
	{FlagHarmOthers, regexp.MustCompile(`(?i)\b(kill(ing)? (someone|somebody|him|her|them)|hurt(ing)? (someone|somebody|others))\b`)},
}

// DetectCrisis returns the crisis flags whose patterns appear in content.
// Flags are advisory and do not change the score.
func DetectCrisis(content string) []string {
	var flags []string
	for _, p := range crisisPatterns {
		if p.re.MatchString(content) {
			flags = append(flags, p.flag)
		}
	}
	return flags
}
