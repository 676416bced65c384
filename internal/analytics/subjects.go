package analytics

import (
	"math/rand/v2"
	"strings"
)

var subjectTemplates = []string{
	"{persona}, unlock faster {benefit}",
	"New: Make {benefit} happen today",
	"A smarter path to {benefit}",
	"Quick win for {persona}: {benefit}",
	"Because you value {benefit}",
}

var subjectBenefits = []string{"workflows", "savings", "onboarding", "insights", "decisions", "automation"}

// SuggestSubjectLines fills n randomly chosen templates for persona.
// The generator is seeded from seed on every call, so equal arguments give equal output.
func SuggestSubjectLines(persona string, n int, seed int64) []string {
	if n <= 0 {
		return []string{}
	}
	rng := rand.New(rand.NewPCG(uint64(seed), 0))

	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		tpl := subjectTemplates[rng.IntN(len(subjectTemplates))]
		benefit := subjectBenefits[rng.IntN(len(subjectBenefits))]
		r := strings.NewReplacer("{persona}", persona, "{benefit}", benefit)
		out = append(out, r.Replace(tpl))
	}
	return out
}
