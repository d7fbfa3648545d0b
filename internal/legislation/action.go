package legislation

import "regexp"

var actionPattern = regexp.MustCompile(`(?i)^On (the )?(Motion to |)(Passage|Commit|Recommit|Agreeing|Ordering|Cloture|Table|Suspend|Reconsider|Amendment|Nomination|Joint Resolution)`)

// ProceduralAction extracts the short action label from a vote question,
// e.g. "On Motion to Table ..." gives "Motion to Table". Questions that do
// not follow the "On ..." form are cut to their first 25 characters.
func ProceduralAction(question string) string {
	if m := actionPattern.FindStringSubmatch(question); m != nil {
		return m[2] + m[3]
	}
	return truncate(question, 25)
}
