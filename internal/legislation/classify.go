package legislation

// Classification tags a vote group by partisan alignment
type Classification string

const (
	PartyLine  Classification = "party_line"
	Bipartisan Classification = "bipartisan"
	Mixed      Classification = "mixed"
)

// bipartisanFloor is the minimum yea+nay of the larger party for a bipartisan tag
const bipartisanFloor = 50

// Classify tags a group from its headline tallies
func Classify(g *VoteGroup) Classification {
	return ClassifyTally(g.Tally)
}

// ClassifyTally compares Republican and Democratic yea ratios. Ratios are
// yea / (yea+nay); a party with no yea or nay votes has ratio 0. Comparisons
// are done in integer tenths so boundary ratios land exactly.
func ClassifyTally(t Tally) Classification {
	r, d := t.Republican, t.Democrat

	if (above90(r) && below10(d)) || (above90(d) && below10(r)) {
		return PartyLine
	}

	larger := r.Participants()
	if dp := d.Participants(); dp > larger {
		larger = dp
	}
	if atLeast30(r) && atLeast30(d) && larger >= bipartisanFloor {
		return Bipartisan
	}
	return Mixed
}

func above90(p PartyTally) bool {
	n := p.Participants()
	return n > 0 && p.Yea*10 > n*9
}

func below10(p PartyTally) bool {
	return p.Yea*10 < p.Participants() || p.Participants() == 0
}

func atLeast30(p PartyTally) bool {
	n := p.Participants()
	return n > 0 && p.Yea*10 >= n*3
}
