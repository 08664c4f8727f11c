package sentiment

// lexicon holds signed word weights. The entries follow the AFINN word list
// trimmed to vocabulary that actually shows up in stream chat, plus a few
// chat-specific terms (emote-ish slang, "pog", "kekw", etc.).
var lexicon = map[string]int{
	// strongly positive
	"amazing":     4,
	"awesome":     4,
	"fantastic":   4,
	"incredible":  4,
	"outstanding": 5,
	"superb":      5,
	"wonderful":   4,
	"brilliant":   4,
	"excellent":   3,
	"perfect":     3,
	"best":        3,
	"beautiful":   3,
	"love":        3,
	"loved":       3,
	"loves":       3,
	"happy":       3,
	"hilarious":   2,
	"win":         4,
	"winner":      4,
	"winning":     4,
	"epic":        3,
	"hype":        3,
	"hyped":       3,
	"pog":         3,
	"poggers":     3,
	"pogchamp":    3,

	// mildly positive
	"good":      3,
	"great":     3,
	"nice":      3,
	"cool":      1,
	"fun":       4,
	"funny":     4,
	"glad":      3,
	"like":      2,
	"likes":     2,
	"liked":     2,
	"thanks":    2,
	"thank":     2,
	"welcome":   2,
	"wow":       4,
	"yay":       3,
	"yes":       1,
	"lol":       3,
	"lmao":      4,
	"haha":      3,
	"kekw":      3,
	"gg":        3,
	"ez":        1,
	"clutch":    3,
	"insane":    2,
	"cracked":   2,
	"smart":     1,
	"strong":    2,
	"top":       2,
	"solid":     2,
	"interested": 2,
	"interesting": 2,
	"excited":   3,
	"hope":      2,
	"hopeful":   2,
	"lucky":     3,
	"luck":      3,

	// mildly negative
	"bad":      -3,
	"sad":      -2,
	"boring":   -3,
	"bored":    -2,
	"meh":      -2,
	"annoying": -2,
	"annoyed":  -2,
	"tired":    -2,
	"weird":    -2,
	"wrong":    -2,
	"miss":     -2,
	"missed":   -2,
	"lost":     -3,
	"lose":     -3,
	"loses":    -3,
	"losing":   -3,
	"fail":     -2,
	"failed":   -2,
	"no":       -1,
	"not":      -1,
	"never":    -1,
	"doubt":    -1,
	"scared":   -2,
	"scuffed":  -2,
	"lag":      -1,
	"laggy":    -2,
	"cringe":   -2,
	"oof":      -1,
	"rip":      -1,

	// strongly negative
	"awful":      -3,
	"terrible":   -3,
	"horrible":   -3,
	"worst":      -3,
	"hate":       -3,
	"hates":      -3,
	"hated":      -3,
	"disgusting": -3,
	"trash":      -3,
	"garbage":    -3,
	"stupid":     -2,
	"idiot":      -3,
	"dumb":       -3,
	"toxic":      -3,
	"scam":       -2,
	"scammer":    -3,
	"cheat":      -3,
	"cheater":    -3,
	"cheating":   -3,
	"angry":      -3,
	"furious":    -4,
	"rage":       -2,
	"mad":        -3,
	"pathetic":   -3,
	"useless":    -2,
	"ruined":     -3,
	"disaster":   -2,
	"cry":        -1,
	"crying":     -2,
	"ugly":       -3,
	"gross":      -2,
	"sucks":      -3,
	"suck":       -3,
	"damn":       -4,
	"wtf":        -4,
	"ban":        -2,
	"banned":     -2,
	"kick":       -1,
	"kicked":     -1,
	"spam":       -2,
	"spammer":    -3,
}
