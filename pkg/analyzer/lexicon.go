package analyzer

// Sentiment lexicons. Tokens are matched exactly after lowercasing and
// whitespace splitting; no stemming, no negation handling.

var positiveWords = map[string]bool{
	"love": true, "great": true, "good": true, "awesome": true,
	"amazing": true, "wonderful": true, "excellent": true, "happy": true,
	"thanks": true, "thank": true, "best": true, "perfect": true,
	"nice": true, "beautiful": true, "fantastic": true, "cool": true,
	"yes": true, "lol": true, "haha": true, "congratulations": true,
	"congrats": true,
}

var negativeWords = map[string]bool{
	"hate": true, "bad": true, "terrible": true, "awful": true,
	"horrible": true, "worst": true, "sad": true, "angry": true,
	"no": true, "never": true, "sorry": true, "problem": true,
	"issue": true, "wrong": true, "error": true, "sucks": true,
	"difficult": true, "hard": true, "pain": true, "annoying": true,
}
