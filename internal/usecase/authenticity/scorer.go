package authenticity

import (
	"math"
	"strings"
	"unicode"
)

// Verdict classifies an answer transcript
type Verdict string

const (
	VerdictHuman     Verdict = "human"
	VerdictUncertain Verdict = "uncertain"
	VerdictSynthetic Verdict = "synthetic"
)

// Assessment is the result of scoring one transcript. Assessed distinguishes
// a real human verdict from the unassessed sentinel returned for texts below
// the minimum length; both carry VerdictUncertain-looking fields otherwise.
type Assessment struct {
	Score    int      `json:"score"` // 0..100
	Verdict  Verdict  `json:"verdict"`
	Assessed bool     `json:"assessed"`
	Signals  []string `json:"signals,omitempty"` // heuristics that fired, in evaluation order
}

// Heuristic weights. The capped sum scales to a 0..100 score.
const (
	weightFormalRegister   = 0.2
	weightEnumerators      = 0.15
	weightLowDisfluency    = 0.3
	weightUniformSentences = 0.2
	weightBuzzwords        = 0.1
	weightCleanDictation   = 0.15
	weightLongWords        = 0.2
)

const (
	minAssessableChars = 20

	disfluencyRatioMax     = 0.02
	sentenceVarianceMax    = 10.0
	qualifyingSentenceLen  = 5 // sentences must exceed this word count
	minQualifyingSentences = 3
	cleanDictationMinChars = 50
	longWordMinLen         = 8
	longWordRatioMin       = 0.15

	scoreSyntheticAbove = 70
	scoreUncertainAbove = 40
)

// Lowercased single-word markers matched against normalized tokens.
var formalRegisterWords = []string{
	"furthermore", "therefore", "moreover", "consequently", "additionally",
	"thus", "hence", "nevertheless", "notwithstanding",
	"utilize", "utilizes", "utilized", "facilitate", "facilitates", "facilitated",
	"endeavor", "ascertain", "commence",
}

var enumeratorWords = []string{
	"firstly", "secondly", "thirdly", "lastly",
}

var enumeratorPhrases = []string{
	"in conclusion", "in summary", "to summarize",
}

var disfluencyWords = []string{
	"um", "uh", "er", "erm", "ah", "hmm",
	"maybe", "perhaps", "probably", "like",
	"honestly", "basically", "actually",
}

var disfluencyPhrases = []string{
	"i think", "i mean", "i guess", "you know", "kind of", "sort of",
}

var buzzwordPhrases = []string{
	"best practices", "leverage", "leveraging", "scalable approach",
	"synergy", "paradigm", "cutting-edge", "state-of-the-art",
	"holistic", "streamline", "robust solution", "value proposition",
}

// Scorer estimates whether an answer transcript reads as dictated human
// speech or as prepared synthetic text. It is a deterministic heuristic with
// no side effects; false positives and negatives are expected and acceptable.
type Scorer struct{}

// NewScorer creates a new Scorer instance
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score evaluates one transcript. Same text always yields the same result.
func (s *Scorer) Score(text string) Assessment {
	if len(text) < minAssessableChars {
		return Assessment{Score: 0, Verdict: VerdictUncertain, Assessed: false}
	}

	lowered := strings.ToLower(text)
	rawTokens := strings.Fields(text)
	tokens := normalizeTokens(rawTokens)

	sum := 0.0
	signals := make([]string, 0, 7)

	if containsAnyWord(tokens, formalRegisterWords) {
		sum += weightFormalRegister
		signals = append(signals, "formal_register")
	}

	if containsAnyWord(tokens, enumeratorWords) || containsAnyPhrase(lowered, enumeratorPhrases) {
		sum += weightEnumerators
		signals = append(signals, "enumerators")
	}

	if disfluencyRatio(lowered, tokens) < disfluencyRatioMax {
		sum += weightLowDisfluency
		signals = append(signals, "low_disfluency")
	}

	if variance, ok := sentenceLengthVariance(text); ok && variance < sentenceVarianceMax {
		sum += weightUniformSentences
		signals = append(signals, "uniform_sentences")
	}

	if containsAnyPhrase(lowered, buzzwordPhrases) {
		sum += weightBuzzwords
		signals = append(signals, "buzzwords")
	}

	if len(text) > cleanDictationMinChars && !hasDictationArtifacts(text, rawTokens) {
		sum += weightCleanDictation
		signals = append(signals, "clean_dictation")
	}

	if longWordRatio(tokens) > longWordRatioMin {
		sum += weightLongWords
		signals = append(signals, "long_words")
	}

	score := int(math.Round(math.Min(sum, 1.0) * 100))

	verdict := VerdictHuman
	switch {
	case score > scoreSyntheticAbove:
		verdict = VerdictSynthetic
	case score > scoreUncertainAbove:
		verdict = VerdictUncertain
	}

	return Assessment{Score: score, Verdict: verdict, Assessed: true, Signals: signals}
}

// normalizeTokens lowercases tokens and strips surrounding punctuation
func normalizeTokens(raw []string) []string {
	tokens := make([]string, 0, len(raw))
	for _, w := range raw {
		w = strings.Trim(w, ".,!?;:'\"()-")
		if w == "" {
			continue
		}
		tokens = append(tokens, strings.ToLower(w))
	}
	return tokens
}

func containsAnyWord(tokens []string, words []string) bool {
	for _, tok := range tokens {
		for _, w := range words {
			if tok == w {
				return true
			}
		}
	}
	return false
}

func containsAnyPhrase(lowered string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}

// disfluencyRatio counts hesitation markers and hedge phrases per word
func disfluencyRatio(lowered string, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}

	count := 0
	for _, tok := range tokens {
		for _, d := range disfluencyWords {
			if tok == d {
				count++
				break
			}
		}
	}
	for _, p := range disfluencyPhrases {
		count += strings.Count(lowered, p)
	}

	return float64(count) / float64(len(tokens))
}

// sentenceLengthVariance computes the population variance of word counts
// across sentences longer than qualifyingSentenceLen words. The bool result
// is false when fewer than minQualifyingSentences qualify.
func sentenceLengthVariance(text string) (float64, bool) {
	sentences := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	lengths := make([]float64, 0, len(sentences))
	for _, sent := range sentences {
		n := len(strings.Fields(sent))
		if n > qualifyingSentenceLen {
			lengths = append(lengths, float64(n))
		}
	}
	if len(lengths) < minQualifyingSentences {
		return 0, false
	}

	mean := 0.0
	for _, n := range lengths {
		mean += n
	}
	mean /= float64(len(lengths))

	variance := 0.0
	for _, n := range lengths {
		variance += (n - mean) * (n - mean)
	}
	variance /= float64(len(lengths))

	return variance, true
}

// hasDictationArtifacts looks for the rough edges live dictation leaves
// behind: doubled spaces, a lone lowercase "i", missing spaces after
// punctuation, or a sentence opening in lowercase.
func hasDictationArtifacts(text string, rawTokens []string) bool {
	if strings.Contains(text, "  ") {
		return true
	}

	for _, tok := range rawTokens {
		if strings.Trim(tok, ".,!?;:'\"") == "i" {
			return true
		}
	}

	runes := []rune(text)
	for i := 1; i < len(runes)-1; i++ {
		r := runes[i]
		if (r == ',' || r == '.' || r == ';' || r == ':') &&
			unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1]) {
			return true
		}
	}

	trimmed := strings.TrimSpace(text)
	if trimmed != "" {
		first := []rune(trimmed)[0]
		if unicode.IsLetter(first) && unicode.IsLower(first) {
			return true
		}
	}

	return false
}

// longWordRatio measures the share of words at or above longWordMinLen runes
func longWordRatio(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	long := 0
	for _, tok := range tokens {
		if len([]rune(tok)) >= longWordMinLen {
			long++
		}
	}
	return float64(long) / float64(len(tokens))
}
