package authenticity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const casualAnswer = "Um, I think I just started poking at the logs. Maybe it was the cache? I dunno, it took me like two days and, uh, lots of coffee."

const preparedAnswer = "Firstly, I utilized a microservices architecture to facilitate deployment. Furthermore, we leveraged industry best practices to streamline delivery. In conclusion, the scalable approach demonstrated exceptional organizational effectiveness."

func TestScorer_Deterministic(t *testing.T) {
	scorer := NewScorer()

	first := scorer.Score(preparedAnswer)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, scorer.Score(preparedAnswer))
	}

	// A fresh instance must agree as well.
	assert.Equal(t, first, NewScorer().Score(preparedAnswer))
}

func TestScorer_ShortTextIsUnassessed(t *testing.T) {
	scorer := NewScorer()

	got := scorer.Score("Too short.")
	assert.Equal(t, 0, got.Score)
	assert.Equal(t, VerdictUncertain, got.Verdict)
	assert.False(t, got.Assessed)
	assert.Empty(t, got.Signals)
}

func TestScorer_MinLengthBoundary(t *testing.T) {
	scorer := NewScorer()

	// 19 characters: below the guardrail.
	under := scorer.Score("aaaaaaaaa bbbbbbbbb")
	assert.False(t, under.Assessed)

	// 20 characters: assessed, even if the verdict is uncertain.
	over := scorer.Score("aaaaaaaaa bbbbbbbbbb")
	assert.True(t, over.Assessed)
}

func TestScorer_UnassessedDiffersFromAssessedHuman(t *testing.T) {
	scorer := NewScorer()

	unassessed := scorer.Score("Short one.")
	human := scorer.Score(casualAnswer)

	require.Equal(t, VerdictHuman, human.Verdict)
	require.True(t, human.Assessed)
	assert.False(t, unassessed.Assessed)
}

func TestScorer_CasualSpeechScoresHuman(t *testing.T) {
	got := NewScorer().Score(casualAnswer)

	assert.Equal(t, VerdictHuman, got.Verdict)
	assert.True(t, got.Assessed)
	assert.LessOrEqual(t, got.Score, 40)
	assert.NotContains(t, got.Signals, "low_disfluency")
	assert.NotContains(t, got.Signals, "formal_register")
}

func TestScorer_PreparedTextScoresSynthetic(t *testing.T) {
	got := NewScorer().Score(preparedAnswer)

	assert.Equal(t, VerdictSynthetic, got.Verdict)
	assert.True(t, got.Assessed)
	assert.Equal(t, 100, got.Score) // every heuristic fires, sum capped at 1
	assert.Equal(t, []string{
		"formal_register",
		"enumerators",
		"low_disfluency",
		"uniform_sentences",
		"buzzwords",
		"clean_dictation",
		"long_words",
	}, got.Signals)
}

func TestScorer_CleanProfessionalTextIsUncertain(t *testing.T) {
	text := "We deployed the container infrastructure successfully across multiple distributed environments yesterday."
	got := NewScorer().Score(text)

	assert.Equal(t, VerdictUncertain, got.Verdict)
	assert.Greater(t, got.Score, 40)
	assert.LessOrEqual(t, got.Score, 70)
	assert.Contains(t, got.Signals, "low_disfluency")
	assert.Contains(t, got.Signals, "long_words")
}

func TestScorer_UniformSentencesSignal(t *testing.T) {
	// Three qualifying sentences of identical length, with enough fillers to
	// keep the disfluency signal quiet.
	text := "Um I walked over to the uh store. Um I bought some of the uh bread. Um I came back to the uh house."
	got := NewScorer().Score(text)

	assert.Contains(t, got.Signals, "uniform_sentences")
	assert.NotContains(t, got.Signals, "low_disfluency")
}

func TestScorer_DictationArtifactsSuppressCleanSignal(t *testing.T) {
	text := "i walked into the room and i saw the whiteboard full of diagrams everywhere"
	got := NewScorer().Score(text)

	assert.NotContains(t, got.Signals, "clean_dictation")
}
