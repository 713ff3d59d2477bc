package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dijkstrabc/shittykbsystem/internal/kb/models"
)

func point(id, standard string, similar ...string) models.KnowledgePoint {
	return models.KnowledgePoint{
		ID:               id,
		StandardQuestion: standard,
		SimilarQuestions: similar,
		Answer:           "<p>answer " + id + "</p>",
		Status:           models.StatusPublished,
	}
}

func TestMatchEmptyQuery(t *testing.T) {
	candidates := []models.KnowledgePoint{point("kp1", "how to reset password")}

	for _, query := range []string{"", "   ", "\t\n "} {
		if got := Match(query, candidates); got != nil {
			t.Errorf("Match(%q) = %v, want nil", query, got.ID)
		}
	}
}

func TestMatchEmptyCandidates(t *testing.T) {
	assert.Nil(t, Match("anything", nil))
	assert.Nil(t, Match("anything", []models.KnowledgePoint{}))
}

func TestMatchScoresAgainstCandidateLength(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		comparison string
		want       float64
	}{
		{"exact one word", "refund", "refund", 1.0},
		{"query superset of short candidate", "how do i refund an order", "refund order", 1.0},
		{"half overlap", "reset password", "reset password for admin account", 2.0 / 5.0},
		{"case folded", "RESET Password", "reset password", 1.0},
		{"no overlap", "billing", "shipping times", 0},
		{"empty candidate", "billing", "   ", 0},
		{"duplicate words collapse", "a a b", "a b", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.query, tt.comparison)
			if got != tt.want {
				t.Errorf("Score(%q, %q) = %v, want %v", tt.query, tt.comparison, got, tt.want)
			}
		})
	}
}

func TestMatchThresholdIsStrict(t *testing.T) {
	// Two of four candidate words overlap: score exactly 0.5, not selected.
	boundary := []models.KnowledgePoint{point("kp1", "reset password admin account")}
	assert.Nil(t, Match("reset password something else", boundary))

	// Two of three overlap: 0.666..., selected.
	above := []models.KnowledgePoint{point("kp2", "reset password account")}
	got := Match("reset password something", above)
	if assert.NotNil(t, got) {
		assert.Equal(t, "kp2", got.ID)
	}
}

func TestMatchCJKSingleToken(t *testing.T) {
	// No whitespace inside the question, so it tokenizes as one word and an
	// exact hit scores 1/1.
	candidates := []models.KnowledgePoint{point("kp1", "退货政策是什么？")}

	got := Match("退货政策是什么？", candidates)
	if assert.NotNil(t, got) {
		assert.Equal(t, "kp1", got.ID)
	}
}

func TestMatchSimilarQuestionsScoredIndependently(t *testing.T) {
	candidates := []models.KnowledgePoint{
		point("kp1", "completely unrelated standard question wording here", "billing update"),
		point("kp2", "shipping times"),
	}

	got := Match("how do i do a billing update", candidates)
	if assert.NotNil(t, got) {
		assert.Equal(t, "kp1", got.ID)
	}
}

func TestMatchTieKeepsFirstSeen(t *testing.T) {
	candidates := []models.KnowledgePoint{
		point("first", "reset password"),
		point("second", "reset password"),
	}

	got := Match("reset password", candidates)
	if assert.NotNil(t, got) {
		assert.Equal(t, "first", got.ID)
	}
}

func TestMatchDeterministic(t *testing.T) {
	candidates := []models.KnowledgePoint{
		point("kp1", "update billing info", "change payment method"),
		point("kp2", "cancel subscription"),
		point("kp3", "update shipping address"),
	}

	first := Match("how to update billing info", candidates)
	for i := 0; i < 10; i++ {
		again := Match("how to update billing info", candidates)
		assert.Equal(t, first, again)
	}
}

func TestMatchDoesNotInspectStatus(t *testing.T) {
	// Pre-filtering to published is the caller's contract; handed an
	// unfiltered slice, Match will happily return a draft point.
	draft := point("kp1", "retention policy")
	draft.Status = models.StatusDraft

	got := Match("retention policy", []models.KnowledgePoint{draft})
	if assert.NotNil(t, got) {
		assert.Equal(t, "kp1", got.ID)
	}
}
