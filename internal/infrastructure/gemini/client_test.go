package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `[
  {
    "question": "Which country hosted the 2016 Summer Olympics?",
    "options": ["Brazil", "China", "Greece", "Japan"],
    "correctAnswer": "Brazil",
    "category": "Sport"
  },
  {
    "question": "Who painted the Mona Lisa?",
    "options": ["Raphael", "Leonardo da Vinci", "Michelangelo", "Donatello"],
    "correctAnswer": "Leonardo da Vinci",
    "category": "Art"
  }
]`

func TestParseQuestions_Valid(t *testing.T) {
	questions, err := parseQuestions(validPayload)
	require.NoError(t, err)
	require.Len(t, questions, 2)

	assert.Equal(t, "Brazil", questions[0].CorrectAnswer)
	assert.Equal(t, "Art", questions[1].Category)
	assert.Equal(t, []string{"Brazil", "China", "Greece", "Japan"}, questions[0].Options)
}

func TestParseQuestions_StripsMarkdownFences(t *testing.T) {
	questions, err := parseQuestions("```json\n" + validPayload + "\n```")
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestParseQuestions_InvalidJSON(t *testing.T) {
	_, err := parseQuestions("here are your questions: [...]")
	assert.Error(t, err)
}

func TestParseQuestions_EmptyList(t *testing.T) {
	_, err := parseQuestions("[]")
	assert.Error(t, err)
}

func TestParseQuestions_MissingField(t *testing.T) {
	payload := `[{
		"question": "Who?",
		"options": ["a", "b", "c", "d"],
		"correctAnswer": "a"
	}]`
	_, err := parseQuestions(payload)
	assert.ErrorContains(t, err, "invalid")
}

func TestParseQuestions_WrongOptionCount(t *testing.T) {
	payload := `[{
		"question": "Who?",
		"options": ["a", "b", "c"],
		"correctAnswer": "a",
		"category": "History"
	}]`
	_, err := parseQuestions(payload)
	assert.Error(t, err)
}

func TestParseQuestions_DuplicateOptions(t *testing.T) {
	payload := `[{
		"question": "Who?",
		"options": ["a", "a", "c", "d"],
		"correctAnswer": "a",
		"category": "History"
	}]`
	_, err := parseQuestions(payload)
	assert.Error(t, err)
}

func TestParseQuestions_CorrectAnswerNotAnOption(t *testing.T) {
	payload := `[{
		"question": "Who?",
		"options": ["a", "b", "c", "d"],
		"correctAnswer": "e",
		"category": "History"
	}]`
	_, err := parseQuestions(payload)
	assert.ErrorContains(t, err, "not among the options")
}
