package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/quizduel/quizduel-backend/internal/domain"
)

// systemPrompt pins the question-set contract: 10 questions, 5 fixed
// categories, 4 options each, raw JSON output.
const systemPrompt = `
You are a quiz question generator.

Create exactly 10 questions, evenly distributed across the categories from the following list [Sport, General Culture, Movies, Art, History]. Ensure the questions are evenly distributed in different difficulty levels.

Requirements for each question:
- The questions should be in English.
- Return the result as a JSON list containing JSON objects.
- Return the question with the JSON key 'question'.
- Include 4 different answer options, with the JSON key 'options', each a string.
- Specify 1 correct answer, with the JSON key 'correctAnswer', in string format.
- Return the category with the JSON key 'category'.
- The returned JSON will only have keys and values from the information from the mentioned before. Do not add any explanatory messages or statements such as 'Here is a JSON containing your questions', so user can take the JSON string and play around with it.
- Questions should not be repeated.
`

var validate = validator.New()

type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewClient(apiKey, modelName string) (*Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

func (c *Client) Close() {
	c.client.Close()
}

// GenerateQuestions produces the ordered question set for one match. Any
// failure, including a response that does not survive validation, is a
// GenerationError; nothing is published on failure.
func (c *Client) GenerateQuestions(ctx context.Context, description string) (domain.QuestionList, error) {
	prompt := "Generate the question set."
	if description != "" {
		prompt = fmt.Sprintf("Generate the question set. Topic description: %s", description)
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, &domain.GenerationError{Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &domain.GenerationError{Err: fmt.Errorf("no content generated")}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	questions, err := parseQuestions(sb.String())
	if err != nil {
		return nil, &domain.GenerationError{Err: err}
	}
	return questions, nil
}

// parseQuestions decodes the model output and validates it: every
// question carries all four fields, exactly 4 distinct options, and a
// correctAnswer that is one of them.
func parseQuestions(raw string) (domain.QuestionList, error) {
	raw = strings.TrimSpace(raw)
	// Clean up markdown code blocks if present
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var questions domain.QuestionList
	if err := json.Unmarshal([]byte(raw), &questions); err != nil {
		return nil, fmt.Errorf("failed to parse questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("generator returned an empty question list")
	}

	for i, q := range questions {
		if err := validate.Struct(q); err != nil {
			return nil, fmt.Errorf("question %d is invalid: %w", i, err)
		}
		if !optionsContain(q.Options, q.CorrectAnswer) {
			return nil, fmt.Errorf("question %d: correctAnswer %q is not among the options", i, q.CorrectAnswer)
		}
	}

	return questions, nil
}

func optionsContain(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}
