package gate

import (
	"context"
	"encoding/json"
	"fmt"

	tokenizer "github.com/sandwich-go/gpt3-encoder"
	"github.com/sashabaranov/go-openai"
)

//go:generate moq --out mocks/openai_client.go --pkg mocks --skip-ensure --with-resets . OpenAIClient:OpenAIClientMock

// OpenAIScorer is an alternative scorer using an LLM instead of the
// dedicated classification model. Useful for chats where no pretrained
// model fits the language mix.
type OpenAIScorer struct {
	client OpenAIClient
	params OpenAIConfig
}

// OpenAIConfig contains parameters for OpenAIScorer.
type OpenAIConfig struct {
	// https://platform.openai.com/docs/api-reference/chat/create#chat/create-max_tokens
	MaxTokensResponse int // hard limit for the number of tokens in the response
	// the OpenAI has a limit for the number of tokens in the request + response
	MaxTokensRequest  int // max request length in tokens
	MaxSymbolsRequest int // fallback: max request length in symbols, if tokenizer failed
	Model             string
	SystemPrompt      string
}

// OpenAIClient is a subset of used openai client methods.
type OpenAIClient interface {
	CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const defaultPrompt = `I'll give you a text from the messaging application and you will return me a json with two fields: {"spam": true/false, "confidence":1-100}. Set spam:true only if confidence above 80`

type openAIResponse struct {
	IsSpam     bool `json:"spam"`
	Confidence int  `json:"confidence"`
}

// NewOpenAIScorer makes a scorer running spam checks with an LLM.
func NewOpenAIScorer(client OpenAIClient, params OpenAIConfig) *OpenAIScorer {
	if params.SystemPrompt == "" {
		params.SystemPrompt = defaultPrompt
	}
	if params.MaxTokensResponse == 0 {
		params.MaxTokensResponse = 1024
	}
	if params.MaxTokensRequest == 0 {
		params.MaxTokensRequest = 1024
	}
	if params.MaxSymbolsRequest == 0 {
		params.MaxSymbolsRequest = 8192
	}
	if params.Model == "" {
		params.Model = "gpt-4"
	}
	return &OpenAIScorer{client: client, params: params}
}

// Score maps the LLM verdict and confidence to a probability in [0, 1].
func (o *OpenAIScorer) Score(ctx context.Context, text string) (float64, error) {
	resp, err := o.sendRequest(ctx, text)
	if err != nil {
		return 0, err
	}

	confidence := float64(resp.Confidence) / 100
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	if resp.IsSpam {
		return confidence, nil
	}
	return 1 - confidence, nil
}

func (o *OpenAIScorer) sendRequest(ctx context.Context, msg string) (response openAIResponse, err error) {
	// reduce the request size with tokenizer and fallback to a symbols-based
	// reducer if the tokenizer fails
	reduceRequest := func(text string) (result string) {
		defaultReducer := func(text string) (result string) {
			if len(text) <= o.params.MaxSymbolsRequest {
				return text
			}
			return text[:o.params.MaxSymbolsRequest]
		}

		encoder, tokErr := tokenizer.NewEncoder()
		if tokErr != nil {
			return defaultReducer(text)
		}

		tokens, encErr := encoder.Encode(text)
		if encErr != nil {
			return defaultReducer(text)
		}

		if len(tokens) <= o.params.MaxTokensRequest {
			return text
		}

		return encoder.Decode(tokens[:o.params.MaxTokensRequest])
	}

	r := reduceRequest(msg)

	data := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: o.params.SystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: r},
	}

	resp, err := o.client.CreateChatCompletion(ctx,
		openai.ChatCompletionRequest{Model: o.params.Model, MaxTokens: o.params.MaxTokensResponse, Messages: data})
	if err != nil {
		return openAIResponse{}, fmt.Errorf("failed to create chat completion: %w", err)
	}

	// the api supports multiple choices, we use only the first one
	if len(resp.Choices) == 0 {
		return openAIResponse{}, fmt.Errorf("no choices in response")
	}

	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &response); err != nil {
		return openAIResponse{}, fmt.Errorf("can't unmarshal response: %s - %w", resp.Choices[0].Message.Content, err)
	}

	return response, nil
}

// String returns the scorer description for logging.
func (o *OpenAIScorer) String() string {
	return fmt.Sprintf("openai scorer {model: %s}", o.params.Model)
}
