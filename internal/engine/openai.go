package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIEngine generates text with the OpenAI Responses API.
type OpenAIEngine struct {
	client openai.Client
	model  string
}

// NewOpenAIEngine creates an OpenAI engine. baseURL is only set in tests.
func NewOpenAIEngine(apiKey, model, baseURL string) (*OpenAIEngine, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL), option.WithMaxRetries(0))
	}
	return &OpenAIEngine{client: openai.NewClient(opts...), model: model}, nil
}

func (e *OpenAIEngine) Name() string { return ProviderOpenAI }

func (e *OpenAIEngine) Generate(ctx context.Context, req Request) (string, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(req.model(e.model)),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(req.Prompt, responses.EasyInputMessageRoleUser),
			},
		},
		MaxOutputTokens: openai.Int(int64(req.maxTokens())),
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(float64(*req.Temperature))
	}

	resp, err := e.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	text := resp.OutputText()
	if text == "" {
		return "", errors.New("openai generate: empty response")
	}
	return text, nil
}
