package bedrock

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/bedrock"
)

const DefaultModelID = "amazon.titan-embed-text-v2:0"

// Titan request format (what Bedrock expects)
type titanEmbeddingRequest struct {
	InputText string `json:"inputText"`
	Normalize bool   `json:"normalize,omitempty"`
}

type titanEmbeddingResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

// TitanEmbedder embeds text with an Amazon Titan text embedding model.
type TitanEmbedder struct {
	client  bedrock.RuntimeAPI
	modelID string
}

func NewTitanEmbedder(client bedrock.RuntimeAPI, modelID string) *TitanEmbedder {
	if modelID == "" {
		modelID = DefaultModelID
	}

	return &TitanEmbedder{
		client:  client,
		modelID: modelID,
	}
}

func (e *TitanEmbedder) Name() string {
	return "bedrock:" + e.modelID
}

func (e *TitanEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(titanEmbeddingRequest{
		InputText: text,
		Normalize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal titan request: %w", err)
	}

	output, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(e.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke titan model: %w", err)
	}

	var response titanEmbeddingResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal titan response: %w", err)
	}

	if len(response.Embedding) == 0 {
		return nil, fmt.Errorf("titan returned an empty embedding")
	}

	return response.Embedding, nil
}
