package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/povarna/generative-ai-agents/doc-qa/internal/llm"
	"github.com/povarna/generative-ai-agents/doc-qa/internal/llm/mocks"
	"go.uber.org/mock/gomock"
)

func TestGenerate_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockLLMClient(ctrl)
	client.EXPECT().
		InvokeModel(gomock.Any(), llm.LLMRequest{Prompt: "prompt", MaxTokens: 512, Temperature: 0.3}).
		Return(&llm.LLMResponse{Content: "\n  The answer.  \n", StopReason: "end_turn"}, nil)

	gen := New(client, Config{MaxTokens: 512, Temperature: 0.3})

	got, err := gen.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "The answer." {
		t.Errorf("expected trimmed answer, got %q", got)
	}
}

func TestGenerate_UsesRetryWhenConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockLLMClient(ctrl)
	client.EXPECT().
		InvokeModelWithRetry(gomock.Any(), gomock.Any()).
		Return(&llm.LLMResponse{Content: "ok"}, nil)

	gen := New(client, Config{Retry: true})

	if _, err := gen.Generate(context.Background(), "p"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
}

func TestGenerate_DefaultMaxTokens(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := mocks.NewMockLLMClient(ctrl)
	client.EXPECT().
		InvokeModel(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req llm.LLMRequest) (*llm.LLMResponse, error) {
			if req.MaxTokens != 1024 {
				t.Errorf("expected default max tokens 1024, got %d", req.MaxTokens)
			}
			return &llm.LLMResponse{Content: "ok"}, nil
		})

	_, _ = New(client, Config{}).Generate(context.Background(), "p")
}

func TestGenerate_Failures(t *testing.T) {
	serviceErr := errors.New("ThrottlingException: rate exceeded")

	tests := []struct {
		name    string
		resp    *llm.LLMResponse
		err     error
		wantErr error
	}{
		{name: "transport failure", err: serviceErr, wantErr: serviceErr},
		{name: "nil response", resp: nil},
		{name: "blank completion", resp: &llm.LLMResponse{Content: "   ", StopReason: "max_tokens"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			client := mocks.NewMockLLMClient(ctrl)
			client.EXPECT().InvokeModel(gomock.Any(), gomock.Any()).Return(tt.resp, tt.err)

			_, err := New(client, Config{}).Generate(context.Background(), "p")
			if !errors.Is(err, ErrGenerationService) {
				t.Fatalf("expected ErrGenerationService, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected cause %v to be preserved, got %v", tt.wantErr, err)
			}
		})
	}
}
