package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/sproutlab/sprout-api/internal/generation"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "rate limit is transient",
			err:  genai.APIError{Code: http.StatusTooManyRequests},
			want: generation.ErrTransientFailure,
		},
		{
			name: "server error is transient",
			err:  genai.APIError{Code: http.StatusServiceUnavailable},
			want: generation.ErrTransientFailure,
		},
		{
			name: "bad request is invalid input",
			err:  genai.APIError{Code: http.StatusBadRequest},
			want: generation.ErrInvalidInput,
		},
		{
			name: "forbidden is permanent",
			err:  genai.APIError{Code: http.StatusForbidden},
			want: generation.ErrGenerationFailed,
		},
		{
			name: "bare transport error is transient",
			err:  errors.New("connection reset by peer"),
			want: generation.ErrTransientFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, classifyError(tc.err), tc.want)
		})
	}
}

func TestClassifyError_ContextErrorsPassThrough(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, classifyError(context.DeadlineExceeded), context.DeadlineExceeded)
	assert.False(t, generation.IsTransient(classifyError(context.DeadlineExceeded)))
}

func TestCheckResponse(t *testing.T) {
	t.Parallel()

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, checkResponse(nil), generation.ErrInvalidResponse)
	})

	t.Run("no candidates", func(t *testing.T) {
		t.Parallel()
		resp := &genai.GenerateContentResponse{}
		assert.ErrorIs(t, checkResponse(resp), generation.ErrInvalidResponse)
	})

	t.Run("safety block", func(t *testing.T) {
		t.Parallel()
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}
		assert.ErrorIs(t, checkResponse(resp), generation.ErrContentBlocked)
	})

	t.Run("usable candidate", func(t *testing.T) {
		t.Parallel()
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: genai.NewContentFromParts(
					[]*genai.Part{genai.NewPartFromText("hello")}, genai.RoleModel),
			}},
		}
		assert.NoError(t, checkResponse(resp))
	})
}

func TestExtractImage(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromParts([]*genai.Part{
				genai.NewPartFromText("here is your mascot"),
				genai.NewPartFromBytes([]byte("png bytes"), "image/png"),
			}, genai.RoleModel),
		}},
	}

	data, mimeType, err := extractImage(resp)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
	assert.Equal(t, "image/png", mimeType)
}

func TestExtractImage_NoImage(t *testing.T) {
	t.Parallel()

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromParts(
				[]*genai.Part{genai.NewPartFromText("text only")}, genai.RoleModel),
		}},
	}

	_, _, err := extractImage(resp)
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}
