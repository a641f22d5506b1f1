package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRepositoryContractPasses(t *testing.T) {
	doc, err := loadDoc(filepath.Join("..", "..", "api", "openapi.yaml"))
	require.NoError(t, err)
	assert.NoError(t, checkDoc(doc))
}

func TestCheckDocFailures(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "missing path",
			doc:     `paths: {}`,
			wantErr: `path "/generate-story" missing`,
		},
		{
			name: "get instead of post",
			doc: `
paths:
  /generate-story:
    get: {}
`,
			wantErr: "/generate-story must declare a post operation",
		},
		{
			name: "prompt not required",
			doc: `
paths:
  /generate-story:
    post: {}
components:
  schemas:
    StoryRequest:
      type: object
      properties:
        prompt: {type: string}
        max_tokens: {type: integer}
`,
			wantErr: `StoryRequest.required must include "prompt"`,
		},
		{
			name: "max_tokens wrong type",
			doc: `
paths:
  /generate-story:
    post: {}
components:
  schemas:
    StoryRequest:
      type: object
      required: [prompt]
      properties:
        prompt: {type: string}
        max_tokens: {type: number}
`,
			wantErr: "StoryRequest.max_tokens must be integer",
		},
		{
			name: "missing error schema",
			doc: `
paths:
  /generate-story:
    post: {}
components:
  schemas:
    StoryRequest:
      type: object
      required: [prompt]
      properties:
        prompt: {type: string}
        max_tokens: {type: integer}
    StoryResponse:
      type: object
      properties:
        story: {type: string}
`,
			wantErr: `schema "ErrorResponse" missing`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var doc openAPIDoc
			require.NoError(t, yaml.Unmarshal([]byte(tc.doc), &doc))
			assert.EqualError(t, checkDoc(doc), tc.wantErr)
		})
	}
}

func TestLoadDocReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("paths: [unclosed"), 0o600))
	_, err := loadDoc(path)
	assert.ErrorContains(t, err, path)
}
