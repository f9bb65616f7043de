package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Names []string `json:"names"`
}

func TestExtractObjectTrimsFencesAndProse(t *testing.T) {
	response := "Sure, here is the result:\n```json\n{\"names\": [\"Alice\"]}\n```\nLet me know if you need more."

	out, err := ExtractObject[payload](response)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, out.Names)
}

func TestExtractObjectBareJSON(t *testing.T) {
	out, err := ExtractObject[payload](`{"names": ["Alice", "Bob"]}`)
	require.NoError(t, err)
	assert.Len(t, out.Names, 2)
}

func TestExtractObjectNoBraces(t *testing.T) {
	_, err := ExtractObject[payload]("I could not produce any JSON.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON object")
}

func TestExtractObjectUnterminated(t *testing.T) {
	_, err := ExtractObject[payload](`{"names": ["Alice"`)
	require.Error(t, err)
}

func TestExtractObjectMalformed(t *testing.T) {
	_, err := ExtractObject[payload](`{"names":  oops}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal")
}
