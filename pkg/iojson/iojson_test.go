package iojson

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLine(&buf, map[string]any{"id": "t1", "kind": "success"}))
	require.NoError(t, WriteLine(&buf, map[string]any{"id": "t2"}))

	assert.Equal(t, "{\"id\":\"t1\",\"kind\":\"success\"}\n{\"id\":\"t2\"}\n", buf.String())
}

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, struct {
		ID string `json:"id"`
	}{ID: "t1"}))

	assert.Equal(t, "{\n  \"id\": \"t1\"\n}\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestWriteWith_MarshalError(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, make(chan int)))

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), `"message":"could not encode output"`)
	assert.Contains(t, errOut.String(), `"type":"chan int"`)
}

func TestWriteLine_MarshalError(t *testing.T) {
	var buf bytes.Buffer
	err := WriteLine(&buf, make(chan int))
	require.ErrorContains(t, err, "marshal chan int")
	assert.Empty(t, buf.String())
}
