package stego

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steganography-codecs/codec"
	"steganography-codecs/gltfparser"
)

const sceneDoc = `{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0],"extras":{"author":"someone"}},{"nodes":[]}],"nodes":[{"name":"root"}]}`

func firstSceneExtras(t *testing.T, data []byte) map[string]any {
	t.Helper()
	glb, err := gltfparser.ParseGLB(data)
	require.NoError(t, err)
	var doc struct {
		Scenes []struct {
			Extras map[string]any `json:"extras"`
		} `json:"scenes"`
	}
	require.NoError(t, json.Unmarshal(glb.JSON(), &doc))
	require.NotEmpty(t, doc.Scenes)
	return doc.Scenes[0].Extras
}

func TestGLTFExtrasRoundTrip(t *testing.T) {
	c := NewGLTFExtras()
	payload := patternPayload(300)

	encoded, err := c.Encode(testGLB(t, sceneDoc), payload)
	require.NoError(t, err)

	extras := firstSceneExtras(t, encoded)
	assert.Equal(t, "someone", extras["author"])
	assert.IsType(t, "", extras[ExtrasKey])

	carrier, decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	extras = firstSceneExtras(t, carrier)
	assert.Equal(t, "someone", extras["author"])
	assert.NotContains(t, extras, ExtrasKey)

	glb, err := gltfparser.ParseGLB(carrier)
	require.NoError(t, err)
	require.Len(t, glb.Chunks, 2)
	assert.Equal(t, []byte{1, 2, 3, 4}, glb.Chunks[1].Data)
}

func TestGLTFExtrasCreatesExtras(t *testing.T) {
	c := NewGLTFExtras()
	encoded, err := c.Encode(testGLB(t, `{"asset":{"version":"2.0"},"scenes":[{}]}`), []byte("hi"))
	require.NoError(t, err)

	_, decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), decoded)
}

func TestGLTFExtrasInvalidCarrier(t *testing.T) {
	c := NewGLTFExtras()

	_, err := c.Encode(testGLB(t, `{"scenes":[{"extras":[1,2]}]}`), []byte("x"))
	assert.ErrorIs(t, err, codec.ErrInvalid)

	_, err = c.Encode(testGLB(t, `{"asset":{"version":"2.0"}}`), []byte("x"))
	assert.ErrorIs(t, err, codec.ErrInvalid)

	_, err = c.Encode([]byte("glTF but not really"), []byte("x"))
	assert.ErrorIs(t, err, codec.ErrDependency)
}

func TestGLTFExtrasDecodeNotEncoded(t *testing.T) {
	c := NewGLTFExtras()
	tests := []struct {
		name string
		doc  string
	}{
		{"no scenes", `{"asset":{"version":"2.0"}}`},
		{"no extras", `{"scenes":[{"nodes":[]}]}`},
		{"extras not an object", `{"scenes":[{"extras":"text"}]}`},
		{"no payload entry", sceneDoc},
		{"payload not a string", `{"scenes":[{"extras":{"occule":42}}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := c.Decode(testGLB(t, tc.doc))
			assert.ErrorIs(t, err, codec.ErrNotEncoded)
		})
	}
}

func TestGLTFExtrasBadBase64(t *testing.T) {
	c := NewGLTFExtras()
	_, _, err := c.Decode(testGLB(t, `{"scenes":[{"extras":{"occule":"!!not base64!!"}}]}`))
	assert.ErrorIs(t, err, codec.ErrDependency)
}
