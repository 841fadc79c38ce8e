package stego

import (
	"bytes"
	"encoding/base64"

	"github.com/goccy/go-json"

	"steganography-codecs/codec"
	"steganography-codecs/gltfparser"
)

// ExtrasKey is the entry of the first scene's extras that holds the payload.
const ExtrasKey = "occule"

// GLTFExtras stores the payload base64-encoded in the extras object of the
// first scene of a binary glTF file.
type GLTFExtras struct{}

var (
	_ codec.Codec     = (*GLTFExtras)(nil)
	_ codec.Capacitor = (*GLTFExtras)(nil)
)

func NewGLTFExtras() *GLTFExtras {
	return &GLTFExtras{}
}

// sceneDocument is the JSON chunk opened down to the first scene's extras.
// Keys are kept as raw JSON so unrelated content is written back untouched.
type sceneDocument struct {
	glb    *gltfparser.GLB
	root   map[string]json.RawMessage
	scenes []json.RawMessage
	scene  map[string]json.RawMessage
}

func openSceneDocument(data []byte) (*sceneDocument, error) {
	glb, err := gltfparser.ParseGLB(data)
	if err != nil {
		return nil, codec.Dependency(err)
	}
	doc := &sceneDocument{glb: glb}
	if err := json.Unmarshal(glb.JSON(), &doc.root); err != nil {
		return nil, codec.Dependency(err)
	}
	if raw, ok := doc.root["scenes"]; ok {
		if err := json.Unmarshal(raw, &doc.scenes); err != nil {
			return nil, codec.Dependency(err)
		}
	}
	if len(doc.scenes) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(doc.scenes[0], &doc.scene); err != nil {
		return nil, codec.Dependency(err)
	}
	return doc, nil
}

// extras returns the first scene's extras object. present is false when
// the scene has no extras; err is set when they are not a JSON object.
func (d *sceneDocument) extras() (extras map[string]json.RawMessage, present bool, err error) {
	raw, ok := d.scene["extras"]
	if !ok {
		return map[string]json.RawMessage{}, false, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, true, codec.Invalidf("scene extras are not a JSON object")
	}
	if err := json.Unmarshal(trimmed, &extras); err != nil {
		return nil, true, codec.Dependency(err)
	}
	return extras, true, nil
}

// write stores extras back into the document and serialises the GLB.
func (d *sceneDocument) write(extras map[string]json.RawMessage) ([]byte, error) {
	var err error
	if d.scene["extras"], err = json.Marshal(extras); err != nil {
		return nil, codec.Dependency(err)
	}
	if d.scenes[0], err = json.Marshal(d.scene); err != nil {
		return nil, codec.Dependency(err)
	}
	if d.root["scenes"], err = json.Marshal(d.scenes); err != nil {
		return nil, codec.Dependency(err)
	}
	doc, err := json.Marshal(d.root)
	if err != nil {
		return nil, codec.Dependency(err)
	}
	d.glb.SetJSON(doc)
	out, err := gltfparser.WriteGLB(d.glb)
	if err != nil {
		return nil, codec.Dependency(err)
	}
	return out, nil
}

func (g *GLTFExtras) Encode(carrier, payload []byte) ([]byte, error) {
	doc, err := openSceneDocument(carrier)
	if err != nil {
		return nil, err
	}
	if doc.scene == nil {
		return nil, codec.Invalidf("carrier has no scene to attach extras to")
	}
	extras, _, err := doc.extras()
	if err != nil {
		return nil, err
	}

	value, err := json.Marshal(base64.StdEncoding.EncodeToString(payload))
	if err != nil {
		return nil, codec.Dependency(err)
	}
	extras[ExtrasKey] = value
	return doc.write(extras)
}

// Decode returns the carrier with the payload entry removed.
func (g *GLTFExtras) Decode(encoded []byte) ([]byte, []byte, error) {
	doc, err := openSceneDocument(encoded)
	if err != nil {
		return nil, nil, err
	}
	if doc.scene == nil {
		return nil, nil, codec.NotEncoded("carrier has no scenes")
	}
	extras, present, err := doc.extras()
	if !present {
		return nil, nil, codec.NotEncoded("first scene has no extras")
	}
	if err != nil {
		return nil, nil, codec.NotEncoded("first scene extras are not an object")
	}

	raw, ok := extras[ExtrasKey]
	if !ok {
		return nil, nil, codec.NotEncoded("extras have no payload entry")
	}
	var encodedPayload string
	if err := json.Unmarshal(raw, &encodedPayload); err != nil {
		return nil, nil, codec.NotEncoded("payload entry is not a string")
	}
	payload, err := base64.StdEncoding.DecodeString(encodedPayload)
	if err != nil {
		return nil, nil, codec.Dependency(err)
	}

	delete(extras, ExtrasKey)
	carrier, err := doc.write(extras)
	if err != nil {
		return nil, nil, err
	}
	return carrier, payload, nil
}

// Capacity is unbounded.
func (g *GLTFExtras) Capacity(carrier []byte) (int, error) {
	if _, err := openSceneDocument(carrier); err != nil {
		return 0, err
	}
	return codec.Unbounded, nil
}
