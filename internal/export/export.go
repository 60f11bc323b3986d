// Package export writes published collections in the command's output encodings.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/geolayer/internal/types"
)

// Encoding names an output encoding.
type Encoding string

// Supported encodings. Table output is rendered by the command itself.
const (
	JSON Encoding = "json"
	YAML Encoding = "yaml"
	CBOR Encoding = "cbor"
)

// encMode uses Core Deterministic Encoding so equal collections produce
// identical bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("export: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("export: CBOR decoder initialization failed: " + err.Error())
	}
}

// Write encodes fc to w.
func Write(w io.Writer, enc Encoding, fc *types.FeatureCollection) error {
	if fc == nil {
		fc = types.NewFeatureCollection(0)
	}
	switch enc {
	case JSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(fc)
	case YAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(fc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return e.Close()
	case CBOR:
		return encMode.NewEncoder(w).Encode(fc)
	default:
		return fmt.Errorf("export: unsupported encoding %q", enc)
	}
}

// ReadCBOR decodes a collection written with CBOR encoding.
func ReadCBOR(data []byte) (*types.FeatureCollection, error) {
	var fc types.FeatureCollection
	if err := decMode.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode cbor: %w", err)
	}
	fc.Normalize()
	return &fc, nil
}
