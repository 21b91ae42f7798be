package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/brandonlukas/lumap/internal/catalog"
)

// metadata is the parsed attributes.json document. Attribute declaration
// order is preserved, which encoding/json map decoding would lose, so the
// document is walked token by token.
type metadata struct {
	DefaultAttribute string
	Attributes       []catalog.AttributeMeta
}

func parseMetadata(data []byte) (*metadata, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("attributes.json: %w", err)
	}

	var md metadata
	for dec.More() {
		key, err := stringToken(dec)
		if err != nil {
			return nil, fmt.Errorf("attributes.json: %w", err)
		}
		switch key {
		case "default_attribute":
			if err := dec.Decode(&md.DefaultAttribute); err != nil {
				return nil, fmt.Errorf("attributes.json: default_attribute: %w", err)
			}
		case "attributes":
			if err := expectDelim(dec, '{'); err != nil {
				return nil, fmt.Errorf("attributes.json: attributes: %w", err)
			}
			for dec.More() {
				name, err := stringToken(dec)
				if err != nil {
					return nil, fmt.Errorf("attributes.json: %w", err)
				}
				var entry struct {
					Names []string `json:"names"`
				}
				if err := dec.Decode(&entry); err != nil {
					return nil, fmt.Errorf("attributes.json: attribute %q: %w", name, err)
				}
				md.Attributes = append(md.Attributes, catalog.AttributeMeta{
					Name:       name,
					Categories: entry.Names,
				})
			}
			if err := expectDelim(dec, '}'); err != nil {
				return nil, fmt.Errorf("attributes.json: attributes: %w", err)
			}
		default:
			// Unknown keys are skipped for forward compatibility.
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("attributes.json: key %q: %w", key, err)
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("attributes.json: %w", err)
	}

	return &md, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func stringToken(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected string key, got %v", tok)
	}
	return s, nil
}

// parseLegacyNames parses celltype_names.json, which is either a bare JSON
// array of names or an object with a "names" field.
func parseLegacyNames(data []byte) ([]string, error) {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		return names, nil
	}
	var obj struct {
		Names []string `json:"names"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("celltype_names.json: %w", err)
	}
	return obj.Names, nil
}
