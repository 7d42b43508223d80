package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gorarity/domain/core"
	"gorarity/domain/rarity"

	"github.com/tidwall/gjson"
)

// JSONReader reads a collection from a JSON document. The document is either an
// array of tokens, an object holding the array under "tokens", or any document
// where DataPath (gjson syntax) points at the array.
//
// A token is {"token_id", "token_supply"?, "attributes"}; attributes are either a
// list of {"trait_type", "value", "display_type"?} or an object of name to value.
type JSONReader struct {
	path     string
	data     []byte
	dataPath string
}

// Option configures a JSONReader
type Option func(*JSONReader)

// WithDataPath selects the token array inside a larger document
func WithDataPath(path string) Option {
	return func(r *JSONReader) {
		r.dataPath = path
	}
}

// NewJSONReader creates a reader for a file; the file is read on every Tokens call
func NewJSONReader(path string, opts ...Option) *JSONReader {
	r := &JSONReader{path: path}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewJSONReaderFromBytes creates a reader over an in-memory document
func NewJSONReaderFromBytes(data []byte, opts ...Option) *JSONReader {
	r := &JSONReader{data: data}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Tokens implements ports.MetadataSource
func (r *JSONReader) Tokens(ctx context.Context) ([]rarity.RawToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body := r.data
	if body == nil {
		b, err := os.ReadFile(r.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata file: %w", err)
		}
		body = b
	}

	return r.parse(ctx, body)
}

func (r *JSONReader) parse(ctx context.Context, body []byte) ([]rarity.RawToken, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("metadata is not valid JSON")
	}

	root := gjson.ParseBytes(body)
	switch {
	case r.dataPath != "":
		root = root.Get(r.dataPath)
		if !root.Exists() {
			return nil, fmt.Errorf("data path '%s' not found in metadata", r.dataPath)
		}
	case root.IsObject():
		root = root.Get("tokens")
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("metadata does not contain a token array")
	}

	items := root.Array()
	tokens := make([]rarity.RawToken, 0, len(items))
	for i, item := range items {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		token, err := parseToken(item)
		if err != nil {
			return nil, fmt.Errorf("token at index %d: %w", i, err)
		}
		tokens = append(tokens, token)
	}

	return tokens, nil
}

func parseToken(item gjson.Result) (rarity.RawToken, error) {
	if !item.IsObject() {
		return rarity.RawToken{}, fmt.Errorf("token is not an object")
	}

	idResult := item.Get("token_id")
	if !idResult.Exists() {
		idResult = item.Get("id")
	}
	id, err := core.ParseTokenID(idResult.String())
	if err != nil {
		return rarity.RawToken{}, err
	}

	token := rarity.RawToken{
		ID:     id,
		Supply: int(item.Get("token_supply").Int()),
	}

	attrs := item.Get("attributes")
	switch {
	case attrs.IsArray():
		for _, a := range attrs.Array() {
			token.Attributes = append(token.Attributes, rarity.RawAttribute{
				Name:        a.Get("trait_type").String(),
				Value:       rawValue(a.Get("value")),
				DisplayType: displayType(a.Get("display_type").String()),
			})
		}
	case attrs.IsObject():
		attrs.ForEach(func(key, value gjson.Result) bool {
			token.Attributes = append(token.Attributes, rarity.RawAttribute{
				Name:  key.String(),
				Value: rawValue(value),
			})
			return true
		})
	case attrs.Exists() && attrs.Type != gjson.Null:
		return rarity.RawToken{}, core.NewValidationError(id, "attributes", attrs.Raw, "attributes must be a list or an object")
	}

	return token, nil
}

// rawValue keeps the JSON kind of a value so the normalizer sees what the document held.
// Numbers stay json.Number to avoid float formatting of the source text.
func rawValue(v gjson.Result) interface{} {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return json.Number(v.Raw)
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.JSON:
		return v.Value()
	}
	return nil
}

// displayType folds marketplace display hints onto the three known types
func displayType(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	switch tag {
	case "boost_number", "boost_percentage":
		return string(rarity.DisplayNumber)
	}
	return tag
}
