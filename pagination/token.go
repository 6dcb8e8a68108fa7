/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package pagination turns store resume keys into opaque tokens and chains
// pages so callers can move forward and back.
package pagination

import (
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	json "github.com/goccy/go-json"

	storeerrors "github.com/suparena/docstore/errors"
)

// wireValue is the JSON form of one key attribute. Exactly one field is set.
type wireValue struct {
	S *string `json:"S,omitempty"`
	N *string `json:"N,omitempty"`
}

// Encode renders a LastEvaluatedKey as an opaque token. An empty key
// encodes as "".
func Encode(key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}

	wire := make(map[string]wireValue, len(key))
	for name, av := range key {
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			s := v.Value
			wire[name] = wireValue{S: &s}
		case *types.AttributeValueMemberN:
			n := v.Value
			wire[name] = wireValue{N: &n}
		default:
			return "", fmt.Errorf("unsupported key attribute %q of type %T", name, av)
		}
	}

	// map keys are emitted sorted, so equal keys give equal tokens
	b, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("failed to encode pagination token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Decode parses a token produced by Encode. "" decodes to a nil key. Any
// token Encode would not have produced is rejected as invalid.
func Decode(token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, storeerrors.NewInvalidTokenError(token, "not base64")
	}

	var wire map[string]wireValue
	if err := json.Unmarshal(b, &wire); err != nil {
		return nil, storeerrors.NewInvalidTokenError(token, "malformed")
	}
	if len(wire) == 0 {
		return nil, storeerrors.NewInvalidTokenError(token, "empty key")
	}

	key := make(map[string]types.AttributeValue, len(wire))
	for name, w := range wire {
		switch {
		case w.S != nil && w.N == nil:
			key[name] = &types.AttributeValueMemberS{Value: *w.S}
		case w.N != nil && w.S == nil:
			key[name] = &types.AttributeValueMemberN{Value: *w.N}
		default:
			return nil, storeerrors.NewInvalidTokenError(token, fmt.Sprintf("attribute %q has no single value", name))
		}
	}

	canonical, err := Encode(key)
	if err != nil || canonical != token {
		return nil, storeerrors.NewInvalidTokenError(token, "not canonical")
	}
	return key, nil
}
