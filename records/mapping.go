/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package records

import (
	"github.com/suparena/docstore/keys"
)

// Mapping describes how content is mapped onto attributes. Attributes holds
// the JSON encoded attribute mappings.
type Mapping struct {
	DocumentID   string `dynamodbav:"documentId"`
	Name         string `dynamodbav:"name"`
	Description  string `dynamodbav:"description,omitempty"`
	Attributes   string `dynamodbav:"attributes"`
	UserID       string `dynamodbav:"userId,omitempty"`
	InsertedDate string `dynamodbav:"inserteddate,omitempty"`
}

func (m *Mapping) Validate() error {
	return required(field{"documentId", m.DocumentID}, field{"name", m.Name})
}

func (m *Mapping) PrimaryKey(tenant string) (KeyPair, error) {
	return KeyPair{PK: keys.Encode(tenant, keys.PrefixMappings+m.DocumentID), SK: keys.SortMapping}, nil
}

// Secondary1 lists mappings by name.
func (m *Mapping) Secondary1(tenant string) (KeyPair, bool, error) {
	return KeyPair{PK: MappingIndexPK(tenant), SK: keys.PrefixMapping + m.Name}, true, nil
}

func (m *Mapping) Secondary2(string) (KeyPair, bool, error) {
	return noSecondary()
}

// MappingIndexPK is the GSI1 partition listing mappings.
func MappingIndexPK(tenant string) string {
	return keys.Encode(tenant, keys.PrefixMappings)
}
