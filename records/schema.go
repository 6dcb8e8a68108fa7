/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package records

import (
	"github.com/suparena/docstore/keys"
)

// SitesSchema is the tenant-wide schema. Schema holds the JSON document.
type SitesSchema struct {
	Name         string `dynamodbav:"name"`
	Schema       string `dynamodbav:"schema"`
	UserID       string `dynamodbav:"userId,omitempty"`
	InsertedDate string `dynamodbav:"inserteddate,omitempty"`
}

func (s *SitesSchema) Validate() error {
	return required(field{"name", s.Name}, field{"schema", s.Schema})
}

func (s *SitesSchema) PrimaryKey(tenant string) (KeyPair, error) {
	return KeyPair{PK: SchemaPK(tenant, ""), SK: keys.SortSchema}, nil
}

func (s *SitesSchema) Secondary1(string) (KeyPair, bool, error) {
	return noSecondary()
}

func (s *SitesSchema) Secondary2(string) (KeyPair, bool, error) {
	return noSecondary()
}

// Classification is a named schema a document opts into through its
// Classification attribute.
type Classification struct {
	DocumentID   string `dynamodbav:"documentId"`
	Name         string `dynamodbav:"name"`
	Schema       string `dynamodbav:"schema"`
	UserID       string `dynamodbav:"userId,omitempty"`
	InsertedDate string `dynamodbav:"inserteddate,omitempty"`
}

func (c *Classification) Validate() error {
	return required(field{"documentId", c.DocumentID}, field{"name", c.Name}, field{"schema", c.Schema})
}

func (c *Classification) PrimaryKey(tenant string) (KeyPair, error) {
	return KeyPair{PK: SchemaPK(tenant, c.DocumentID), SK: keys.PrefixClass}, nil
}

// Secondary1 lists classifications by name.
func (c *Classification) Secondary1(tenant string) (KeyPair, bool, error) {
	return KeyPair{PK: ClassificationIndexPK(tenant), SK: keys.PrefixAttr + c.Name}, true, nil
}

func (c *Classification) Secondary2(string) (KeyPair, bool, error) {
	return noSecondary()
}

// SchemaCompositeKey stores one composite key definition of a schema.
// ClassificationID is empty for the sites schema.
type SchemaCompositeKey struct {
	ClassificationID string   `dynamodbav:"classificationId,omitempty"`
	Keys             []string `dynamodbav:"keys"`
}

func (s *SchemaCompositeKey) Validate() error {
	if len(s.Keys) == 0 {
		return required(field{"keys", ""})
	}
	return nil
}

func (s *SchemaCompositeKey) PrimaryKey(tenant string) (KeyPair, error) {
	return KeyPair{
		PK: SchemaPK(tenant, s.ClassificationID),
		SK: keys.TruncateSortKey(keys.PrefixCompositeKey + keys.Join(s.Keys...)),
	}, nil
}

func (s *SchemaCompositeKey) Secondary1(string) (KeyPair, bool, error) {
	return noSecondary()
}

func (s *SchemaCompositeKey) Secondary2(string) (KeyPair, bool, error) {
	return noSecondary()
}

// SchemaAttributeAllowedValue is one allowed value of key within a schema.
type SchemaAttributeAllowedValue struct {
	ClassificationID string `dynamodbav:"classificationId,omitempty"`
	Key              string `dynamodbav:"key"`
	Value            string `dynamodbav:"value"`
}

func (s *SchemaAttributeAllowedValue) Validate() error {
	return required(field{"key", s.Key}, field{"value", s.Value})
}

func (s *SchemaAttributeAllowedValue) PrimaryKey(tenant string) (KeyPair, error) {
	return KeyPair{
		PK: SchemaPK(tenant, s.ClassificationID),
		SK: keys.TruncateSortKey(AllowedValueSortPrefix(s.Key) + s.Value),
	}, nil
}

// Secondary1 lists the allowed values of a key across schemas.
func (s *SchemaAttributeAllowedValue) Secondary1(tenant string) (KeyPair, bool, error) {
	return KeyPair{
		PK: keys.Encode(tenant, keys.PrefixAttr+s.Key+keys.Separator+keys.PrefixAllowedValue),
		SK: keys.TruncateSortKey(keys.PrefixValue + s.Value),
	}, true, nil
}

func (s *SchemaAttributeAllowedValue) Secondary2(string) (KeyPair, bool, error) {
	return noSecondary()
}

// SchemaAttributeKey marks key as referenced by a schema.
type SchemaAttributeKey struct {
	ClassificationID string `dynamodbav:"classificationId,omitempty"`
	Key              string `dynamodbav:"key"`
}

func (s *SchemaAttributeKey) Validate() error {
	return required(field{"key", s.Key})
}

func (s *SchemaAttributeKey) PrimaryKey(tenant string) (KeyPair, error) {
	return KeyPair{PK: SchemaPK(tenant, s.ClassificationID), SK: keys.PrefixAttrKey + s.Key}, nil
}

// Secondary1 groups every schema referencing key under one partition.
func (s *SchemaAttributeKey) Secondary1(tenant string) (KeyPair, bool, error) {
	return KeyPair{PK: SchemaReferencePK(tenant, s.Key), SK: schemaSuffix(s.ClassificationID)}, true, nil
}

func (s *SchemaAttributeKey) Secondary2(string) (KeyPair, bool, error) {
	return noSecondary()
}

// SchemaPK is the partition of the sites schema, or of a classification
// when classificationID is set.
func SchemaPK(tenant, classificationID string) string {
	return keys.Encode(tenant, schemaSuffix(classificationID))
}

func schemaSuffix(classificationID string) string {
	if classificationID == "" {
		return keys.PrefixSchemas
	}
	return keys.PrefixSchemas + keys.Separator + classificationID
}

// ClassificationIndexPK is the GSI1 partition listing classifications.
func ClassificationIndexPK(tenant string) string {
	return keys.Encode(tenant, keys.PrefixClass)
}

// SchemaReferencePK is the GSI1 partition of the schemas that use key.
func SchemaReferencePK(tenant, key string) string {
	return keys.Encode(tenant, keys.PrefixAttr+key+keys.Separator+"schema")
}

// AllowedValueSortPrefix prefixes the allowed values of key in a schema
// partition.
func AllowedValueSortPrefix(key string) string {
	return keys.PrefixAttr + key + keys.Separator + keys.PrefixAllowedValue + keys.Separator
}
