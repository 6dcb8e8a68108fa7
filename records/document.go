/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package records

import (
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
)

// Document is the metadata of one stored document.
type Document struct {
	DocumentID       string `dynamodbav:"documentId"`
	Path             string `dynamodbav:"path,omitempty"`
	ContentType      string `dynamodbav:"contentType,omitempty"`
	ContentLength    int64  `dynamodbav:"contentLength,omitempty"`
	UserID           string `dynamodbav:"userId,omitempty"`
	InsertedDate     string `dynamodbav:"inserteddate,omitempty"`
	LastModifiedDate string `dynamodbav:"lastModifiedDate,omitempty"`
	Version          string `dynamodbav:"version,omitempty"`
}

func (d *Document) Validate() error {
	if err := required(field{"documentId", d.DocumentID}); err != nil {
		return err
	}
	if d.InsertedDate != "" {
		if _, err := ParseDate(d.InsertedDate); err != nil {
			return storeerrors.NewIllegalStateError("invalid 'inserteddate' %q", d.InsertedDate)
		}
	}
	return nil
}

func (d *Document) PrimaryKey(tenant string) (KeyPair, error) {
	return KeyPair{PK: documentPK(tenant, d.DocumentID), SK: keys.SortDocument}, nil
}

// Secondary1 indexes the document by the day it was inserted.
func (d *Document) Secondary1(tenant string) (KeyPair, bool, error) {
	if d.InsertedDate == "" {
		return noSecondary()
	}
	t, err := ParseDate(d.InsertedDate)
	if err != nil {
		return KeyPair{}, false, storeerrors.NewIllegalStateError("invalid 'inserteddate' %q", d.InsertedDate)
	}
	return KeyPair{
		PK: keys.Encode(tenant, keys.PrefixDocumentDate+FormatDay(t)),
		SK: d.InsertedDate + keys.Separator + d.DocumentID,
	}, true, nil
}

func (d *Document) Secondary2(string) (KeyPair, bool, error) {
	return noSecondary()
}

// DocumentTag is one key/value tag on a document.
type DocumentTag struct {
	DocumentID   string `dynamodbav:"documentId"`
	TagKey       string `dynamodbav:"tagKey"`
	TagValue     string `dynamodbav:"tagValue,omitempty"`
	Type         string `dynamodbav:"type,omitempty"`
	UserID       string `dynamodbav:"userId,omitempty"`
	InsertedDate string `dynamodbav:"inserteddate,omitempty"`
}

func (t *DocumentTag) Validate() error {
	return required(field{"documentId", t.DocumentID}, field{"tagKey", t.TagKey})
}

func (t *DocumentTag) PrimaryKey(tenant string) (KeyPair, error) {
	return KeyPair{
		PK: documentPK(tenant, t.DocumentID),
		SK: keys.TruncateSortKey(keys.PrefixTags + t.TagKey),
	}, nil
}

// Secondary1 finds documents by exact tag value, newest last.
func (t *DocumentTag) Secondary1(tenant string) (KeyPair, bool, error) {
	if t.InsertedDate == "" {
		return noSecondary()
	}
	return KeyPair{
		PK: keys.Encode(tenant, keys.PrefixTag+t.TagKey+keys.Separator+t.TagValue),
		SK: t.InsertedDate + keys.Separator + t.DocumentID,
	}, true, nil
}

// Secondary2 lists the values used for a tag key.
func (t *DocumentTag) Secondary2(tenant string) (KeyPair, bool, error) {
	return KeyPair{
		PK: keys.Encode(tenant, keys.PrefixTag+t.TagKey),
		SK: keys.TruncateSortKey(keys.PrefixValue + t.TagValue),
	}, true, nil
}

// DocumentSync records one synchronisation of a document to an external
// service.
type DocumentSync struct {
	DocumentID string `dynamodbav:"documentId"`
	Service    string `dynamodbav:"service"`
	Status     string `dynamodbav:"status"`
	Type       string `dynamodbav:"type,omitempty"`
	Message    string `dynamodbav:"message,omitempty"`
	UserID     string `dynamodbav:"userId,omitempty"`
	SyncDate   string `dynamodbav:"syncDate"`
	TimeToLive int64  `dynamodbav:"TimeToLive,omitempty"`
}

func (s *DocumentSync) Validate() error {
	return required(
		field{"documentId", s.DocumentID},
		field{"service", s.Service},
		field{"status", s.Status},
		field{"syncDate", s.SyncDate},
	)
}

func (s *DocumentSync) PrimaryKey(tenant string) (KeyPair, error) {
	return KeyPair{PK: documentPK(tenant, s.DocumentID), SK: keys.PrefixSyncs + s.SyncDate}, nil
}

func (s *DocumentSync) Secondary1(string) (KeyPair, bool, error) {
	return noSecondary()
}

func (s *DocumentSync) Secondary2(string) (KeyPair, bool, error) {
	return noSecondary()
}

func documentPK(tenant, documentID string) string {
	return keys.Encode(tenant, keys.PrefixDocs+documentID)
}
