/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package testmodels holds shared fixtures for store and service tests.
package testmodels

import (
	"github.com/go-openapi/strfmt"

	"github.com/suparena/docstore/attributes"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/schema"
)

type Invoice struct {

	// Unique identifier of the stored document.
	// Required: true
	ID *string `json:"Id"`

	// Object path of the document.
	// Required: true
	Path *string `json:"Path"`

	// Workflow status.
	// Enum: [draft final]
	Status string `json:"Status,omitempty"`

	// Region the invoice was issued in.
	Region string `json:"Region,omitempty"`

	// Invoice total.
	Amount float64 `json:"Amount,omitempty"`

	// Set once the invoice has been approved.
	Approved bool `json:"Approved,omitempty"`

	// Timestamp when the invoice was uploaded.
	// Required: true
	// Format: date-time
	CreatedAt *strfmt.DateTime `json:"CreatedAt"`
}

// NewInvoice builds an invoice uploaded at createdAt.
func NewInvoice(id, path string, createdAt strfmt.DateTime) *Invoice {
	return &Invoice{ID: &id, Path: &path, CreatedAt: &createdAt}
}

// Document is the document record of the invoice.
func (i *Invoice) Document() *records.Document {
	doc := &records.Document{
		DocumentID:  *i.ID,
		Path:        *i.Path,
		ContentType: "application/pdf",
	}
	if i.CreatedAt != nil {
		doc.InsertedDate = i.CreatedAt.String()
	}
	return doc
}

// Values are the attribute values of the invoice. Empty fields are left out.
func (i *Invoice) Values() []*records.DocumentAttribute {
	var out []*records.DocumentAttribute
	if i.Status != "" {
		out = append(out, records.NewStringValue(*i.ID, KeyStatus, i.Status))
	}
	if i.Region != "" {
		out = append(out, records.NewStringValue(*i.ID, KeyRegion, i.Region))
	}
	if i.Amount != 0 {
		out = append(out, records.NewNumberValue(*i.ID, KeyAmount, i.Amount))
	}
	if i.Approved {
		out = append(out, records.NewKeyOnlyValue(*i.ID, KeyApproved))
	}
	return out
}

// Attribute keys used by the fixtures.
const (
	KeyStatus   = "status"
	KeyRegion   = "region"
	KeyAmount   = "amount"
	KeyApproved = "approved"
)

// Definitions returns fresh definitions for the fixture keys. approved is a
// GOVERNANCE attribute.
func Definitions() []*records.Attribute {
	return []*records.Attribute{
		records.NewAttribute(KeyStatus, attributes.DataTypeString, attributes.TypeStandard),
		records.NewAttribute(KeyRegion, attributes.DataTypeString, attributes.TypeStandard),
		records.NewAttribute(KeyAmount, attributes.DataTypeNumber, attributes.TypeStandard),
		records.NewAttribute(KeyApproved, attributes.DataTypeKeyOnly, attributes.TypeGovernance),
	}
}

// SiteSchema requires status (draft or final, default draft) and allows a
// region of us or eu.
func SiteSchema() *schema.Schema {
	return &schema.Schema{
		Name: "sites",
		Attributes: &schema.Attributes{
			Required: []schema.Required{{
				AttributeKey:  KeyStatus,
				AllowedValues: []string{"draft", "final"},
				DefaultValue:  "draft",
			}},
			Optional: []schema.Optional{{
				AttributeKey:  KeyRegion,
				AllowedValues: []string{"us", "eu"},
			}},
		},
	}
}

// InvoiceSchema is a classification requiring an amount, with a
// status/region composite key.
func InvoiceSchema() *schema.Schema {
	return &schema.Schema{
		Name: "invoice",
		Attributes: &schema.Attributes{
			Required: []schema.Required{{AttributeKey: KeyAmount}},
			Optional: []schema.Optional{{AttributeKey: KeyApproved}},
			CompositeKeys: []schema.CompositeKey{
				{AttributeKeys: []string{KeyStatus, KeyRegion}},
			},
			AllowAdditionalAttributes: true,
		},
	}
}
