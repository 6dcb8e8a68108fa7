/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package records

import (
	"strconv"

	"github.com/suparena/docstore/attributes"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/keys"
)

// Attribute is a tenant-scoped attribute definition.
type Attribute struct {
	DocumentID string              `dynamodbav:"documentId"`
	Key        string              `dynamodbav:"key"`
	DataType   attributes.DataType `dynamodbav:"dataType"`
	Type       attributes.Type     `dynamodbav:"type"`

	WatermarkText            string   `dynamodbav:"watermarkText,omitempty"`
	WatermarkImageDocumentID string   `dynamodbav:"watermarkImageDocumentId,omitempty"`
	WatermarkXAnchor         string   `dynamodbav:"watermarkxAnchor,omitempty"`
	WatermarkYAnchor         string   `dynamodbav:"watermarkyAnchor,omitempty"`
	WatermarkXOffset         *float64 `dynamodbav:"watermarkxOffset,omitempty"`
	WatermarkYOffset         *float64 `dynamodbav:"watermarkyOffset,omitempty"`
	WatermarkRotation        *float64 `dynamodbav:"watermarkRotation,omitempty"`
	WatermarkScale           string   `dynamodbav:"watermarkScale,omitempty"`
}

// NewAttribute builds a definition with the data type and type defaults
// applied.
func NewAttribute(key string, dataType attributes.DataType, typ attributes.Type) *Attribute {
	if dataType == "" {
		dataType = attributes.DataTypeString
	}
	if typ == "" {
		typ = attributes.TypeStandard
	}
	return &Attribute{DocumentID: key, Key: key, DataType: dataType, Type: typ}
}

func (a *Attribute) Validate() error {
	return required(field{"key", a.Key})
}

func (a *Attribute) PrimaryKey(tenant string) (KeyPair, error) {
	return KeyPair{PK: AttributePK(tenant, a.Key), SK: keys.SortAttribute}, nil
}

// Secondary1 lists every definition of a tenant ordered by key.
func (a *Attribute) Secondary1(tenant string) (KeyPair, bool, error) {
	return KeyPair{PK: keys.Encode(tenant, keys.PrefixAttr), SK: keys.PrefixAttr + a.Key}, true, nil
}

// Secondary2 lists watermark definitions that carry text.
func (a *Attribute) Secondary2(tenant string) (KeyPair, bool, error) {
	if a.WatermarkText == "" {
		return noSecondary()
	}
	return KeyPair{
		PK: keys.Encode(tenant, keys.PrefixAttr),
		SK: keys.PrefixAttr + string(a.DataType),
	}, true, nil
}

func (a *Attribute) afterUnmarshal(string) error {
	if a.DocumentID == "" {
		a.DocumentID = a.Key
	}
	return nil
}

// Watermark returns the flattened watermark fields, or nil when none are set.
func (a *Attribute) Watermark() *attributes.Watermark {
	w := &attributes.Watermark{
		Text:            a.WatermarkText,
		ImageDocumentID: a.WatermarkImageDocumentID,
		Rotation:        a.WatermarkRotation,
		Scale:           a.WatermarkScale,
	}
	if a.WatermarkXAnchor != "" || a.WatermarkYAnchor != "" || a.WatermarkXOffset != nil || a.WatermarkYOffset != nil {
		w.Position = &attributes.WatermarkPosition{
			XAnchor: a.WatermarkXAnchor,
			YAnchor: a.WatermarkYAnchor,
			XOffset: a.WatermarkXOffset,
			YOffset: a.WatermarkYOffset,
		}
	}
	if w.Empty() && w.Position == nil && w.Rotation == nil && w.Scale == "" {
		return nil
	}
	return w
}

// SetWatermark replaces the watermark fields. A nil w clears them.
func (a *Attribute) SetWatermark(w *attributes.Watermark) {
	a.WatermarkText, a.WatermarkImageDocumentID = "", ""
	a.WatermarkXAnchor, a.WatermarkYAnchor = "", ""
	a.WatermarkXOffset, a.WatermarkYOffset = nil, nil
	a.WatermarkRotation, a.WatermarkScale = nil, ""
	if w == nil {
		return
	}
	a.WatermarkText = w.Text
	a.WatermarkImageDocumentID = w.ImageDocumentID
	a.WatermarkRotation = w.Rotation
	a.WatermarkScale = w.Scale
	if p := w.Position; p != nil {
		a.WatermarkXAnchor, a.WatermarkYAnchor = p.XAnchor, p.YAnchor
		a.WatermarkXOffset, a.WatermarkYOffset = p.XOffset, p.YOffset
	}
}

// AttributePK is the partition holding the definition of key.
func AttributePK(tenant, key string) string {
	return keys.Encode(tenant, keys.PrefixAttr+key)
}

// DocumentAttribute is one value of an attribute on a document. A
// multi-valued attribute is stored as several records sharing the document
// and key.
type DocumentAttribute struct {
	DocumentID   string               `dynamodbav:"documentId"`
	Key          string               `dynamodbav:"key"`
	ValueType    attributes.ValueType `dynamodbav:"valueType"`
	StringValue  string               `dynamodbav:"stringValue,omitempty"`
	NumberValue  *float64             `dynamodbav:"numberValue,omitempty"`
	BooleanValue *bool                `dynamodbav:"booleanValue,omitempty"`
	UserID       string               `dynamodbav:"userId,omitempty"`
	InsertedDate string               `dynamodbav:"inserteddate,omitempty"`
}

// NewStringValue builds a STRING value.
func NewStringValue(documentID, key, value string) *DocumentAttribute {
	return &DocumentAttribute{DocumentID: documentID, Key: key, ValueType: attributes.ValueString, StringValue: value}
}

// NewNumberValue builds a NUMBER value.
func NewNumberValue(documentID, key string, value float64) *DocumentAttribute {
	return &DocumentAttribute{DocumentID: documentID, Key: key, ValueType: attributes.ValueNumber, NumberValue: &value}
}

// NewBooleanValue builds a BOOLEAN value.
func NewBooleanValue(documentID, key string, value bool) *DocumentAttribute {
	return &DocumentAttribute{DocumentID: documentID, Key: key, ValueType: attributes.ValueBoolean, BooleanValue: &value}
}

// NewKeyOnlyValue builds a value that carries only its key.
func NewKeyOnlyValue(documentID, key string) *DocumentAttribute {
	return &DocumentAttribute{DocumentID: documentID, Key: key, ValueType: attributes.ValueKeyOnly}
}

// NewCompositeValue builds a generated COMPOSITE_STRING value.
func NewCompositeValue(documentID, key, value string) *DocumentAttribute {
	return &DocumentAttribute{DocumentID: documentID, Key: key, ValueType: attributes.ValueCompositeString, StringValue: value}
}

// NewClassificationValue links a document to a classification id.
func NewClassificationValue(documentID, classificationID string) *DocumentAttribute {
	return &DocumentAttribute{
		DocumentID:  documentID,
		Key:         attributes.KeyClassification,
		ValueType:   attributes.ValueClassification,
		StringValue: classificationID,
	}
}

func (v *DocumentAttribute) Validate() error {
	if err := required(field{"documentId", v.DocumentID}, field{"key", v.Key}); err != nil {
		return err
	}

	populated := 0
	if v.StringValue != "" {
		populated++
	}
	if v.NumberValue != nil {
		populated++
	}
	if v.BooleanValue != nil {
		populated++
	}

	switch {
	case v.ValueType.HasStringValue():
		if v.StringValue == "" || populated != 1 {
			return storeerrors.NewIllegalStateError("'%s' requires 'stringValue' only", v.ValueType)
		}
	case v.ValueType == attributes.ValueNumber:
		if v.NumberValue == nil || populated != 1 {
			return storeerrors.NewIllegalStateError("'%s' requires 'numberValue' only", v.ValueType)
		}
	case v.ValueType == attributes.ValueBoolean:
		if v.BooleanValue == nil || populated != 1 {
			return storeerrors.NewIllegalStateError("'%s' requires 'booleanValue' only", v.ValueType)
		}
	case v.ValueType == attributes.ValueKeyOnly:
		if populated != 0 {
			return storeerrors.NewIllegalStateError("'%s' does not support a value", v.ValueType)
		}
	case v.ValueType == attributes.ValuePublication:
		if v.NumberValue != nil || v.BooleanValue != nil {
			return storeerrors.NewIllegalStateError("'%s' does not support a value", v.ValueType)
		}
	default:
		return storeerrors.NewIllegalStateError("unexpected valueType %q", v.ValueType)
	}
	return nil
}

// Value renders the value the way sort keys store it. Keyless values
// render as "".
func (v *DocumentAttribute) Value() string {
	switch {
	case v.ValueType == attributes.ValueNumber && v.NumberValue != nil:
		return keys.FormatNumber(*v.NumberValue)
	case v.ValueType == attributes.ValueBoolean && v.BooleanValue != nil:
		return strconv.FormatBool(*v.BooleanValue)
	default:
		return v.StringValue
	}
}

func (v *DocumentAttribute) PrimaryKey(tenant string) (KeyPair, error) {
	return KeyPair{
		PK: documentPK(tenant, v.DocumentID),
		SK: keys.TruncateSortKey(DocumentAttributeSortPrefix(v.Key) + v.Value()),
	}, nil
}

// Secondary1 indexes values by key so documents can be found by value.
func (v *DocumentAttribute) Secondary1(tenant string) (KeyPair, bool, error) {
	sk := keys.TruncateSortKey(v.Value())
	if sk == "" {
		sk = keys.Separator
	}
	return KeyPair{PK: DocumentAttributeIndexPK(tenant, v.Key), SK: sk}, true, nil
}

func (v *DocumentAttribute) Secondary2(string) (KeyPair, bool, error) {
	return noSecondary()
}

// afterUnmarshal infers the value type of items written without one.
func (v *DocumentAttribute) afterUnmarshal(string) error {
	if v.ValueType != "" {
		return nil
	}
	switch {
	case v.StringValue != "":
		v.ValueType = attributes.ValueString
	case v.NumberValue != nil:
		v.ValueType = attributes.ValueNumber
	case v.BooleanValue != nil:
		v.ValueType = attributes.ValueBoolean
	default:
		v.ValueType = attributes.ValueKeyOnly
	}
	return nil
}

// DocumentAttributeSortPrefix is the sort key prefix shared by every value
// of key on one document.
func DocumentAttributeSortPrefix(key string) string {
	return keys.PrefixAttr + key + keys.Separator
}

// DocumentAttributeIndexPK is the GSI1 partition holding every value of key.
func DocumentAttributeIndexPK(tenant, key string) string {
	return keys.Encode(tenant, keys.PrefixDocAttr+key)
}

// DocumentPK is the partition holding a document and its children.
func DocumentPK(tenant, documentID string) string {
	return documentPK(tenant, documentID)
}
