/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package testmodels

import (
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/attributes"
)

func TestInvoice(t *testing.T) {
	created := strfmt.DateTime(time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
	inv := NewInvoice("inv-1", "invoices/1.pdf", created)
	inv.Status = "final"
	inv.Amount = 12.5
	inv.Approved = true

	doc := inv.Document()
	assert.Equal(t, "inv-1", doc.DocumentID)
	assert.Equal(t, "2025-03-04T10:00:00.000Z", doc.InsertedDate)

	values := inv.Values()
	require.Len(t, values, 3)
	assert.Equal(t, KeyStatus, values[0].Key)
	assert.Equal(t, 12.5, *values[1].NumberValue)
	assert.Equal(t, attributes.ValueKeyOnly, values[2].ValueType)
}
