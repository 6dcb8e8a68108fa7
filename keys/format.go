/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package keys

import (
	"fmt"
	"strconv"
	"unicode/utf8"
)

// MaxSortKeyBytes bounds sort keys well below the store's 1024 byte limit.
const MaxSortKeyBytes = 1000

// compositeNumberFormat pads to a fixed width so composite values sort and
// compare the same way on every run.
const compositeNumberFormat = "%020.4f"

// FormatNumber renders a number the way value sort keys store it: whole
// numbers without a fraction, everything else in shortest form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatCompositeNumber renders a number for a composite value.
func FormatCompositeNumber(v float64) string {
	return fmt.Sprintf(compositeNumberFormat, v)
}

// TruncateSortKey cuts sk to MaxSortKeyBytes on a rune boundary.
func TruncateSortKey(sk string) string {
	if len(sk) <= MaxSortKeyBytes {
		return sk
	}
	cut := MaxSortKeyBytes
	for cut > 0 && !utf8.RuneStart(sk[cut]) {
		cut--
	}
	return sk[:cut]
}
