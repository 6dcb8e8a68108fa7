/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attributes

import (
	"fmt"

	storeerrors "github.com/suparena/docstore/errors"
)

// Anchors and scale modes accepted by a watermark.
const (
	AnchorLeft   = "LEFT"
	AnchorCenter = "CENTER"
	AnchorRight  = "RIGHT"
	AnchorTop    = "TOP"
	AnchorBottom = "BOTTOM"

	ScaleOriginal = "ORIGINAL"
	ScaleFit      = "FIT"
)

// WatermarkPosition places a watermark relative to an anchor.
type WatermarkPosition struct {
	XAnchor string   `json:"xAnchor,omitempty" yaml:"xAnchor,omitempty"`
	YAnchor string   `json:"yAnchor,omitempty" yaml:"yAnchor,omitempty"`
	XOffset *float64 `json:"xOffset,omitempty" yaml:"xOffset,omitempty"`
	YOffset *float64 `json:"yOffset,omitempty" yaml:"yOffset,omitempty"`
}

// Watermark is the rendering metadata carried by a WATERMARK definition.
type Watermark struct {
	Text            string             `json:"text,omitempty" yaml:"text,omitempty"`
	ImageDocumentID string             `json:"imageDocumentId,omitempty" yaml:"imageDocumentId,omitempty"`
	Position        *WatermarkPosition `json:"position,omitempty" yaml:"position,omitempty"`
	Rotation        *float64           `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale           string             `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// Empty reports whether w carries neither text nor an image reference.
func (w *Watermark) Empty() bool {
	return w == nil || (w.Text == "" && w.ImageDocumentID == "")
}

// ValidateWatermark checks w against the definition's data type.
func ValidateWatermark(dataType DataType, w *Watermark) storeerrors.ValidationErrors {
	var errs storeerrors.ValidationErrors

	if dataType != DataTypeWatermark {
		if !w.Empty() {
			errs.Add("watermark", "watermark is only supported on WATERMARK data type")
		}
		return errs
	}

	if w.Empty() {
		errs.Add("watermark", "'watermark.text' or 'watermark.imageDocumentId' is required")
		return errs
	}

	if p := w.Position; p != nil {
		if !oneOf(p.XAnchor, AnchorLeft, AnchorCenter, AnchorRight) {
			errs.Add("watermark.position.xAnchor", fmt.Sprintf("invalid xAnchor '%s'", p.XAnchor))
		}
		if !oneOf(p.YAnchor, AnchorTop, AnchorCenter, AnchorBottom) {
			errs.Add("watermark.position.yAnchor", fmt.Sprintf("invalid yAnchor '%s'", p.YAnchor))
		}
	}

	if w.Rotation != nil && (*w.Rotation < 0 || *w.Rotation >= 360) {
		errs.Add("watermark.rotation", "rotation must be between 0 and 360")
	}

	if !oneOf(w.Scale, ScaleOriginal, ScaleFit) {
		errs.Add("watermark.scale", fmt.Sprintf("invalid scale '%s'", w.Scale))
	}

	return errs
}

// oneOf treats an empty value as unset.
func oneOf(v string, allowed ...string) bool {
	if v == "" {
		return true
	}
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
