// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package themecfg parses and validates uploaded theme configuration files.
// A theme file is a JSON document; a fixed set of keys must be present, the
// known styling keys are decoded into typed fields, and everything else is
// preserved opaquely so future consumers see the file unchanged.
//
// Validation here is structural only: color syntax, numeric ranges, and
// image reachability are not checked — the preview renderer degrades
// gracefully on those instead of rejecting the upload.
package themecfg

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Default values applied when an optional key is absent. These mirror the
// defaults the preview template uses, so a minimal theme file still renders.
const (
	DefaultBgColor2         = "#000000"
	DefaultContainerBgColor = "rgba(0,0,0,0.5)"
	DefaultTextColor        = "#ffffff"
	DefaultLinkColor        = "#0099ff"
	DefaultBorderRadius     = 8
	DefaultBgBrightness     = 100
)

// requiredKeys must be present in every theme file. bgImage may be empty
// but the key itself is mandatory.
var requiredKeys = []string{"bgColor1", "font", "bgImage"}

// knownKeys are decoded into typed Config fields; anything else lands in
// Config.Extra untouched.
var knownKeys = map[string]bool{
	"bgColor1": true, "bgColor2": true, "containerBgColor": true,
	"textColor": true, "linkColor": true, "font": true,
	"borderRadius": true, "bgBlur": true, "bgBrightness": true,
	"bgImage": true,
}

// Config is a validated theme configuration. The styling fields are typed;
// Extra carries unrecognized keys through to consumers verbatim.
type Config struct {
	BgColor1         string
	BgColor2         string
	ContainerBgColor string
	TextColor        string
	LinkColor        string
	Font             string
	BorderRadius     float64
	BgBlur           float64
	BgBrightness     float64
	BgImage          string

	Extra map[string]json.RawMessage
}

// ValidationError describes why a theme file was rejected. It is always
// recoverable: the submitter may fix the file and upload again.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "theme validation: " + e.Reason
}

// Parse decodes raw theme file bytes into a Config. It fails with a
// *ValidationError if the document is not a JSON object or any required
// key is missing.
func Parse(raw []byte) (*Config, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &ValidationError{Reason: "not a valid JSON document"}
	}

	for _, key := range requiredKeys {
		if _, ok := doc[key]; !ok {
			return nil, &ValidationError{Reason: fmt.Sprintf("missing required key %q", key)}
		}
	}

	cfg := &Config{
		BgColor2:         DefaultBgColor2,
		ContainerBgColor: DefaultContainerBgColor,
		TextColor:        DefaultTextColor,
		LinkColor:        DefaultLinkColor,
		BorderRadius:     DefaultBorderRadius,
		BgBrightness:     DefaultBgBrightness,
	}

	decodeString(doc, "bgColor1", &cfg.BgColor1)
	decodeString(doc, "bgColor2", &cfg.BgColor2)
	decodeString(doc, "containerBgColor", &cfg.ContainerBgColor)
	decodeString(doc, "textColor", &cfg.TextColor)
	decodeString(doc, "linkColor", &cfg.LinkColor)
	decodeString(doc, "font", &cfg.Font)
	decodeString(doc, "bgImage", &cfg.BgImage)
	decodeNumber(doc, "borderRadius", &cfg.BorderRadius)
	decodeNumber(doc, "bgBlur", &cfg.BgBlur)
	decodeNumber(doc, "bgBrightness", &cfg.BgBrightness)

	for key, val := range doc {
		if knownKeys[key] {
			continue
		}
		if cfg.Extra == nil {
			cfg.Extra = make(map[string]json.RawMessage)
		}
		cfg.Extra[key] = val
	}

	return cfg, nil
}

// decodeString decodes a JSON string value into dst. A value of the wrong
// type is ignored and dst keeps its default — wrong types surface later as
// render-time fallbacks, not upload rejections.
func decodeString(doc map[string]json.RawMessage, key string, dst *string) {
	raw, ok := doc[key]
	if !ok {
		return
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*dst = s
	}
}

// decodeNumber decodes a JSON number into dst, also accepting numeric
// strings ("12" or "12px"-free values) since hand-edited theme files often
// quote their numbers.
func decodeNumber(doc map[string]json.RawMessage, key string, dst *float64) {
	raw, ok := doc[key]
	if !ok {
		return
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		*dst = f
		return
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*dst = f
		}
	}
}
