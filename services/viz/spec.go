// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package viz

// SchemaURL identifies the Vega-Lite dialect emitted by all strategies.
const SchemaURL = "https://vega.github.io/schema/vega-lite/v5.json"

// Spec builds a top-level Vega-Lite specification around the given body.
func Spec(body map[string]any) map[string]any {
	out := map[string]any{"$schema": SchemaURL}
	for k, v := range body {
		out[k] = v
	}
	return out
}

// Values wraps inline rows as a Vega-Lite data block.
func Values(rows []map[string]any) map[string]any {
	return map[string]any{"values": rows}
}

// Layer composes sub-charts that share a data block.
func Layer(data map[string]any, layers ...map[string]any) map[string]any {
	return Spec(map[string]any{"data": data, "layer": layers})
}

// Tooltip builds a tooltip entry with optional title and format.
func Tooltip(field, typ, title, format string) map[string]any {
	t := map[string]any{"field": field, "type": typ}
	if title != "" {
		t["title"] = title
	}
	if format != "" {
		t["format"] = format
	}
	return t
}
