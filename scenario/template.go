//
// Tencent is pleased to support the open source community by making trpc-scenario-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-scenario-go is licensed under the Apache License Version 2.0.
//
//

package scenario

import (
	"fmt"
	"regexp"
)

// placeholderRE matches {{identifier}} tokens. Identifiers are alphanumerics,
// underscores and hyphens; surrounding whitespace inside the braces is allowed.
var placeholderRE = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_\-]+)\s*\}\}`)

// Render substitutes every {{name}} placeholder in text with the stringified
// value bound under name in the state's slots, else vars, else the empty
// string. No escaping, no recursive expansion, unknown names render empty.
func Render(text string, state *State) string {
	if text == "" {
		return ""
	}
	return placeholderRE.ReplaceAllStringFunc(text, func(tok string) string {
		key := placeholderRE.FindStringSubmatch(tok)[1]
		if v, ok := state.Slots[key]; ok {
			return stringify(v)
		}
		if v, ok := state.Vars[key]; ok {
			return stringify(v)
		}
		return ""
	})
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
