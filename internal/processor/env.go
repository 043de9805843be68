// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package processor

import (
	"strings"
)

// EnvVar is one parsed KEY=VALUE pair.
type EnvVar struct {
	Key   string
	Value string
}

// ParseEnv splits s on whitespace and each token on its first "=".
// Tokens without "=" or with an empty key are ignored.
func ParseEnv(s string) []EnvVar {
	var out []EnvVar

	for _, tok := range strings.Fields(s) {
		k, v, ok := strings.Cut(tok, "=")
		if !ok || k == "" {
			continue
		}

		out = append(out, EnvVar{Key: k, Value: v})
	}

	return out
}

// MergeEnv returns base overlaid with the pairs in overlay. Later pairs win.
// When overlay holds no pairs nil is returned, meaning "inherit".
func MergeEnv(base []string, overlay string) []string {
	vars := ParseEnv(overlay)
	if len(vars) == 0 {
		return nil
	}

	index := make(map[string]int, len(base))
	out := make([]string, 0, len(base)+len(vars))

	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		index[k] = len(out)
		out = append(out, kv)
	}

	for _, v := range vars {
		kv := v.Key + "=" + v.Value
		if i, ok := index[v.Key]; ok {
			out[i] = kv
			continue
		}

		index[v.Key] = len(out)
		out = append(out, kv)
	}

	return out
}
