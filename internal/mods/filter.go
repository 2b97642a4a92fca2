package mods

import "strings"

// Filter returns mods whose name or relative path contains query (case-insensitive).
// An empty query returns all mods.
func Filter(mods []Mod, query string) []Mod {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return mods
	}
	var out []Mod
	for _, m := range mods {
		if strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(strings.ToLower(m.RelPath), q) {
			out = append(out, m)
		}
	}
	return out
}

// Find returns the mod at rel, matching case-insensitively.
func Find(mods []Mod, rel string) (Mod, bool) {
	rel = normalizeRel(rel)
	for _, m := range mods {
		if strings.EqualFold(m.RelPath, rel) {
			return m, true
		}
	}
	return Mod{}, false
}

// Resolve maps a user argument to a mod: an exact relative path first,
// then a unique case-insensitive name match.
func Resolve(mods []Mod, arg string) (Mod, bool) {
	if m, ok := Find(mods, arg); ok {
		return m, true
	}
	var match Mod
	n := 0
	for _, m := range mods {
		if strings.EqualFold(m.Name, strings.TrimSpace(arg)) {
			match = m
			n++
		}
	}
	return match, n == 1
}

// Selected returns the enabled mods in enable order, plus the enabled
// paths that no longer match a mod.
func Selected(mods []Mod, enabled []string) (selected []Mod, missing []string) {
	for _, rel := range enabled {
		if m, ok := Find(mods, rel); ok {
			selected = append(selected, m)
		} else {
			missing = append(missing, rel)
		}
	}
	return selected, missing
}

func normalizeRel(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	return strings.Trim(p, "/")
}
