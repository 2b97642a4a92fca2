package errors

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// FormatForCLI renders err for stderr. Uncoded errors are shown as internal.
func FormatForCLI(err error) string {
	if err == nil {
		return ""
	}
	e, ok := As(err)
	if !ok {
		e = New(ErrCodeInternal, err.Error(), err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n", e.Message)
	for _, k := range sortedKeys(e.Details) {
		fmt.Fprintf(&b, "  %s: %s\n", k, e.Details[k])
	}
	if hint := e.Hint(); hint != "" {
		fmt.Fprintf(&b, "  Hint: %s\n", hint)
	}
	fmt.Fprintf(&b, "  Code: %s\n", e.Code)
	return b.String()
}

// LogAttrs returns slog arguments describing err. Coded errors log their
// code, category and details under an "error" group.
func LogAttrs(err error) []any {
	if err == nil {
		return nil
	}
	e, ok := As(err)
	if !ok {
		return []any{slog.String("error", err.Error())}
	}

	attrs := []any{
		slog.String("code", e.Code),
		slog.String("category", string(e.Category)),
		slog.String("message", e.Message),
	}
	if e.Cause != nil {
		attrs = append(attrs, slog.String("cause", e.Cause.Error()))
	}
	for _, k := range sortedKeys(e.Details) {
		attrs = append(attrs, slog.String(k, e.Details[k]))
	}
	return []any{slog.Group("error", attrs...)}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
