package logs

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Format renders one JSON log line as "TIME LEVEL [component] msg" followed
// by indented key/value lines. Lines that are not JSON objects are returned
// unchanged.
func Format(line string) string {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil || fields == nil {
		return line
	}

	ts := popString(fields, "ts")
	if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		ts = parsed.Local().Format("2006-01-02 15:04:05")
	}
	level := strings.ToUpper(popString(fields, "level"))
	msg := popString(fields, "msg")
	component := popString(fields, "component")

	var b strings.Builder
	b.WriteString(ts)
	b.WriteString(" ")
	b.WriteString(level)
	if component != "" {
		fmt.Fprintf(&b, " [%s]", component)
	}
	b.WriteString(" ")
	b.WriteString(msg)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n    - %s: %v", k, fields[k])
	}
	return b.String()
}

func popString(fields map[string]any, key string) string {
	v, ok := fields[key]
	if !ok {
		return ""
	}
	delete(fields, key)
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
