package service

import (
	"regexp"
	"strconv"
	"time"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Renderer substitutes {name} placeholders into template strings. Rendering
// must never block a send: if any placeholder cannot be resolved the original
// template string is returned untouched instead of erroring.
type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render merges caller variables with the injected convenience fields
// (current_date, current_time, current_year, sender_name). Caller variables
// are merged first and then overwritten by the injected fields on key
// collision — existing templates depend on this order, so it is kept as-is.
func (r *Renderer) Render(tmpl string, vars map[string]string, senderName string) string {
	merged := make(map[string]string, len(vars)+4)
	for k, v := range vars {
		merged[k] = v
	}
	now := r.now()
	merged["current_date"] = now.Format("2006-01-02")
	merged["current_time"] = now.Format("15:04")
	merged["current_year"] = strconv.Itoa(now.Year())
	if senderName != "" {
		merged["sender_name"] = senderName
	}

	unresolved := false
	out := placeholderPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := m[1 : len(m)-1]
		if v, ok := merged[key]; ok {
			return v
		}
		unresolved = true
		return m
	})
	if unresolved {
		return tmpl
	}
	return out
}
