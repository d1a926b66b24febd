package wizard

import (
	"encoding/json"
	"strconv"

	"github.com/owlingo/console-backend/internal/entity"
)

// BuildRequest assembles the outbound generation request from the
// accumulated wizard selections. The skill-first shape is selected whenever
// a skill has been chosen; otherwise the legacy activity-type shape is used.
func BuildRequest(form *entity.WizardForm) *entity.GenerationRequest {
	req := &entity.GenerationRequest{
		SourceID: form.SourceID,
		UnitIDs:  append([]string(nil), form.UnitIDs...),
	}

	if form.Options != nil {
		req.Options = make(map[string]any, len(form.Options))
		for k, v := range form.Options {
			req.Options[k] = v
		}
	}

	if form.SkillSlug != "" {
		req.SkillSlug = form.SkillSlug
		req.FormatSlug = form.FormatSlug
	} else {
		req.ActivityType = form.ActivityType
	}

	return req
}

// UseStreaming reports whether the streamed generation path applies: exactly
// when the chosen skill is reading comprehension and more than one passage
// was requested. The mix skill and all single-passage or non-reading kinds
// use the plain path.
func UseStreaming(form *entity.WizardForm) bool {
	return form.SkillSlug == entity.SkillReading &&
		OptionInt(form.Options, entity.OptionPassageCount, 1) > 1
}

// OptionInt reads an integer option, tolerating the numeric types JSON
// decoding may produce.
func OptionInt(opts map[string]any, key string, def int) int {
	v, ok := opts[key]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return def
}

// OptionBool reads a boolean option.
func OptionBool(opts map[string]any, key string) bool {
	v, ok := opts[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// OptionString reads a string option.
func OptionString(opts map[string]any, key string) string {
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
