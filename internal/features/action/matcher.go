package action

import (
	"wa-assist/internal/events"

	"github.com/d5/tengo/v2"
	"go.uber.org/zap"
)

// Matcher selects the subset of a tenant's actions that an event occurrence
// should fire. Ordering of the returned slice is unspecified; deliveries are
// independent per action.
type Matcher struct {
	Logger *zap.Logger
}

func NewMatcher(logger *zap.Logger) *Matcher {
	return &Matcher{Logger: logger}
}

// Match filters actions to those that are active, configured for the event
// kind, and whose filter conditions pass. Unknown event kinds match nothing.
func (m *Matcher) Match(actions []ActionConfig, kind events.Kind, env events.Envelope) []ActionConfig {
	if !kind.Valid() {
		return nil
	}

	var matched []ActionConfig
	for _, act := range actions {
		if !act.IsActive || act.Event != kind {
			continue
		}
		if kind == events.TagAdded && !tagsMatch(act.TriggerTags, env.Tags()) {
			continue
		}
		if act.FilterScript != "" && !m.evalFilterScript(act, env) {
			continue
		}
		matched = append(matched, act)
	}
	return matched
}

// tagsMatch applies the tag_added filter: an empty trigger list matches any
// tag, otherwise at least one configured tag must be present on the event.
func tagsMatch(triggerTags, eventTags []string) bool {
	if len(triggerTags) == 0 {
		return true
	}
	for _, want := range triggerTags {
		for _, got := range eventTags {
			if want == got {
				return true
			}
		}
	}
	return false
}

// evalFilterScript runs the action's Tengo filter against the event. The
// script sees `event` and `data` and must set `match` truthy. Any compile or
// runtime error disqualifies the action rather than failing the publish.
func (m *Matcher) evalFilterScript(act ActionConfig, env events.Envelope) bool {
	script := tengo.NewScript([]byte(act.FilterScript))

	_ = script.Add("event", string(env.Event))
	_ = script.Add("data", env.Data)

	compiled, err := script.Run()
	if err != nil {
		m.Logger.Warn("filter script failed",
			zap.String("action", act.ID.Hex()),
			zap.String("tenant", env.TenantID),
			zap.Error(err))
		return false
	}

	return !compiled.Get("match").IsUndefined() && compiled.Get("match").Bool()
}
