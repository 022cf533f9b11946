// Package render produces localized recruiter-facing copy for stored
// notifications.
package render

import (
	"strings"

	"golang.org/x/text/message"
)

const (
	// TopicBackgroundCheckStatus is the background-check transition template id.
	TopicBackgroundCheckStatus = "pipeline.background_check.status"

	defaultGenericTitle = "Notification"
	defaultGenericBody  = "A candidate record was updated."
	defaultUnknownName  = "A candidate"
)

// Input is one render request for a stored notification.
type Input struct {
	Topic         string
	CandidateName string
	NewStatus     string
}

// Output is localized copy derived from one notification.
type Output struct {
	Title    string
	BodyText string
}

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Render returns localized copy for one notification.
func Render(loc Localizer, input Input) Output {
	switch normalizeToken(input.Topic) {
	case TopicBackgroundCheckStatus:
		return renderBackgroundCheckStatus(loc, input)
	default:
		return genericOutput(loc)
	}
}

func renderBackgroundCheckStatus(loc Localizer, input Input) Output {
	name := strings.TrimSpace(input.CandidateName)
	if name == "" {
		name = localizeWithFallback(loc, "notification.candidate.unknown", defaultUnknownName)
	}
	status := localizedStatus(loc, input.NewStatus)

	title := localize(loc, "notification.background_check.title")
	body := localize(loc, "notification.background_check.body", name, status)
	if title == "notification.background_check.title" || body == "notification.background_check.body" {
		return genericOutput(loc)
	}
	return Output{Title: title, BodyText: body}
}

func genericOutput(loc Localizer) Output {
	return Output{
		Title:    localizeWithFallback(loc, "notification.generic.title", defaultGenericTitle),
		BodyText: localizeWithFallback(loc, "notification.generic.body", defaultGenericBody),
	}
}

func localizedStatus(loc Localizer, raw string) string {
	key := "notification.check_status.unknown"
	fallback := strings.TrimSpace(raw)
	switch normalizeToken(raw) {
	case "completed":
		key = "notification.check_status.completed"
		fallback = "completed"
	case "failed":
		key = "notification.check_status.failed"
		fallback = "failed"
	case "review":
		key = "notification.check_status.review"
		fallback = "needs review"
	case "in_progress", "in-progress":
		key = "notification.check_status.in_progress"
		fallback = "in progress"
	case "pending":
		key = "notification.check_status.pending"
		fallback = "pending"
	}
	return localizeWithFallback(loc, key, fallback)
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
