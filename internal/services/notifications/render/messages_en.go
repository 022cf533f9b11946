package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "notification.generic.title", defaultGenericTitle)
	message.SetString(lang, "notification.generic.body", defaultGenericBody)
	message.SetString(lang, "notification.candidate.unknown", defaultUnknownName)
	message.SetString(lang, "notification.check_status.completed", "completed")
	message.SetString(lang, "notification.check_status.failed", "failed")
	message.SetString(lang, "notification.check_status.review", "needs review")
	message.SetString(lang, "notification.check_status.in_progress", "in progress")
	message.SetString(lang, "notification.check_status.pending", "pending")
	message.SetString(lang, "notification.background_check.title", "Background check update")
	message.SetString(lang, "notification.background_check.body", "%s's background check is now %s.")
}
