package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.MustParse("es-US")

	message.SetString(lang, "notification.generic.title", "Notificación")
	message.SetString(lang, "notification.generic.body", "Se actualizó el expediente de un candidato.")
	message.SetString(lang, "notification.candidate.unknown", "Un candidato")
	message.SetString(lang, "notification.check_status.completed", "completada")
	message.SetString(lang, "notification.check_status.failed", "rechazada")
	message.SetString(lang, "notification.check_status.review", "en revisión")
	message.SetString(lang, "notification.check_status.in_progress", "en curso")
	message.SetString(lang, "notification.check_status.pending", "pendiente")
	message.SetString(lang, "notification.background_check.title", "Actualización de verificación de antecedentes")
	message.SetString(lang, "notification.background_check.body", "La verificación de antecedentes de %s ahora está %s.")
}
