package bot

import (
	"errors"

	"vipgate/internal/database"
	"vipgate/internal/service"
)

func (b *Bot) getErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, database.ErrTokenNotFound) {
		return "⚠️ Ese token no existe o ya fue utilizado."
	}

	if errors.Is(err, database.ErrTokenExpired) {
		return "⚠️ Ese token ha caducado. Pide uno nuevo al administrador."
	}

	if errors.Is(err, database.ErrTierNotFound) {
		return "⚠️ El plan de suscripción ya no existe."
	}

	if errors.Is(err, database.ErrTierInactive) {
		return "⚠️ Ese plan de suscripción ya no está disponible."
	}

	if errors.Is(err, database.ErrNoActiveSubscription) {
		return "⚠️ El usuario no tiene una suscripción VIP activa."
	}

	if errors.Is(err, database.ErrRequestPending) {
		return "⚠️ Ya tienes una solicitud de acceso en curso."
	}

	if errors.Is(err, database.ErrDuplicateName) {
		return "⚠️ Ya existe un elemento con ese nombre."
	}

	if errors.Is(err, database.ErrRankNotFound) {
		return "⚠️ Ese rango no existe."
	}

	if errors.Is(err, database.ErrPackNotFound) {
		return "⚠️ Ese paquete de contenido no existe."
	}

	if errors.Is(err, service.ErrSelfReferral) {
		return "⚠️ No puedes usar tu propio enlace de invitación."
	}

	if errors.Is(err, service.ErrReferrerNotFound) {
		return "⚠️ El enlace de invitación no es válido."
	}

	// Default error message
	return "❌ Ocurrió un error al procesar tu solicitud. Inténtalo más tarde o contacta con un administrador."
}
