package apperror

import (
	"golang.org/x/text/language"
)

// Code is a stable machine-readable error identifier.
type Code string

const (
	CodeInternal            Code = "internal_error"
	CodeValidationFailed    Code = "validation_failed"
	CodeInvalidID           Code = "invalid_id"
	CodeMissingFields       Code = "missing_fields"
	CodeNoUpdateFields      Code = "no_update_fields"
	CodeUserNotFound        Code = "user_not_found"
	CodeUserExists          Code = "user_exists"
	CodeUserRegisterFailed  Code = "user_register_failed"
	CodeUserUpdateFailed    Code = "user_update_failed"
	CodeInvalidCredentials  Code = "invalid_credentials"
	CodeTooManyAttempts     Code = "too_many_attempts"
	CodeAuthRequired        Code = "auth_required"
	CodeInvalidToken        Code = "invalid_token"
	CodeInsufficientRole    Code = "insufficient_permissions"
	CodeBookNotFound        Code = "book_not_found"
	CodeNoBooks             Code = "no_books"
	CodeNoOwnBooks          Code = "no_own_books"
	CodeBookForbidden       Code = "book_forbidden_or_missing"
	CodeBookPublishFailed   Code = "book_publish_failed"
	CodeBookDeleteFailed    Code = "book_delete_failed"
	CodeUnknownGenre        Code = "unknown_genre"
	CodeNoSentRequests      Code = "no_sent_requests"
	CodeNoReceivedRequests  Code = "no_received_requests"
	CodeRequestOwnBook      Code = "request_own_book"
	CodeRequestDuplicate    Code = "request_duplicate"
	CodeRequestCreateFailed Code = "request_create_failed"
	CodePhotoMissing        Code = "photo_missing"
	CodePhotoInvalid        Code = "photo_invalid"
	CodePhotoTooLarge       Code = "photo_too_large"
	CodePhotoSaveFailed     Code = "photo_save_failed"
	CodeTaskNotFound        Code = "task_not_found"
	CodeTasksDisabled       Code = "tasks_disabled"
)

// Success message keys share the catalog with error codes.
const (
	MsgUserUpdated   Code = "user_updated"
	MsgBookPublished Code = "book_published"
	MsgBookDeleted   Code = "book_deleted"
)

var supported = []language.Tag{
	language.Spanish, // first entry is the fallback
	language.English,
}

var matcher = language.NewMatcher(supported)

var catalog = map[language.Tag]map[Code]string{
	language.Spanish: {
		CodeInternal:            "Error interno del servidor",
		CodeValidationFailed:    "Los datos enviados no son válidos",
		CodeInvalidID:           "Identificador no válido",
		CodeMissingFields:       "Todos los campos son obligatorios",
		CodeNoUpdateFields:      "No se enviaron datos para actualizar",
		CodeUserNotFound:        "Usuario no encontrado",
		CodeUserExists:          "El usuario o el correo ya están registrados",
		CodeUserRegisterFailed:  "Error al registrar al usuario en la base de datos",
		CodeUserUpdateFailed:    "Error interno al actualizar usuario",
		CodeInvalidCredentials:  "Usuario o contraseña incorrectos",
		CodeTooManyAttempts:     "Demasiados intentos, inténtalo más tarde",
		CodeAuthRequired:        "Se requiere autenticación",
		CodeInvalidToken:        "Token no válido o expirado",
		CodeInsufficientRole:    "No tienes permisos suficientes",
		CodeBookNotFound:        "Libro no encontrado",
		CodeNoBooks:             "No hay ningún libro publicado",
		CodeNoOwnBooks:          "No hay ningún libro publicado por el usuario",
		CodeBookForbidden:       "No tienes permiso para eliminar este libro o no existe",
		CodeBookPublishFailed:   "Error al publicar el libro",
		CodeBookDeleteFailed:    "Error interno al eliminar el libro",
		CodeUnknownGenre:        "Uno o más géneros no existen",
		CodeNoSentRequests:      "No se encontraron solicitudes enviadas por este usuario",
		CodeNoReceivedRequests:  "No se encontraron solicitudes recibidas por este usuario",
		CodeRequestOwnBook:      "No puedes solicitar tu propio libro",
		CodeRequestDuplicate:    "Ya existe una solicitud pendiente para este libro",
		CodeRequestCreateFailed: "Error al crear la solicitud",
		CodePhotoMissing:        "No se pudo acceder al archivo",
		CodePhotoInvalid:        "El archivo no es una imagen válida",
		CodePhotoTooLarge:       "El archivo es demasiado grande",
		CodePhotoSaveFailed:     "Error al guardar la foto",
		CodeTaskNotFound:        "Tarea no encontrada",
		CodeTasksDisabled:       "La cola de tareas está desactivada",
		MsgUserUpdated:          "Usuario actualizado correctamente",
		MsgBookPublished:        "Libro publicado correctamente",
		MsgBookDeleted:          "Libro eliminado correctamente",
	},
	language.English: {
		CodeInternal:            "Internal server error",
		CodeValidationFailed:    "The submitted data is not valid",
		CodeInvalidID:           "Invalid identifier",
		CodeMissingFields:       "All fields are required",
		CodeNoUpdateFields:      "No fields were sent to update",
		CodeUserNotFound:        "User not found",
		CodeUserExists:          "Username or email already registered",
		CodeUserRegisterFailed:  "Failed to register user",
		CodeUserUpdateFailed:    "Failed to update user",
		CodeInvalidCredentials:  "Invalid username or password",
		CodeTooManyAttempts:     "Too many attempts, try again later",
		CodeAuthRequired:        "Authentication required",
		CodeInvalidToken:        "Invalid or expired token",
		CodeInsufficientRole:    "Insufficient permissions",
		CodeBookNotFound:        "Book not found",
		CodeNoBooks:             "No books have been published",
		CodeNoOwnBooks:          "You have not published any books",
		CodeBookForbidden:       "You may not delete this book or it does not exist",
		CodeBookPublishFailed:   "Failed to publish book",
		CodeBookDeleteFailed:    "Failed to delete book",
		CodeUnknownGenre:        "One or more genres do not exist",
		CodeNoSentRequests:      "No requests sent by this user",
		CodeNoReceivedRequests:  "No requests received by this user",
		CodeRequestOwnBook:      "You cannot request your own book",
		CodeRequestDuplicate:    "A pending request for this book already exists",
		CodeRequestCreateFailed: "Failed to create request",
		CodePhotoMissing:        "No file was uploaded",
		CodePhotoInvalid:        "The file is not a valid image",
		CodePhotoTooLarge:       "The file is too large",
		CodePhotoSaveFailed:     "Failed to save photo",
		CodeTaskNotFound:        "Task not found",
		CodeTasksDisabled:       "Task queue is disabled",
		MsgUserUpdated:          "User updated successfully",
		MsgBookPublished:        "Book published successfully",
		MsgBookDeleted:          "Book deleted successfully",
	},
}

// Localizer resolves messages for a preferred language with a fallback.
type Localizer struct {
	fallback language.Tag
}

// NewLocalizer creates a localizer that falls back to the given BCP 47 tag.
// Unknown or unsupported tags fall back to Spanish.
func NewLocalizer(defaultLang string) *Localizer {
	tag, _, _ := matcher.Match(language.Make(defaultLang))
	return &Localizer{fallback: base(tag)}
}

// Message returns the message for code in the language best matching acceptLanguage
// (an Accept-Language header value). An empty header uses the fallback language.
func (l *Localizer) Message(code Code, acceptLanguage string) string {
	tag := l.fallback
	if acceptLanguage != "" {
		if prefs, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(prefs) > 0 {
			matched, _, confidence := matcher.Match(prefs...)
			if confidence != language.No {
				tag = base(matched)
			}
		}
	}

	if msg, ok := catalog[tag][code]; ok {
		return msg
	}
	if msg, ok := catalog[l.fallback][code]; ok {
		return msg
	}
	return string(code)
}

// base strips regions and extensions so "en-US" resolves to the "en" catalog.
func base(tag language.Tag) language.Tag {
	b, _ := tag.Base()
	for _, s := range supported {
		sb, _ := s.Base()
		if sb == b {
			return s
		}
	}
	return supported[0]
}
