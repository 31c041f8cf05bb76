// Package response writes the storefront's JSON envelope:
//
//	{"status": 200, "message": "...", "data": {...}, "errors": {"campo": "..."}}
package response

import (
	"encoding/json"
	"net/http"
)

// Default messages shown to customers.
const (
	MsgInvalid      = "Dados inválidos"
	MsgUnauthorized = "Faça login para continuar."
	MsgForbidden    = "Você não tem permissão para acessar esta página."
	MsgNotFound     = "Não encontrado."
	MsgInternal     = "Erro interno. Tente novamente mais tarde."
)

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func Success(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusOK, envelope{Status: http.StatusOK, Data: data})
}

func Created(w http.ResponseWriter, data interface{}) {
	write(w, http.StatusCreated, envelope{Status: http.StatusCreated, Data: data})
}

// Error sends a message-only envelope.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with a field → message map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: MsgInvalid,
		Errors:  errs,
	})
}

func Unauthorized(w http.ResponseWriter) { Error(w, http.StatusUnauthorized, MsgUnauthorized) }

func Forbidden(w http.ResponseWriter) { Error(w, http.StatusForbidden, MsgForbidden) }

func NotFound(w http.ResponseWriter) { Error(w, http.StatusNotFound, MsgNotFound) }

func InternalError(w http.ResponseWriter) { Error(w, http.StatusInternalServerError, MsgInternal) }
