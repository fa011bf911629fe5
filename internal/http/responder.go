package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
)

var (
	errBadRequestBody       = errors.New("Formato de requisição inválido.")
	errInvalidRoomID        = errors.New("Identificador de sala inválido.")
	errInvalidReservationID = errors.New("Identificador de reserva inválido.")
	errMissingPrincipal     = errors.New("Identifique-se para acessar este recurso.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "Você não tem permissão para executar esta operação.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Recurso não encontrado."})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ALREADY_EXISTS",
			Message:   "Já existe um recurso com este nome.",
		})
	case errors.Is(err, application.ErrTooLateToCancel):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "CANCEL_TOO_LATE",
			Message:   "O cancelamento deve ser feito com pelo menos 1 hora de antecedência.",
		})
	case errors.Is(err, application.ErrRoomInUse):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ROOM_IN_USE",
			Message:   "A sala possui reservas ativas e não pode ser removida.",
		})
	case errors.Is(err, application.ErrStoreConflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "BOOKING_CONFLICT",
			Message:   "A sala acabou de ser reservada por outra pessoa. Tente novamente.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Há erros nos dados informados.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		var iErr *application.InvalidInputError
		if errors.As(err, &iErr) {
			r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
				Message: translateValidationMessage(iErr.Message),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Erro interno do servidor."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Requisição inválida."
	case http.StatusUnauthorized:
		return "Autenticação necessária."
	case http.StatusForbidden:
		return "Você não tem permissão para executar esta operação."
	case http.StatusNotFound:
		return "Recurso não encontrado."
	case http.StatusConflict:
		return "A requisição conflita com o estado atual do recurso."
	case http.StatusUnprocessableEntity:
		return "Há erros nos dados informados."
	case http.StatusTooManyRequests:
		return "Muitas requisições. Tente novamente em instantes."
	default:
		return "Erro interno do servidor."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string][]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string][]string, len(vErr.FieldErrors))
	for field, messages := range vErr.FieldErrors {
		out := make([]string, 0, len(messages))
		for _, msg := range messages {
			out = append(out, translateValidationMessage(msg))
		}
		translated[field] = out
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "start is required":
		return "O horário de início é obrigatório."
	case "end is required":
		return "O horário de término é obrigatório."
	case "end must be after start":
		return "O horário de término deve ser posterior ao horário de início."
	case "start cannot be in the past":
		return "Não é possível reservar em datas passadas."
	case "party size must be positive":
		return "O número de pessoas deve ser positivo."
	case "the room is already reserved in the requested period":
		return "A sala já está reservada neste período."
	case "reservation has already ended":
		return "A reserva já foi encerrada."
	case "room does not exist":
		return "A sala informada não existe."
	case "room reference is required":
		return "Informe a sala da reserva."
	case "name is required":
		return "O nome da sala é obrigatório."
	case "room type must be one of laboratorio, auditorio, comum, outro":
		return "O tipo de sala deve ser laboratorio, auditorio, comum ou outro."
	case "capacity must be positive":
		return "A capacidade deve ser um número positivo."
	case "open time must be a valid time of day":
		return "O horário de abertura é inválido."
	case "close time must be a valid time of day":
		return "O horário de fechamento é inválido."
	case "close time must be after open time":
		return "O horário de fechamento deve ser posterior ao de abertura."
	case "end time must be after start time":
		return "O horário de término deve ser posterior ao horário de início."
	case "weekday must be between 0 (Sunday) and 6 (Saturday)":
		return "O dia da semana deve ser entre 0 (domingo) e 6 (sábado)."
	case "first date cannot be in the past":
		return "A primeira data não pode estar no passado."
	}

	switch {
	case strings.HasPrefix(message, "reservations require at least"):
		return "A reserva deve ser feita com pelo menos 15 minutos de antecedência."
	case strings.HasPrefix(message, "duration must be between"):
		return "A duração da reserva deve ser entre 30 minutos e 4 horas."
	case strings.HasPrefix(message, "party size ("):
		return "O número de pessoas excede a capacidade da sala. " + extractParenthetical(message)
	case strings.HasPrefix(message, "reservation must fall within the room operating hours"):
		return "A reserva deve estar dentro do horário de funcionamento da sala."
	case strings.HasPrefix(message, "users may hold at most"):
		return "Cada usuário pode ter no máximo 3 reservas ativas."
	case strings.HasPrefix(message, "week count must be between"):
		return "O número de semanas deve ser entre 1 e 12."
	case strings.HasPrefix(message, "occurrence on "):
		return "A ocorrência em " + strings.TrimSuffix(strings.TrimPrefix(message, "occurrence on "), " is in the past") + " está no passado."
	case strings.HasPrefix(message, "the room is already reserved on "):
		return "A sala já está reservada em " + strings.TrimPrefix(message, "the room is already reserved on ") + "."
	}

	return message
}

// extractParenthetical pulls the numeric detail out of the capacity message
// so the localized text keeps both figures.
func extractParenthetical(message string) string {
	first := strings.IndexByte(message, '(')
	if first < 0 {
		return ""
	}
	return "(" + strings.TrimSuffix(strings.ReplaceAll(message[first+1:], ") exceeds the room capacity (", " de "), ")") + ")"
}

type errorResponse struct {
	ErrorCode string              `json:"error_code,omitempty"`
	Message   string              `json:"message"`
	Errors    map[string][]string `json:"errors,omitempty"`
}
