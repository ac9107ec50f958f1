package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind - класс ошибки ядра, определяет HTTP-код ответа
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthorization
	KindInvalidState
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindInvalidState:
		return "invalid_state"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// HTTPStatus возвращает HTTP-код для класса ошибки
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindInvalidState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Error - типизированная ошибка приложения
type Error struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы errors.Is работал с предопределенными значениями
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New создает ошибку заданного класса
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap создает ошибку с цепочкой причин
func Wrap(err error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// KindOf возвращает класс ошибки; 0, если это не *Error
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

// IsKind проверяет класс ошибки в цепочке
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Validation создает ошибку некорректных входных данных
func Validation(code, message string) *Error {
	return New(KindValidation, code, message)
}

// Forbidden создает ошибку отсутствия прав на действие
func Forbidden(code, message string) *Error {
	return New(KindAuthorization, code, message)
}

// InvalidState создает ошибку недопустимого перехода
func InvalidState(code, message string) *Error {
	return New(KindInvalidState, code, message)
}

// NotFound создает ошибку отсутствующего ресурса
func NotFound(resource string) *Error {
	return New(KindNotFound, resource+"_not_found", resource+" not found")
}

// Storage оборачивает сбой хранилища
func Storage(err error) *Error {
	return Wrap(err, KindStorage, "storage_error", "storage failure")
}

// Предопределенные ошибки
var (
	ErrSelfBarter         = Validation("self_barter", "cannot create a barter with yourself")
	ErrSkillOwnership     = Validation("skill_ownership", "skill does not belong to the expected user")
	ErrInvalidStatus      = Validation("invalid_status", "invalid barter status")
	ErrInvalidDecision    = Validation("invalid_decision", "decision must be accept or reject")
	ErrInvalidRating      = Validation("invalid_rating", "rating must be between 0 and 5")
	ErrSkillNameRequired  = Validation("skill_name_required", "skill name is required")
	ErrSkillNameTooLong   = Validation("skill_name_too_long", "skill name is too long")
	ErrEmptyMessage       = Validation("empty_message", "message body is required")
	ErrNotParticipant     = Forbidden("not_participant", "user is not a participant of this barter")
	ErrNotReceiver        = Forbidden("not_receiver", "only the receiver can accept or reject a barter")
	ErrNotAdmin           = Forbidden("not_admin", "administrator rights required")
	ErrNotPending         = InvalidState("not_pending", "barter is not pending")
	ErrNotAdminApproved   = InvalidState("not_admin_approved", "barter has not been approved by an administrator")
	ErrNotAccepted        = InvalidState("not_accepted", "barter is not accepted")
	ErrNotCompleted       = InvalidState("not_completed", "feedback is allowed only for completed barters")
	ErrCannotReturnToPend = InvalidState("cannot_return_to_pending", "barter cannot be moved back to pending")
	ErrBarterNotFound     = NotFound("barter")
	ErrSkillNotFound      = NotFound("skill")
	ErrUserNotFound       = NotFound("user")
	ErrFeedbackNotFound   = NotFound("feedback")
)
