package service

import "github.com/ivanoskov/expensebot/internal/model"

// ErrorKind — этап конвейера, на котором произошла ошибка
type ErrorKind int

const (
	ErrorKindNone ErrorKind = iota
	ErrorKindExtraction
	ErrorKindNormalization
	ErrorKindStorage
	ErrorKindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindExtraction:
		return "extraction"
	case ErrorKindNormalization:
		return "normalization"
	case ErrorKindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Result — итог обработки одного сообщения
type Result struct {
	RequestID string
	Success   bool
	Kind      ErrorKind
	Expense   *model.Expense
	Message   string
	Err       error
}
