package queue

import (
	"log/slog"

	"github.com/hibiken/asynq"
)

// HandlersRegistry maps task types to their workers. The worker binary
// registers one handler per task type constant in this package.
type HandlersRegistry struct {
	mux *asynq.ServeMux
}

func NewHandlersRegistry() *HandlersRegistry {
	return &HandlersRegistry{
		mux: asynq.NewServeMux(),
	}
}

func (r *HandlersRegistry) Register(taskType string, handler asynq.Handler) {
	r.mux.Handle(taskType, handler)
	slog.Info("registered task handler", "type", taskType)
}

func (r *HandlersRegistry) Mux() *asynq.ServeMux {
	return r.mux
}
