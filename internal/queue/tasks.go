package queue

const (
	TypeGenerationRun = "generation:run"
)
