package internal

// Task change events, the values double as RabbitMQ routing keys.
const (
	EventTaskCreated = "tasks.event.created"
	EventTaskUpdated = "tasks.event.updated"
	EventTaskDeleted = "tasks.event.deleted"
)
