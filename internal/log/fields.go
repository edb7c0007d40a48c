package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldDate       = "date"
	FieldKey        = "key"
	FieldMorning    = "morning"
	FieldEvening    = "evening"
	FieldRange      = "range"
	FieldRemoved    = "removed"
	FieldEventType  = "event_type"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStore   = "store"
	ComponentTracker = "tracker"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentBackend = "backend"
	ComponentCLI     = "cli"
)

// Operations defines standard operation names
const (
	OpToggle    = "toggle"
	OpCommit    = "commit"
	OpAdopt     = "adopt"
	OpDelete    = "delete"
	OpUnlock    = "unlock"
	OpClear     = "clear"
	OpList      = "list"
	OpAggregate = "aggregate"
	OpMirror    = "mirror"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the fields describing one day's selections.
func (f LogFields) WithRecord(date string, morning, evening bool) LogFields {
	f[FieldDate] = date
	f[FieldMorning] = morning
	f[FieldEvening] = evening
	return f
}

func (f LogFields) WithEvent(eventType, date string) LogFields {
	f[FieldEventType] = eventType
	if date != "" {
		f[FieldDate] = date
	}
	return f
}

func (f LogFields) WithHTTP(method, path string, statusCode int, durationMs int64) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
