// fields.go — allowlist of log fields permitted through SafeLogger.
package zerolog

// PermittedFields lists the only keys SafeLogger will write. Anything not
// in this set (device_id, payload, parameters, component payload contents,
// subscriber/session identifiers) is dropped by sanitize.
var PermittedFields = map[string]bool{
	"service":       true,
	"message_kind":  true, // create | update | destroy
	"message_id":    true,
	"component_id":  true,
	"context_id":    true,
	"dmapp_id":      true,
	"not_placed":    true,
	"reason":        true,
	"duration_ms":   true,
	"status":        true,
	"error":         true,
	"message":       true,
	"devices_count": true,
	"client_ip":     true, // already masked by logger.RedactIP
}

// isPermitted reports whether the given field key may be logged.
func isPermitted(key string) bool {
	return PermittedFields[key]
}
