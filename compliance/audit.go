package compliance

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Audit event types.
const (
	AuditDataExported       = "data_exported"
	AuditDataDeleted        = "data_deletion"
	AuditAnonymizationError = "anonymization_error"
)

// Auditor writes compliance events to the audit trail with PII
// protection: user identifiers are hashed before logging.
type Auditor struct {
	logger *slog.Logger
}

// NewAuditor creates an auditor writing through the given logger.
func NewAuditor(logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{logger: logger}
}

// Record logs a compliance event with a unique record ID and the
// hashed subject identifier.
func (a *Auditor) Record(eventType, userID string, details map[string]any) {
	a.logger.Info("compliance_audit",
		"record_id", uuid.NewString(),
		"event_type", eventType,
		"user_id_hash", hashForLogging(userID),
		"details", details,
		"timestamp", time.Now().UTC(),
	)
}

// hashForLogging produces a short stable digest of an identifier so
// audit entries can be correlated without exposing the raw value.
func hashForLogging(id string) string {
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:8])
}
