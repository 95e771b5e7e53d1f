// Package compliance implements data portability (export) and data
// erasure (anonymize) workflows over an abstract user data repository.
//
// Export is all-or-nothing: a failure fetching any data set fails the
// whole request, and partial exports are never returned. The exported
// document is encrypted through the vault before leaving the process.
//
// Erasure is ordered for safety: the soft-delete mark is written
// first and is the durable source of truth. Anonymization of residual
// records is best effort: its failure is logged and audited but does
// not roll the mark back, preferring "user is marked deleted" over
// "user is fully anonymized".
package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vendorly/secgate/vault"
)

// ErrUserNotFound is returned by repositories for unknown users.
var ErrUserNotFound = errors.New("user not found")

// ExportRequest asks for a full copy of one user's data.
type ExportRequest struct {
	UserID string `validate:"required"`

	// Encoding selects the vault output encoding. Empty means the
	// vault default (base64).
	Encoding vault.Encoding `validate:"omitempty,oneof=base64 hex"`
}

// ErasureRequest asks for deletion of one user's data.
type ErasureRequest struct {
	UserID string `validate:"required"`

	// RequestedBy records who initiated the erasure for the audit
	// trail. Defaults to the subject.
	RequestedBy string
}

// ExportResult is the sealed data portability document.
type ExportResult struct {
	// ReceiptID uniquely identifies this export for support and audit.
	ReceiptID string `json:"receiptId"`

	// Data is the vault-encrypted JSON document.
	Data string `json:"data"`

	Format     string    `json:"format"`
	ExportDate time.Time `json:"exportDate"`
	DataTypes  []string  `json:"dataTypes"`
}

// exportDocument is the plaintext shape serialized before encryption.
type exportDocument struct {
	Profile     Profile     `json:"profile"`
	Orders      []Order     `json:"orders"`
	Preferences Preferences `json:"preferences"`
	Activity    []Activity  `json:"activity"`
}

var exportDataTypes = []string{"profile", "orders", "preferences", "activity"}

// Manager orchestrates the compliance workflows.
type Manager struct {
	repo     Repository
	vault    *vault.Vault
	auditor  *Auditor
	validate *validator.Validate
}

// NewManager creates a Manager. All three collaborators are required;
// pass NewAuditor(nil) to audit through the default logger.
func NewManager(repo Repository, v *vault.Vault, auditor *Auditor) *Manager {
	return &Manager{
		repo:     repo,
		vault:    v,
		auditor:  auditor,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Export gathers the user's profile, orders, preferences, and
// activity log, serializes them as one JSON document, and encrypts it.
// Any repository failure fails the whole export.
func (m *Manager) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	if err := m.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid export request: %w", err)
	}

	var doc exportDocument
	var err error

	if doc.Profile, err = m.repo.Profile(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("export profile: %w", err)
	}
	if doc.Orders, err = m.repo.Orders(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("export orders: %w", err)
	}
	if doc.Preferences, err = m.repo.Preferences(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("export preferences: %w", err)
	}
	if doc.Activity, err = m.repo.Activity(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("export activity: %w", err)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("serialize export: %w", err)
	}

	var opts []vault.Option
	if req.Encoding != "" {
		opts = append(opts, vault.WithEncoding(req.Encoding))
	}
	sealed, err := m.vault.Encrypt(ctx, string(payload), opts...)
	if err != nil {
		return nil, fmt.Errorf("encrypt export: %w", err)
	}

	result := &ExportResult{
		ReceiptID:  uuid.NewString(),
		Data:       sealed,
		Format:     "JSON",
		ExportDate: time.Now().UTC(),
		DataTypes:  exportDataTypes,
	}

	m.auditor.Record(AuditDataExported, req.UserID, map[string]any{
		"receipt_id": result.ReceiptID,
		"data_types": result.DataTypes,
	})

	return result, nil
}

// Erase marks the user for deferred deletion, anonymizes residual
// records, and writes an audit entry. A failed soft-delete aborts; a
// failed anonymization does not.
func (m *Manager) Erase(ctx context.Context, req ErasureRequest) error {
	if err := m.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid erasure request: %w", err)
	}

	requestedBy := req.RequestedBy
	if requestedBy == "" {
		requestedBy = req.UserID
	}

	if err := m.repo.MarkForDeletion(ctx, req.UserID); err != nil {
		return fmt.Errorf("mark for deletion: %w", err)
	}

	if err := m.repo.Anonymize(ctx, req.UserID); err != nil {
		m.auditor.Record(AuditAnonymizationError, req.UserID, map[string]any{
			"requested_by_hash": hashForLogging(requestedBy),
			"error":             err.Error(),
		})
	}

	m.auditor.Record(AuditDataDeleted, req.UserID, map[string]any{
		"requested_by_hash": hashForLogging(requestedBy),
	})

	return nil
}
