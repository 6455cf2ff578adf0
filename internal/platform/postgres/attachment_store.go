package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/platform/logger"
	"github.com/taskhive/taskhive/internal/store"
)

// PostgresAttachmentStore implements the store.AttachmentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAttachmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAttachmentStore creates a new PostgreSQL implementation of the AttachmentStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAttachmentStore(db store.DBTX, logger *slog.Logger) *PostgresAttachmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAttachmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "attachment_store")),
	}
}

// Ensure PostgresAttachmentStore implements store.AttachmentStore interface
var _ store.AttachmentStore = (*PostgresAttachmentStore)(nil)

// WithTx implements store.AttachmentStore.WithTx
func (s *PostgresAttachmentStore) WithTx(tx *sql.Tx) store.AttachmentStore {
	return &PostgresAttachmentStore{
		db:     tx,
		logger: s.logger,
	}
}

// Create implements store.AttachmentStore.Create
func (s *PostgresAttachmentStore) Create(ctx context.Context, attachment *domain.Attachment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := attachment.Validate(); err != nil {
		log.Warn("attachment validation failed during create",
			slog.String("error", err.Error()),
			slog.String("attachment_id", attachment.ID.String()))
		return err
	}

	query := `
		INSERT INTO attachments (id, file_name, original_file_name, file_path,
		                         file_size, mime_type, task_id, uploaded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		attachment.ID,
		attachment.FileName,
		attachment.OriginalFileName,
		attachment.FilePath,
		attachment.FileSize,
		attachment.MimeType,
		attachment.TaskID,
		attachment.UploadedBy,
		attachment.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create attachment",
			slog.String("error", err.Error()),
			slog.String("attachment_id", attachment.ID.String()),
			slog.String("task_id", attachment.TaskID.String()))
		return MapError(err)
	}

	log.Info("attachment created successfully",
		slog.String("attachment_id", attachment.ID.String()),
		slog.String("task_id", attachment.TaskID.String()),
		slog.Int64("size", attachment.FileSize))
	return nil
}

func scanAttachment(row interface{ Scan(dest ...any) error }) (*domain.Attachment, error) {
	var attachment domain.Attachment
	err := row.Scan(
		&attachment.ID,
		&attachment.FileName,
		&attachment.OriginalFileName,
		&attachment.FilePath,
		&attachment.FileSize,
		&attachment.MimeType,
		&attachment.TaskID,
		&attachment.UploadedBy,
		&attachment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &attachment, nil
}

// GetByID implements store.AttachmentStore.GetByID
func (s *PostgresAttachmentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	query := `
		SELECT id, file_name, original_file_name, file_path, file_size,
		       mime_type, task_id, uploaded_by, created_at
		FROM attachments
		WHERE id = $1
	`

	attachment, err := scanAttachment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttachmentNotFound
		}
		return nil, MapError(err)
	}

	return attachment, nil
}

// ListForTask implements store.AttachmentStore.ListForTask
func (s *PostgresAttachmentStore) ListForTask(ctx context.Context, taskID uuid.UUID) ([]*domain.Attachment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, file_name, original_file_name, file_path, file_size,
		       mime_type, task_id, uploaded_by, created_at
		FROM attachments
		WHERE task_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		log.Error("failed to list attachments",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	attachments := []*domain.Attachment{}
	for rows.Next() {
		attachment, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		attachments = append(attachments, attachment)
	}

	return attachments, rows.Err()
}

// Delete implements store.AttachmentStore.Delete
func (s *PostgresAttachmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete attachment",
			slog.String("error", err.Error()),
			slog.String("attachment_id", id.String()))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrAttachmentNotFound)
}
