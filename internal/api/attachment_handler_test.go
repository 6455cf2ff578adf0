package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/api/shared"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/files"
	"github.com/taskhive/taskhive/internal/mocks"
)

type attachmentHandlerFixture struct {
	handler         *AttachmentHandler
	attachmentStore *mocks.MockAttachmentStore
	blobs           *files.DiskStore
	owner           *domain.User
	member          *domain.User
	stranger        *domain.User
	project         *domain.Project
	task            *domain.Task
}

func newAttachmentHandlerFixture(t *testing.T) *attachmentHandlerFixture {
	t.Helper()

	owner := newTestUser(t, "owner")
	member := newTestUser(t, "member")
	stranger := newTestUser(t, "stranger")
	project := newTestProject(t, owner.ID)
	task := newTestTask(t, project.ID, owner.ID)

	blobs, err := files.NewDiskStore(config.StorageConfig{
		UploadDir:      t.TempDir(),
		MaxUploadBytes: 1024,
	})
	require.NoError(t, err)

	attachmentStore := mocks.NewMockAttachmentStore()
	taskStore := mocks.NewMockTaskStore().Add(task)
	projectStore := mocks.NewMockProjectStore().AddProject(project).AddMemberUser(project.ID, member.ID)
	userStore := mocks.NewMockUserStore().Add(owner).Add(member)

	return &attachmentHandlerFixture{
		handler:         NewAttachmentHandler(attachmentStore, taskStore, projectStore, userStore, blobs, nil),
		attachmentStore: attachmentStore,
		blobs:           blobs,
		owner:           owner,
		member:          member,
		stranger:        stranger,
		project:         project,
		task:            task,
	}
}

// multipartUpload builds a multipart request with the given payload under the
// "file" field.
func multipartUpload(t *testing.T, target string, fileName string, payload []byte, userID uuid.UUID) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, userID))
}

// storeBlob saves payload through the blob store and records an attachment
// for it. Test setup helper for download/delete cases.
func (f *attachmentHandlerFixture) storeBlob(t *testing.T, uploadedBy uuid.UUID, payload []byte) *domain.Attachment {
	t.Helper()

	saved, err := f.blobs.Save("report.txt", bytes.NewReader(payload))
	require.NoError(t, err)

	attachment, err := domain.NewAttachment(
		f.task.ID, uploadedBy,
		saved.FileName, "report.txt",
		saved.Path, saved.MimeType, saved.Size,
	)
	require.NoError(t, err)
	f.attachmentStore.Add(attachment)
	return attachment
}

func TestAttachmentHandlerUpload(t *testing.T) {
	t.Run("member uploads", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)

		req := multipartUpload(t, "/api/tasks/"+f.task.ID.String()+"/attachments",
			"notes.txt", []byte("meeting notes"), f.member.ID)
		req = withPathParams(req, map[string]string{"taskID": f.task.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Upload(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var attachment domain.Attachment
		decodeBody(t, rec, &attachment)
		assert.Equal(t, "notes.txt", attachment.OriginalFileName)
		assert.Equal(t, f.member.ID, attachment.UploadedBy)
		assert.Equal(t, int64(len("meeting notes")), attachment.FileSize)
		assert.True(t, strings.HasPrefix(attachment.MimeType, "text/plain"), attachment.MimeType)
		assert.NotEqual(t, "notes.txt", attachment.FileName, "stored name is generated")

		// Bytes actually landed on disk.
		data, err := os.ReadFile(attachment.FilePath)
		require.NoError(t, err)
		assert.Equal(t, "meeting notes", string(data))
	})

	t.Run("path components stripped from client name", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)

		req := multipartUpload(t, "/api/tasks/"+f.task.ID.String()+"/attachments",
			"../../etc/passwd", []byte("x"), f.member.ID)
		req = withPathParams(req, map[string]string{"taskID": f.task.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Upload(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var attachment domain.Attachment
		decodeBody(t, rec, &attachment)
		assert.Equal(t, "passwd", attachment.OriginalFileName)
	})

	t.Run("oversized upload rejected", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)

		req := multipartUpload(t, "/api/tasks/"+f.task.ID.String()+"/attachments",
			"big.bin", bytes.Repeat([]byte("a"), 2048), f.member.ID)
		req = withPathParams(req, map[string]string{"taskID": f.task.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Upload(rec, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Empty(t, f.attachmentStore.Attachments)
	})

	t.Run("empty file rejected", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)

		req := multipartUpload(t, "/api/tasks/"+f.task.ID.String()+"/attachments",
			"empty.txt", nil, f.member.ID)
		req = withPathParams(req, map[string]string{"taskID": f.task.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Upload(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "File is empty", errorMessage(t, rec))
	})

	t.Run("missing file field", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)

		req := newAuthedRequest(t, http.MethodPost, "/api/tasks/"+f.task.ID.String()+"/attachments", nil, f.member.ID)
		req = withPathParams(req, map[string]string{"taskID": f.task.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Upload(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing or invalid file field", errorMessage(t, rec))
	})

	t.Run("non-member forbidden", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)

		req := multipartUpload(t, "/api/tasks/"+f.task.ID.String()+"/attachments",
			"notes.txt", []byte("sneaky"), f.stranger.ID)
		req = withPathParams(req, map[string]string{"taskID": f.task.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Upload(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAttachmentHandlerList(t *testing.T) {
	f := newAttachmentHandlerFixture(t)
	f.storeBlob(t, f.member.ID, []byte("one"))
	f.storeBlob(t, f.owner.ID, []byte("two"))

	req := newAuthedRequest(t, http.MethodGet, "/api/tasks/"+f.task.ID.String()+"/attachments", nil, f.member.ID)
	req = withPathParams(req, map[string]string{"taskID": f.task.ID.String()})
	rec := httptest.NewRecorder()
	f.handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp AttachmentListResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2, resp.Count)
}

func TestAttachmentHandlerDownload(t *testing.T) {
	t.Run("member downloads", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)
		attachment := f.storeBlob(t, f.owner.ID, []byte("report body"))

		req := newAuthedRequest(t, http.MethodGet,
			"/api/attachments/"+attachment.ID.String()+"/download", nil, f.member.ID)
		req = withPathParams(req, map[string]string{"attachmentID": attachment.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Download(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body, err := io.ReadAll(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, "report body", string(body))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="report.txt"`)
	})

	t.Run("non-member forbidden", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)
		attachment := f.storeBlob(t, f.owner.ID, []byte("secret"))

		req := newAuthedRequest(t, http.MethodGet,
			"/api/attachments/"+attachment.ID.String()+"/download", nil, f.stranger.ID)
		req = withPathParams(req, map[string]string{"attachmentID": attachment.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Download(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("blob missing from disk", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)
		attachment := f.storeBlob(t, f.owner.ID, []byte("gone"))
		require.NoError(t, os.Remove(attachment.FilePath))

		req := newAuthedRequest(t, http.MethodGet,
			"/api/attachments/"+attachment.ID.String()+"/download", nil, f.member.ID)
		req = withPathParams(req, map[string]string{"attachmentID": attachment.ID.String()})
		rec := httptest.NewRecorder()
		f.handler.Download(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Attachment file not found", errorMessage(t, rec))
	})
}

func TestAttachmentHandlerDelete(t *testing.T) {
	deleteAttachment := func(f *attachmentHandlerFixture, attachmentID, callerID uuid.UUID) *httptest.ResponseRecorder {
		req := newAuthedRequest(t, http.MethodDelete, "/api/attachments/"+attachmentID.String(), nil, callerID)
		req = withPathParams(req, map[string]string{"attachmentID": attachmentID.String()})
		rec := httptest.NewRecorder()
		f.handler.Delete(rec, req)
		return rec
	}

	t.Run("uploader deletes record and blob", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)
		attachment := f.storeBlob(t, f.member.ID, []byte("bye"))

		rec := deleteAttachment(f, attachment.ID, f.member.ID)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, f.attachmentStore.Attachments)
		_, err := os.Stat(attachment.FilePath)
		assert.True(t, os.IsNotExist(err), "blob should be removed from disk")
	})

	t.Run("project owner deletes", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)
		attachment := f.storeBlob(t, f.member.ID, []byte("moderated"))

		rec := deleteAttachment(f, attachment.ID, f.owner.ID)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other member cannot delete", func(t *testing.T) {
		f := newAttachmentHandlerFixture(t)
		other := newTestUser(t, "other")
		// other is a member but not the uploader or project owner.
		f.handler.projectStore.(*mocks.MockProjectStore).AddMemberUser(f.project.ID, other.ID)
		attachment := f.storeBlob(t, f.member.ID, []byte("keep"))

		rec := deleteAttachment(f, attachment.ID, other.ID)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Len(t, f.attachmentStore.Attachments, 1)
	})
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\doc.txt`, "doc.txt"},
		{"nested/dir/file.png", "file.png"},
	}
	for _, tt := range tests {
		header := &multipart.FileHeader{Filename: tt.in}
		assert.Equal(t, tt.want, sanitizeFilename(header), tt.in)
	}
}

func TestAttachmentBlobPathStaysInUploadDir(t *testing.T) {
	f := newAttachmentHandlerFixture(t)
	attachment := f.storeBlob(t, f.member.ID, []byte("x"))
	assert.True(t, filepath.IsAbs(attachment.FilePath))
}
