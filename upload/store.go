package upload

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shalevclinic/backend/config"
	"github.com/shalevclinic/backend/services"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// maxFormMemory bounds the in-memory portion of multipart parsing
const maxFormMemory = 32 << 20

// allowedMimeTypes is the image upload allow-list
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Descriptor records one accepted upload. It exists for the duration of a
// request: the caller either persists a record pointing at StoredName or
// invokes Cleanup to undo the file write.
type Descriptor struct {
	OriginalName string
	MimeType     string
	Size         int64
	StoredName   string
	Path         string
}

// Store validates incoming image uploads and writes them to a flat storage
// directory. File deletion is best-effort; a failed delete is logged and
// accepted as a leak rather than surfaced to the caller.
type Store struct {
	fs     afero.Fs
	cfg    config.UploadConfig
	logger *zap.Logger
}

// NewStore creates the upload store and its storage directory. Directory
// creation is idempotent.
func NewStore(fs afero.Fs, cfg config.UploadConfig, logger *zap.Logger) (*Store, error) {
	if err := fs.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, services.WrapStorage("failed to create upload directory", err)
	}

	return &Store{
		fs:     fs,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Dir returns the storage directory path
func (s *Store) Dir() string {
	return s.cfg.Dir
}

// Accept validates the multipart file attached to the request and writes it
// to storage under a generated name. It returns (nil, nil) when the request
// carries no file at all, so endpoints with optional images can share it.
// The bytes are durably written when Accept returns; on any later failure
// the caller must invoke Cleanup.
func (s *Store) Accept(r *http.Request) (*Descriptor, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, services.NewDomainError(services.ErrorTypeUpload, "UPLOAD_ERROR", "failed to parse upload", err)
	}

	form := r.MultipartForm
	if form == nil || len(form.File) == 0 {
		return nil, nil
	}

	var headers []*multipart.FileHeader
	for field, fieldHeaders := range form.File {
		if field != s.cfg.FieldName {
			return nil, services.ErrUnexpectedField
		}
		headers = append(headers, fieldHeaders...)
	}

	if len(headers) == 0 {
		return nil, nil
	}
	if len(headers) > s.cfg.MaxFiles {
		return nil, services.ErrTooManyFiles
	}

	header := headers[0]

	if header.Size > s.cfg.MaxFileSize {
		return nil, services.ErrFileTooLarge
	}

	declared := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if !allowedMimeTypes[declared] {
		return nil, services.ErrUnsupportedMimeType.WithDetail("mimeType", declared)
	}

	file, err := header.Open()
	if err != nil {
		return nil, services.WrapStorage("failed to open uploaded file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxFileSize+1))
	if err != nil {
		return nil, services.WrapStorage("failed to read uploaded file", err)
	}
	if int64(len(data)) > s.cfg.MaxFileSize {
		return nil, services.ErrFileTooLarge
	}

	// The declared Content-Type is client-controlled; sniff the actual
	// bytes as well
	sniffed := mimetype.Detect(data).String()
	if !allowedMimeTypes[sniffed] {
		return nil, services.ErrUnsupportedMimeType.WithDetail("mimeType", sniffed)
	}

	storedName := GenerateName(header.Filename)
	path := filepath.Join(s.cfg.Dir, storedName)

	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return nil, services.WrapStorage("failed to write uploaded file", err)
	}

	s.logger.Debug("upload accepted",
		zap.String("original_name", header.Filename),
		zap.String("stored_name", storedName),
		zap.Int64("size", int64(len(data))),
		zap.String("mime_type", sniffed))

	return &Descriptor{
		OriginalName: header.Filename,
		MimeType:     sniffed,
		Size:         int64(len(data)),
		StoredName:   storedName,
		Path:         path,
	}, nil
}

// Cleanup deletes the stored file of a descriptor after a downstream
// persistence failure. A missing file is a no-op; any other fault is logged
// and swallowed so it never masks the error being reported to the caller.
func (s *Store) Cleanup(d *Descriptor) {
	if d == nil {
		return
	}
	s.remove(d.Path)
}

// Remove deletes a previously stored file by its storage filename,
// best-effort
func (s *Store) Remove(storedName string) {
	s.remove(filepath.Join(s.cfg.Dir, storedName))
}

// BulkRemove deletes a batch of stored files, best-effort. Failures are
// logged and skipped; the caller removes the corresponding records
// regardless, so the filesystem and the database may diverge under this
// failure mode.
func (s *Store) BulkRemove(storedNames []string) {
	for _, name := range storedNames {
		if name == "" {
			continue
		}
		s.remove(filepath.Join(s.cfg.Dir, name))
	}
}

func (s *Store) remove(path string) {
	err := s.fs.Remove(path)
	if err == nil || os.IsNotExist(err) {
		return
	}
	s.logger.Error("failed to delete stored file",
		zap.String("path", path),
		zap.Error(err))
}

// Exists reports whether a stored file is present
func (s *Store) Exists(storedName string) (bool, error) {
	return afero.Exists(s.fs, filepath.Join(s.cfg.Dir, storedName))
}
