// internal/services/document_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/config"
	"github.com/averbacoes/backoffice/internal/i18n"
	"github.com/averbacoes/backoffice/internal/models"
)

var (
	// ErrDocumentsLocked is returned for uploads and removals on an
	// averbação whose status no longer allows document changes.
	ErrDocumentsLocked   = errors.New("documents are locked for this averbação")
	ErrNoFiles           = errors.New("no files to upload")
	ErrDocumentoNotFound = errors.New("documento not found")
)

const defaultMaxFileSize = 10 << 20

// AllowedDocumentTypes are the accepted MIME types for averbação documents.
var AllowedDocumentTypes = map[string]bool{
	"application/pdf":    true,
	"image/jpeg":         true,
	"image/png":          true,
	"image/jpg":          true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// UploadFile is one file of a batch.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func UploadFileFromHeader(fh *multipart.FileHeader) UploadFile {
	return UploadFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// NewUploadFile builds an UploadFile over in-memory content.
func NewUploadFile(name, contentType string, content []byte) UploadFile {
	return UploadFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(content)), nil
		},
	}
}

// UploadRejection explains why a file never reached the API.
type UploadRejection struct {
	File   string
	Reason string
}

func (r *UploadRejection) Error() string {
	return fmt.Sprintf("%s: %s", r.File, r.Reason)
}

type UploadReport struct {
	Enviados     []models.DocumentoAverbacao `json:"enviados"`
	Documentos   []models.DocumentoAverbacao `json:"documentos"`
	Notificacoes []Notification              `json:"notificacoes"`
	Gate         DocumentGate                `json:"gate"`
}

type DocumentService struct {
	api         *apiclient.Client
	storage     *StorageService
	maxFileSize int64
	parallelism int
	log         *logrus.Entry
}

func NewDocumentService(api *apiclient.Client, storage *StorageService, cfg *config.Config) *DocumentService {
	s := &DocumentService{
		api:         api,
		storage:     storage,
		maxFileSize: cfg.Upload.MaxFileSize,
		parallelism: cfg.Upload.Parallelism,
		log:         logrus.WithField("component", "documento"),
	}
	if s.maxFileSize <= 0 {
		s.maxFileSize = defaultMaxFileSize
	}
	if s.parallelism <= 0 {
		s.parallelism = 4
	}
	return s
}

// ValidateUpload checks size and type and returns the content type to
// forward. A missing or generic declared type is replaced by the sniffed one.
func (s *DocumentService) ValidateUpload(f UploadFile) (string, error) {
	if f.Size > s.maxFileSize {
		return "", &UploadRejection{File: f.Name, Reason: i18n.KeyDocumentoTooLarge}
	}

	contentType := normalizeContentType(f.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		sniffed, err := sniffContentType(f)
		if err != nil {
			return "", err
		}
		contentType = sniffed
	}

	if !AllowedDocumentTypes[contentType] {
		return "", &UploadRejection{File: f.Name, Reason: i18n.KeyDocumentoInvalidType}
	}
	return contentType, nil
}

func normalizeContentType(value string) string {
	if value == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return strings.ToLower(mediaType)
}

func sniffContentType(f UploadFile) (string, error) {
	r, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer r.Close()

	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to detect type of %s: %w", f.Name, err)
	}
	return normalizeContentType(mt.String()), nil
}

// loadMutable fetches the parent averbação and enforces the status gate.
func (s *DocumentService) loadMutable(ctx context.Context, sess *SessionContext, idAverbacao int64) (*models.Averbacao, error) {
	a, err := s.api.GetAverbacao(ctx, sess.AccessToken(), idAverbacao)
	if err != nil {
		return nil, err
	}
	if !models.DocumentsMutable(a.Status) {
		return nil, ErrDocumentsLocked
	}
	return a, nil
}

func (s *DocumentService) listOrEmbedded(ctx context.Context, sess *SessionContext, a *models.Averbacao) ([]models.DocumentoAverbacao, error) {
	docs, err := s.api.ListDocumentos(ctx, sess.AccessToken(), a.IDAverbacao)
	if err != nil {
		if apiclient.IsKind(err, apiclient.KindNotFound) {
			return nonNilDocs(a.Documentos), nil
		}
		return nil, err
	}
	return docs, nil
}

// List returns the document panel. Listing is never gated by status.
func (s *DocumentService) List(ctx context.Context, sess *SessionContext, idAverbacao int64) (*DocumentPanel, error) {
	a, err := s.api.GetAverbacao(ctx, sess.AccessToken(), idAverbacao)
	if err != nil {
		return nil, err
	}
	docs, err := s.listOrEmbedded(ctx, sess, a)
	if err != nil {
		return nil, err
	}

	panel := NewDocumentPanel(*a, docs, sess.Permissions())
	return &panel, nil
}

// UploadBatch validates every file, uploads the valid ones in parallel and
// merges each success into the displayed list. One file failing never
// affects the others.
func (s *DocumentService) UploadBatch(ctx context.Context, sess *SessionContext, idAverbacao int64, files []UploadFile, notifier *Notifier) (*UploadReport, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	a, err := s.loadMutable(ctx, sess, idAverbacao)
	if err != nil {
		return nil, err
	}
	current, err := s.listOrEmbedded(ctx, sess, a)
	if err != nil {
		return nil, err
	}

	maxMB := s.maxFileSize >> 20
	results := make([]*models.DocumentoAverbacao, len(files))

	var g errgroup.Group
	g.SetLimit(s.parallelism)

	for i, f := range files {
		contentType, err := s.ValidateUpload(f)
		if err != nil {
			var rejection *UploadRejection
			switch {
			case errors.As(err, &rejection) && rejection.Reason == i18n.KeyDocumentoTooLarge:
				notifier.FileError(f.Name, rejection.Reason, f.Name, maxMB)
			case errors.As(err, &rejection):
				notifier.FileError(f.Name, rejection.Reason, f.Name)
			default:
				notifier.FileError(f.Name, i18n.KeyDocumentoUploadFailed, f.Name, err.Error())
			}
			continue
		}

		g.Go(func() error {
			doc, err := s.uploadOne(ctx, sess, idAverbacao, f, contentType)
			if err != nil {
				s.log.WithError(err).WithFields(logrus.Fields{
					"averbacao_id": idAverbacao,
					"arquivo":      f.Name,
				}).Warn("Document upload failed")
				notifier.FileError(f.Name, i18n.KeyDocumentoUploadFailed, f.Name, uploadErrorMessage(err))
				return nil
			}
			results[i] = doc
			return nil
		})
	}
	g.Wait()

	enviados := []models.DocumentoAverbacao{}
	for _, doc := range results {
		if doc != nil {
			enviados = append(enviados, *doc)
		}
	}
	if len(enviados) > 0 {
		notifier.Success(i18n.KeyDocumentoUploadSuccess, len(enviados))
	}

	s.log.WithFields(logrus.Fields{
		"usuario_id":   sess.User().IDUsuario,
		"averbacao_id": idAverbacao,
		"enviados":     len(enviados),
		"total":        len(files),
	}).Info("Document batch processed")

	return &UploadReport{
		Enviados:     enviados,
		Documentos:   mergeDocuments(current, enviados),
		Notificacoes: notifier.List(),
		Gate:         NewDocumentGate(a.Status, sess.Permissions()),
	}, nil
}

func (s *DocumentService) uploadOne(ctx context.Context, sess *SessionContext, idAverbacao int64, f UploadFile, contentType string) (*models.DocumentoAverbacao, error) {
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer r.Close()

	return s.api.UploadDocumento(ctx, sess.AccessToken(), idAverbacao, f.Name, contentType, r)
}

func uploadErrorMessage(err error) string {
	if apiErr, ok := apiclient.AsError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func mergeDocuments(current, added []models.DocumentoAverbacao) []models.DocumentoAverbacao {
	out := make([]models.DocumentoAverbacao, 0, len(current)+len(added))
	seen := make(map[int64]bool, len(current)+len(added))
	for _, list := range [][]models.DocumentoAverbacao{current, added} {
		for _, doc := range list {
			if doc.IDDocumento != 0 && seen[doc.IDDocumento] {
				continue
			}
			seen[doc.IDDocumento] = true
			out = append(out, doc)
		}
	}
	return out
}

// Delete removes one document and returns the panel without it.
func (s *DocumentService) Delete(ctx context.Context, sess *SessionContext, idAverbacao, idDocumento int64) (*DocumentPanel, error) {
	a, err := s.loadMutable(ctx, sess, idAverbacao)
	if err != nil {
		return nil, err
	}
	current, err := s.listOrEmbedded(ctx, sess, a)
	if err != nil {
		return nil, err
	}

	if err := s.api.DeleteDocumento(ctx, sess.AccessToken(), idAverbacao, idDocumento); err != nil {
		return nil, err
	}

	if s.storage != nil {
		if err := s.storage.Delete(ctx, idAverbacao, idDocumento); err != nil {
			s.log.WithError(err).WithField("documento_id", idDocumento).Warn("Failed to evict cached document")
		}
	}

	remaining := make([]models.DocumentoAverbacao, 0, len(current))
	for _, doc := range current {
		if doc.IDDocumento != idDocumento {
			remaining = append(remaining, doc)
		}
	}

	s.log.WithFields(logrus.Fields{
		"usuario_id":   sess.User().IDUsuario,
		"averbacao_id": idAverbacao,
		"documento_id": idDocumento,
	}).Info("Document deleted")

	panel := NewDocumentPanel(*a, remaining, sess.Permissions())
	return &panel, nil
}

// Download returns the document content under its original file name.
// Downloads are never gated by status.
func (s *DocumentService) Download(ctx context.Context, sess *SessionContext, idAverbacao, idDocumento int64) (*CachedDocument, error) {
	docs, err := s.api.ListDocumentos(ctx, sess.AccessToken(), idAverbacao)
	if err != nil {
		return nil, err
	}

	var meta *models.DocumentoAverbacao
	for i := range docs {
		if docs[i].IDDocumento == idDocumento {
			meta = &docs[i]
			break
		}
	}
	if meta == nil {
		return nil, ErrDocumentoNotFound
	}

	if s.storage != nil {
		cached, ok, err := s.storage.Get(ctx, idAverbacao, idDocumento)
		if err != nil {
			s.log.WithError(err).WithField("documento_id", idDocumento).Warn("Document cache read failed")
		}
		if ok {
			cached.FileName = downloadName(meta, cached.FileName)
			return cached, nil
		}
	}

	dl, err := s.api.DownloadDocumento(ctx, sess.AccessToken(), idAverbacao, idDocumento)
	if err != nil {
		return nil, err
	}

	doc := &CachedDocument{
		Content:     dl.Content,
		ContentType: dl.ContentType,
		FileName:    downloadName(meta, dl.FileName),
	}
	if doc.ContentType == "" {
		doc.ContentType = meta.TipoArquivo
	}

	if s.storage != nil {
		if err := s.storage.Put(ctx, idAverbacao, idDocumento, doc); err != nil {
			s.log.WithError(err).WithField("documento_id", idDocumento).Warn("Document cache write failed")
		}
	}

	return doc, nil
}

func downloadName(meta *models.DocumentoAverbacao, fallback string) string {
	switch {
	case meta.NomeOriginal != "":
		return meta.NomeOriginal
	case fallback != "":
		return fallback
	case meta.NomeArquivo != "":
		return meta.NomeArquivo
	default:
		return fmt.Sprintf("documento-%d", meta.IDDocumento)
	}
}
