// internal/apiclient/documentos.go
package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/averbacoes/backoffice/internal/models"
)

// UploadFieldName is the multipart field the API reads the file from.
const UploadFieldName = "arquivo"

type Download struct {
	Content     []byte
	ContentType string
	FileName    string
}

func documentosPath(idAverbacao int64) string {
	return fmt.Sprintf("/api/averbacoes/%d/documentos", idAverbacao)
}

// GET /api/averbacoes/:id/documentos
func (c *Client) ListDocumentos(ctx context.Context, token string, idAverbacao int64) ([]models.DocumentoAverbacao, error) {
	page, err := getPage[models.DocumentoAverbacao](ctx, c, documentosPath(idAverbacao), nil, token)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// POST /api/averbacoes/:id/documentos (multipart)
func (c *Client) UploadDocumento(ctx context.Context, token string, idAverbacao int64, fileName, contentType string, content io.Reader) (*models.DocumentoAverbacao, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, UploadFieldName, escapeQuotes(fileName)))
		header.Set("Content-Type", contentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, content); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := c.newRequest(ctx, http.MethodPost, documentosPath(idAverbacao), nil, token, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var doc models.DocumentoAverbacao
	if err := c.roundTrip(req, &doc); err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	return &doc, nil
}

// DELETE /api/averbacoes/:id/documentos/:docId
func (c *Client) DeleteDocumento(ctx context.Context, token string, idAverbacao, idDocumento int64) error {
	path := fmt.Sprintf("%s/%d", documentosPath(idAverbacao), idDocumento)
	return c.call(ctx, http.MethodDelete, path, nil, token, nil, nil)
}

// GET /api/averbacoes/:id/documentos/:docId/download
// The whole body is read before returning; callers never see a partial file.
func (c *Client) DownloadDocumento(ctx context.Context, token string, idAverbacao, idDocumento int64) (*Download, error) {
	path := fmt.Sprintf("%s/%d/download", documentosPath(idAverbacao), idDocumento)
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, token, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(io.LimitReader(resp.Body, c.maxDownload+1))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: "falha ao baixar documento", Err: err}
	}
	if int64(len(content)) > c.maxDownload {
		return nil, &Error{Kind: KindServer, Status: resp.StatusCode, Message: fmt.Sprintf("documento excede o limite de %d bytes", c.maxDownload)}
	}

	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode >= 400 || strings.HasPrefix(contentType, "application/json") {
		// Errors come back as the JSON envelope
		if err := decodeEnvelope(resp.StatusCode, content, nil); err != nil {
			return nil, err
		}
	}

	return &Download{
		Content:     content,
		ContentType: contentType,
		FileName:    fileNameFromDisposition(resp.Header.Get("Content-Disposition")),
	}, nil
}

func fileNameFromDisposition(value string) string {
	if value == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(value)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func escapeQuotes(s string) string {
	return strings.NewReplacer("\\", "\\\\", `"`, "\\\"").Replace(s)
}
