// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// UploadField is the multipart field the backend reads the document from.
const UploadField = "file"

// SupportedExtensions lists the document types the upload dialog offers.
var SupportedExtensions = []string{".txt", ".md", ".pdf"}

// IsSupportedDocument reports whether name has an extension from
// SupportedExtensions. The comparison ignores case.
func IsSupportedDocument(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// UploadDocument streams r to /admin/upload as a multipart form with the
// content under UploadField. It returns true iff the backend answered 2xx.
func (c *Client) UploadDocument(ctx context.Context, name string, r io.Reader) bool {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	defer cancel()

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(UploadField, filepath.Base(name))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(PathUpload), pr)
	if err != nil {
		pr.CloseWithError(err)
		c.logger.Debug().Err(err).Msg("upload request invalid")
		return false
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		c.logger.Debug().Err(err).Str("file", name).Msg("upload failed")
		return false
	}
	defer drainAndClose(resp.Body)

	if !isSuccess(resp.StatusCode) {
		c.logger.Debug().Int("status", resp.StatusCode).Str("file", name).Msg("upload rejected")
		return false
	}
	c.logger.Debug().Str("file", name).Msg("document uploaded")
	return true
}

// UploadFile opens path and uploads it with UploadDocument. A file that
// cannot be opened counts as a failed upload.
func (c *Client) UploadFile(ctx context.Context, path string) bool {
	f, err := os.Open(path)
	if err != nil {
		c.logger.Debug().Err(err).Str("file", path).Msg("cannot open document")
		return false
	}
	defer f.Close()

	return c.UploadDocument(ctx, f.Name(), f)
}
