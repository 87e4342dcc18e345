package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fjacquet/finance-dashboard/internal/importer"
)

// importResponse is an import result with its counts spelled out.
type importResponse struct {
	*importer.Result
	NewCount       int    `json:"newCount"`
	DuplicateCount int    `json:"duplicateCount"`
	Error          string `json:"error,omitempty"`
}

func newImportResponse(r *importer.Result) importResponse {
	resp := importResponse{Result: r, NewCount: r.NewCount(), DuplicateCount: r.DuplicateCount()}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}

// upload runs fn over the multipart "file" field of the request.
func (s *Server) upload(c *gin.Context, fn func(importer.File) (*importer.Result, error)) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.abort(c, err)
			return
		}
		badRequest(c, fmt.Errorf("no file uploaded: %w", err))
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, fmt.Errorf("cannot read upload: %w", err))
		return
	}
	defer f.Close()

	result, err := fn(importer.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     f,
	})
	if err != nil {
		c.AbortWithStatusJSON(statusFor(err), newImportResponse(result))
		return
	}
	c.JSON(http.StatusOK, newImportResponse(result))
}

func (s *Server) previewImport(c *gin.Context) {
	ctx := c.Request.Context()
	s.upload(c, func(f importer.File) (*importer.Result, error) {
		return s.importer.Plan(ctx, f, nil)
	})
}

// commitImport persists the upload only when the form carries confirm=true;
// otherwise the run stops at the confirmation gate with the cancelled outcome.
func (s *Server) commitImport(c *gin.Context) {
	ctx := c.Request.Context()
	s.upload(c, func(f importer.File) (*importer.Result, error) {
		confirmed := c.PostForm("confirm") == "true"
		gate := importer.ConfirmFunc(func(context.Context, *importer.Plan) (bool, error) {
			return confirmed, nil
		})
		return s.importer.Import(ctx, f, nil, gate)
	})
}
