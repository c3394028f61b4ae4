package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/binding"
	"github.com/deppfellow/apitour/internal/schema"
	"github.com/deppfellow/apitour/internal/server"
)

// UploadHandler hosts the multipart endpoints.
type UploadHandler struct {
	Handler
}

func NewUploadHandler(s *server.Server) *UploadHandler {
	return &UploadHandler{
		Handler: NewHandler(s),
	}
}

type CreateFileRequest struct {
	File []byte `file:"file"`
}

func (h *UploadHandler) CreateFile(c echo.Context, req *CreateFileRequest) (any, error) {
	return schema.NewObject().Set("file_size", len(req.File)), nil
}

type UploadFileRequest struct {
	File *binding.UploadFile `file:"file"`
}

func (h *UploadHandler) CreateUploadFile(c echo.Context, req *UploadFileRequest) (any, error) {
	return schema.NewObject().
		Set("filename", req.File.Filename).
		Set("content_type", req.File.ContentType), nil
}

type UploadFilesRequest struct {
	Files []*binding.UploadFile `file:"files"`
}

func (h *UploadHandler) CreateUploadFiles(c echo.Context, req *UploadFilesRequest) (any, error) {
	names := make([]string, len(req.Files))
	for i, f := range req.Files {
		names[i] = f.Filename
	}
	return schema.NewObject().Set("filenames", names), nil
}

type FilesFormRequest struct {
	File  []byte              `file:"file"`
	FileB *binding.UploadFile `file:"fileb"`
	Token string              `form:"token"`
}

func (h *UploadHandler) CreateFilesForm(c echo.Context, req *FilesFormRequest) (any, error) {
	return schema.NewObject().
		Set("file_size", len(req.File)).
		Set("token", req.Token).
		Set("fileb_content_type", req.FileB.ContentType), nil
}
