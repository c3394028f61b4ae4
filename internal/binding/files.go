package binding

import (
	"io"
	"mime/multipart"
	"reflect"

	"github.com/pkg/errors"
)

var (
	bytesType      = reflect.TypeFor[[]byte]()
	uploadFileType = reflect.TypeFor[*UploadFile]()
)

// UploadFile is a received multipart file. Content is read lazily.
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64

	header *multipart.FileHeader
}

func newUploadFile(fh *multipart.FileHeader) *UploadFile {
	return &UploadFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		header:      fh,
	}
}

func (f *UploadFile) Open() (multipart.File, error) {
	if f.header == nil {
		return nil, errors.New("upload file has no content")
	}
	return f.header.Open()
}

func (f *UploadFile) ReadAll() ([]byte, error) {
	file, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read upload %q", f.Filename)
	}
	return data, nil
}

func isFileType(rt reflect.Type) bool {
	switch rt {
	case bytesType, uploadFileType:
		return true
	}
	if rt.Kind() == reflect.Slice {
		return rt.Elem() == bytesType || rt.Elem() == uploadFileType
	}
	return false
}

// fileValue converts the received parts into the parameter type.
func fileValue(rt reflect.Type, parts []*multipart.FileHeader) (reflect.Value, error) {
	single := func(elem reflect.Type, fh *multipart.FileHeader) (reflect.Value, error) {
		upload := newUploadFile(fh)
		if elem == uploadFileType {
			return reflect.ValueOf(upload), nil
		}
		data, err := upload.ReadAll()
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(data), nil
	}

	if rt == bytesType || rt == uploadFileType {
		return single(rt, parts[len(parts)-1])
	}

	out := reflect.MakeSlice(rt, 0, len(parts))
	for _, fh := range parts {
		v, err := single(rt.Elem(), fh)
		if err != nil {
			return reflect.Value{}, err
		}
		out = reflect.Append(out, v)
	}
	return out, nil
}
