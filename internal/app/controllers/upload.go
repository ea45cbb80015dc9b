package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dreamline/mentorlink/internal/app/services"
	"github.com/gin-gonic/gin"
)

const imageField = "image"

func isMultipart(ctx *gin.Context) bool {
	return strings.HasPrefix(ctx.ContentType(), "multipart/form-data")
}

// formImage opens the optional "image" part of a multipart request. The
// returned closer must be called once the upload has been consumed.
func formImage(ctx *gin.Context) (*services.Upload, func(), error) {
	header, err := ctx.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, nil, err
	}

	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &services.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Reader:   file,
	}, func() { _ = file.Close() }, nil
}
