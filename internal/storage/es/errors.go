package es

import (
	"errors"
	"net/http"

	"github.com/DjordjeVuckovic/alumni-memories/internal/storage"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var esErr *types.ElasticsearchError
	if errors.As(err, &esErr) {
		return storage.NewError(statusKind(esErr.Status), op, err)
	}
	return storage.NewError(storage.KindOf(err), op, err)
}

func statusKind(status int) storage.ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return storage.KindNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return storage.KindPermissionDenied
	case status == http.StatusTooManyRequests, status >= 500:
		return storage.KindTransient
	case status >= 400:
		return storage.KindValidation
	default:
		return storage.KindUnknown
	}
}
