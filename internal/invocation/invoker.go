package invocation

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/amrrdev/officetext/internal/pipeline"
	"github.com/amrrdev/officetext/internal/types"
)

// Processor runs the extraction pipeline for one document reference.
type Processor interface {
	Process(ctx context.Context, fileName string) (*types.Result, error)
}

// Invoker turns raw envelopes into pipeline runs and output envelopes.
type Invoker struct {
	processor Processor
	logger    *logrus.Entry
}

func NewInvoker(processor Processor, logger *logrus.Entry) *Invoker {
	return &Invoker{processor: processor, logger: logger}
}

// Invoke decodes raw, processes it and returns the success envelope. On
// failure the error is returned unchanged; callers pick the transport
// response with StatusCode.
func (i *Invoker) Invoke(ctx context.Context, raw []byte) (*Response, error) {
	req, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	i.logger.WithFields(logrus.Fields{
		"file_name": req.FileName,
		"style":     req.Style,
	}).Debug("invocation received")

	result, err := i.processor.Process(ctx, req.FileName)
	if err != nil {
		return nil, err
	}

	return NewResponse(result)
}

// StatusCode maps an invocation error to the HTTP status reported for it.
func StatusCode(err error) int {
	switch pipeline.Kind(err) {
	case pipeline.ErrMalformedInput:
		return http.StatusBadRequest
	case pipeline.ErrUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case pipeline.ErrExtractionFailure:
		return http.StatusUnprocessableEntity
	case pipeline.ErrStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
