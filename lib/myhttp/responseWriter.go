package myhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"log"
	"net/http"

	"github.com/MarcGrol/cafeshop/lib/myerrors"
	"github.com/MarcGrol/cafeshop/lib/mylog"
)

type ResponseWriter interface {
	WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error)
	Write(c context.Context, w http.ResponseWriter, httpStatus int, resp any)
	WriteHTML(c context.Context, w http.ResponseWriter, httpStatus int, tmpl *template.Template, data any)
}

type errorResponse struct {
	ErrorCode int
	Message   string
}

type SuccessResponse struct {
	Message string
}

func NewWriter(logger mylog.Logger) ResponseWriter {
	return &responseWriter{
		logger: logger,
	}
}

type responseWriter struct {
	logger mylog.Logger
}

func (rw responseWriter) WriteError(c context.Context, w http.ResponseWriter, errorCode int, err error) {
	httpStatus := myerrors.GetHTTPStatus(err)
	severity := mylog.SeverityWarn
	if httpStatus >= http.StatusInternalServerError {
		severity = mylog.SeverityError
	}
	rw.logger.Log(c, "", severity, "Error response: http-status:%d, error-code:%d, error-msg:%s", httpStatus, errorCode, err)

	message := myerrors.Message(err)
	if httpStatus >= http.StatusInternalServerError {
		// never leak storage details
		message = http.StatusText(httpStatus)
	}
	rw.write(w, httpStatus, errorResponse{
		ErrorCode: errorCode,
		Message:   message,
	})
}

func (rw responseWriter) Write(c context.Context, w http.ResponseWriter, httpStatus int, resp any) {
	rw.logger.Log(c, "", mylog.SeverityInfo, "Success response: http-status:%d", httpStatus)
	rw.write(w, httpStatus, resp)
}

func (rw responseWriter) WriteHTML(c context.Context, w http.ResponseWriter, httpStatus int, tmpl *template.Template, data any) {
	// render into a buffer first so a template error can still become a proper error response
	buf := bytes.Buffer{}
	err := tmpl.Execute(&buf, data)
	if err != nil {
		rw.WriteError(c, w, 1, myerrors.NewInternalError(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(httpStatus)
	_, err = w.Write(buf.Bytes())
	if err != nil {
		log.Printf("Error writing html response: %s", err)
	}
}

func (rw responseWriter) write(w http.ResponseWriter, httpStatus int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "\t")
	err := encoder.Encode(resp)
	if err != nil {
		log.Printf("Error writing response: %s", err)
		return
	}
}
