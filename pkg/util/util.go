package util

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/golang/glog"
	"github.com/munnerz/goautoneg"

	qberrors "github.com/quizzbuzz/quizzbuzz/pkg/errors"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain"
)

type HTTPMessage struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReturnHTTPMessage writes a small status envelope. Clients that prefer text/plain
// over JSON get the bare message instead.
func ReturnHTTPMessage(w http.ResponseWriter, r *http.Request, httpStatus int, messageType string, message string) {
	if negotiate(r) == contentTypeText {
		w.Header().Set("Content-Type", contentTypeText+"; charset=utf-8")
		w.WriteHeader(httpStatus)
		fmt.Fprintln(w, message)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(httpStatus)

	msg := HTTPMessage{
		Status:  strconv.Itoa(httpStatus),
		Message: message,
		Type:    messageType,
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		glog.Errorf("error writing response: %s", err)
	}
}

// ReturnHTTPContent encodes content as the JSON response body.
func ReturnHTTPContent(w http.ResponseWriter, r *http.Request, httpStatus int, content interface{}) {
	encoded, err := json.Marshal(content)
	if err != nil {
		glog.Errorf("error encoding response: %s", err)
		ReturnHTTPMessage(w, r, http.StatusInternalServerError, "internalerror", "error encoding response")
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(httpStatus)
	if _, err := w.Write(encoded); err != nil {
		glog.Errorf("error writing response: %s", err)
	}
}

// ReturnHTTPError maps err onto its status code and writes message. Internal
// details of err are never sent to the client.
func ReturnHTTPError(w http.ResponseWriter, r *http.Request, err error, message string) {
	ReturnHTTPMessage(w, r, qberrors.HTTPStatus(err), qberrors.Kind(err), message)
}

func negotiate(r *http.Request) string {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return contentTypeJSON
	}
	if ct := goautoneg.Negotiate(accept, []string{contentTypeJSON, contentTypeText}); ct != "" {
		return ct
	}
	return contentTypeJSON
}
