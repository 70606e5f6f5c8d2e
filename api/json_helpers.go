package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"events-venues/data/models"
)

const maxBodyBytes = 1024 * 1024 // one megabyte

type successJSON struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

type errorJSON struct {
	Status  string                   `json:"status"`
	Message string                   `json:"message"`
	Errors  []models.ValidationError `json:"errors,omitempty"`
}

func marshalAndSend(w http.ResponseWriter, jsonRes interface{}, statusCode int) error {
	switch jsonRes.(type) {
	case successJSON, errorJSON:
		payload, err := json.Marshal(jsonRes)
		if err != nil {
			return err
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		_, err = w.Write(payload)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported type: %T", jsonRes)
	}
	return nil
}

// SendSuccessJSON writes data in a success envelope. A wrap key nests data
// under that name.
func (app *application) SendSuccessJSON(w http.ResponseWriter, statusCode int, data interface{}, wrap ...string) {
	jsonRes := successJSON{
		Status: "success",
	}

	if len(wrap) > 0 {
		jsonRes.Data = map[string]interface{}{wrap[0]: data}
	} else {
		jsonRes.Data = data
	}

	if err := marshalAndSend(w, jsonRes, statusCode); err != nil {
		app.log.Error("failed to write response", zap.Error(err))
	}
}

// SendErrorJSON writes err in a fail (4xx) or error (5xx) envelope. Field
// errors are listed individually.
func (app *application) SendErrorJSON(w http.ResponseWriter, statusCode int, err error) {
	jsonRes := errorJSON{}
	if statusCode >= 500 {
		jsonRes.Status = "error"
	} else {
		jsonRes.Status = "fail"
	}

	jsonRes.Message = err.Error()
	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		jsonRes.Message = "validation failed"
		jsonRes.Errors = verrs
	}

	if err := marshalAndSend(w, jsonRes, statusCode); err != nil {
		app.log.Error("failed to write response", zap.Error(err))
	}
}

// ReadJSON decodes a single JSON value from the request body into data.
// Unknown fields are rejected.
func (app *application) ReadJSON(w http.ResponseWriter, r *http.Request, data interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(data); err != nil {
		return err
	}

	// make sure only one JSON value in payload
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}
