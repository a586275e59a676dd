package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	notesv1 "mip-notes/pkg/notesv1"
)

const defaultTimeout = 10 * time.Second

// APIError ответ API со статусом вне 2xx
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsNotFound сообщает, что заметка не найдена
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// API HTTP клиент Notes API
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI создает клиент. baseURL уже включает префикс API, например http://localhost:8080/api.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &API{baseURL: baseURL, http: httpClient}
}

// BaseURL адрес API
func (a *API) BaseURL() string {
	return a.baseURL
}

// List GET /list
func (a *API) List(ctx context.Context) ([]notesv1.Note, error) {
	var notes []notesv1.Note
	if err := a.do(ctx, http.MethodGet, "/list", nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Create POST /create
func (a *API) Create(ctx context.Context, req notesv1.CreateNoteRequest) (notesv1.Note, error) {
	var note notesv1.Note
	err := a.do(ctx, http.MethodPost, "/create", req, &note)
	return note, err
}

// Update PUT /update/{id}
func (a *API) Update(ctx context.Context, id string, req notesv1.UpdateNoteRequest) (notesv1.Note, error) {
	req.ID = ""
	var note notesv1.Note
	err := a.do(ctx, http.MethodPut, "/update/"+url.PathEscape(id), req, &note)
	return note, err
}

// Delete DELETE /delete/{id}
func (a *API) Delete(ctx context.Context, id string) error {
	var resp notesv1.DeleteNoteResponse
	return a.do(ctx, http.MethodDelete, "/delete/"+url.PathEscape(id), nil, &resp)
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body notesv1.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}
