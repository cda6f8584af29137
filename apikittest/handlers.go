package apikittest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/codeartlibs/apikit-go/internal/validate"
)

type authRequest struct {
	AppKey string `json:"app_key" validate:"required"`
}

type authResponse struct {
	Token string `json:"token"`
}

// Echo is the body /echo answers with.
type Echo struct {
	Method      string              `json:"method"`
	Path        string              `json:"path"`
	Query       map[string][]string `json:"query"`
	Headers     map[string]string   `json:"headers"`
	ContentType string              `json:"content_type"`
	Body        any                 `json:"body"`
}

func (s *Server) authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req authRequest
	if err := decode(r, &req); err != nil {
		return err
	}

	if s.appKeys != nil && !s.appKeys[req.AppKey] {
		return NewError(http.StatusUnauthorized, errors.New("invalid app key"))
	}

	token := s.IssueToken(req.AppKey)

	return RespondJSON(w, r, http.StatusOK, authResponse{Token: token})
}

func (s *Server) ping(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return RespondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// status answers with the code named in the path.
func (s *Server) status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	code, err := strconv.Atoi(r.PathValue("code"))
	if err != nil || code < 200 || code > 599 {
		return NewError(http.StatusBadRequest, fmt.Errorf("path param[code] must be a status code: %q", r.PathValue("code")))
	}

	if code >= 400 {
		return NewError(code, errors.New(http.StatusText(code)))
	}

	return RespondJSON(w, r, code, map[string]int{"status": code})
}

func (s *Server) echo(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	body, err := decodeAny(r)
	if err != nil {
		return NewError(http.StatusBadRequest, err)
	}

	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}

	resp := Echo{
		Method:      r.Method,
		Path:        r.URL.Path,
		Query:       r.URL.Query(),
		Headers:     headers,
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	}

	return RespondJSON(w, r, http.StatusOK, resp)
}

// RespondJSON writes data as the JSON body with statusCode.
func RespondJSON(w http.ResponseWriter, r *http.Request, statusCode int, data any) error {
	setStatusCode(r.Context(), statusCode)

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		return err
	}

	return nil
}

// decode reads a JSON document into val and checks its validate tags.
func decode[T any](r *http.Request, val *T) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(val); err != nil {
		return NewError(http.StatusBadRequest, fmt.Errorf("decode: %w", err))
	}

	return validate.Struct(val)
}

// decodeAny decodes the body according to its Content-Type.
func decodeAny(r *http.Request) (any, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var v any
	switch mediaType {
	case "application/msgpack", "application/x-msgpack":
		if err := msgpack.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode msgpack: %w", err)
		}
	case "application/x-www-form-urlencoded":
		form, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, fmt.Errorf("decode form: %w", err)
		}
		v = map[string][]string(form)
	case "application/json", "":
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		v = string(raw)
	}

	return v, nil
}
