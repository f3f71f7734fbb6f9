package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"fintechapi/internal/core"
)

// maxBodySize caps request bodies at 1 MiB; no payload in this API comes
// close to that.
const maxBodySize = 1 << 20

// decodeJSON reads the request body into dst. Unknown fields are tolerated,
// matching the permissive request handling of the catalog and ledger payloads.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodySize)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return core.Invalidf("corpo da requisição é obrigatório")
		}
		return core.Invalidf("corpo da requisição inválido: %v", err)
	}
	return nil
}

// pathID extracts a positive numeric path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Invalidf("identificador inválido: %q", raw)
	}
	return id, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(r *http.Request, name string) (*core.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return nil, core.Invalidf("parâmetro %s inválido: %q", name, raw)
	}
	return &d, nil
}

// queryInt64 parses an optional integer query parameter.
func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, core.Invalidf("parâmetro %s inválido: %q", name, raw)
	}
	return &v, nil
}

// queryBool parses an optional boolean query parameter. The original API
// used 0/1 for the pending filter, so both numeric and textual forms are
// accepted.
func queryBool(r *http.Request, name string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	switch raw {
	case "1", "true":
		v := true
		return &v, nil
	case "0", "false":
		v := false
		return &v, nil
	}
	return nil, core.Invalidf("parâmetro %s inválido: %q", name, raw)
}

// queryPage reads the optional page/size parameters. present reports whether
// either was supplied, which switches the list endpoints to the paged shape.
func queryPage(r *http.Request) (page, size int, present bool, err error) {
	q := r.URL.Query()
	page, size = 0, 20

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		present = true
		page, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, true, core.Invalidf("parâmetro page inválido: %q", raw)
		}
	}
	if raw := strings.TrimSpace(q.Get("size")); raw != "" {
		present = true
		size, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, true, core.Invalidf("parâmetro size inválido: %q", raw)
		}
	}
	return page, size, present, nil
}

// optionalID distinguishes an absent JSON key from an explicit null. Absent
// leaves the target untouched; null clears it; a number re-points it.
type optionalID struct {
	Set   bool
	Value *int64
}

func (o *optionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
