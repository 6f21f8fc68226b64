package runner

import (
	"github.com/volleyhq/volley/packages/core/parser"
	"github.com/volleyhq/volley/packages/http"
)

// request resolves every template in the request spec and builds the
// transport request. The cookie literals come back separately: they are
// seeded into the client's store, not attached to the request itself.
func (rs *resolver) request(r *parser.Request, contextDir string) (*http.Request, []http.Param, *Error) {
	urlStr, err := rs.template(r.URL)
	if err != nil {
		return nil, nil, err
	}
	req := http.NewRequest(r.Method, urlStr)

	for _, h := range r.Headers {
		v, err := rs.template(h.Value)
		if err != nil {
			return nil, nil, err
		}
		req.AddHeader(h.Key, v)
	}
	for _, p := range r.QueryParams {
		v, err := rs.template(p.Value)
		if err != nil {
			return nil, nil, err
		}
		req.AddQueryParam(p.Key, v)
	}
	for _, p := range r.FormParams {
		v, err := rs.template(p.Value)
		if err != nil {
			return nil, nil, err
		}
		req.FormParams = append(req.FormParams, http.Param{Key: p.Key, Value: v})
	}

	multipart, err := rs.multipart(r.Multipart, contextDir)
	if err != nil {
		return nil, nil, err
	}
	req.Multipart = multipart

	if r.Body != nil {
		data, contentType, err := rs.body(r.Body, contextDir)
		if err != nil {
			return nil, nil, err
		}
		req.SetBody(data)
		if contentType != "" && !req.HasHeader("Content-Type") {
			req.AddHeader("Content-Type", contentType)
		}
	}

	applyOptions(req, r.Options)

	cookies, err := rs.cookies(r.Cookies)
	if err != nil {
		return nil, nil, err
	}
	return req, cookies, nil
}

func (rs *resolver) multipart(params []*parser.MultipartParam, contextDir string) ([]http.MultipartField, *Error) {
	var fields []http.MultipartField
	for _, p := range params {
		if p.File != nil {
			content, err := readContextFile(contextDir, p.File.Filename)
			if err != nil {
				return nil, err
			}
			fields = append(fields, http.MultipartField{
				Name:        p.Key,
				IsFile:      true,
				Filename:    p.File.Filename.Value,
				ContentType: p.File.ContentType,
				Content:     content,
			})
			continue
		}
		v, err := rs.template(p.Value)
		if err != nil {
			return nil, err
		}
		fields = append(fields, http.MultipartField{Name: p.Key, Value: v})
	}
	return fields, nil
}

func (rs *resolver) cookies(pairs []*parser.KeyValue) ([]http.Param, *Error) {
	var cookies []http.Param
	for _, c := range pairs {
		v, err := rs.template(c.Value)
		if err != nil {
			return nil, err
		}
		cookies = append(cookies, http.Param{Key: c.Key, Value: v})
	}
	return cookies, nil
}

// applyOptions copies per-entry options onto the request as overrides
// of the client defaults. skip-when is handled before the entry runs
// and is ignored here.
func applyOptions(req *http.Request, options []*parser.EntryOption) {
	for _, o := range options {
		switch o.Kind {
		case parser.OptionInsecure:
			v := o.BoolValue
			req.Insecure = &v
		case parser.OptionLocation:
			v := o.BoolValue
			req.FollowRedirects = &v
		case parser.OptionMaxRedirect:
			v := o.IntValue
			req.MaxRedirects = &v
		}
	}
}
