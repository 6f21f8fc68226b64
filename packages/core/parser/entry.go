package parser

import "strconv"

func parseEntry(r *Reader) (*Entry, *Error) {
	req, err := parseRequest(r)
	if err != nil {
		return nil, err
	}
	resp, err := optional(r, parseResponse)
	if err != nil {
		return nil, err
	}
	return &Entry{Request: req, Response: resp}, nil
}

func parseRequest(r *Reader) (*Request, *Error) {
	optionalLineTerminators(r)
	zeroOrMoreSpaces(r)
	start := r.Pos()
	m, err := method(r)
	if err != nil {
		return nil, err
	}
	if _, err := oneOrMoreSpaces(r); err != nil {
		return nil, err
	}
	u, err := url(r)
	if err != nil {
		return nil, err
	}
	end := r.Pos()
	if err := lineTerminator(r); err != nil {
		return nil, err
	}
	headers, err := zeroOrMore(r, keyValue)
	if err != nil {
		return nil, err
	}
	req := &Request{
		Method:     m,
		URL:        u,
		Headers:    headers,
		SourceInfo: SourceInfo{Start: start, End: end},
	}
	if err := requestSections(r, req); err != nil {
		return nil, err
	}
	body, err := optional(r, parseBody)
	if err != nil {
		return nil, err
	}
	req.Body = body
	return req, nil
}

// method accepts any uppercase token, so custom verbs pass through to
// the client untouched. An empty token is recoverable: it is how entry
// and header lists detect their end.
func method(r *Reader) (string, *Error) {
	start := r.Pos()
	name := r.ReadWhile(func(c rune) bool { return c >= 'A' && c <= 'Z' })
	if name == "" {
		return "", newError(start, true, KindMethod, "")
	}
	return name, nil
}

// url parses the request target as a template running to the first
// whitespace.
func url(r *Reader) (*Template, *Error) {
	start := r.Pos()
	elements, err := templateScan(r, -1, func(c rune) bool {
		return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '#'
	}, false)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, newError(start, false, KindURL, "")
	}
	return &Template{
		Elements:   elements,
		SourceInfo: SourceInfo{Start: start, End: r.Pos()},
	}, nil
}

// keyValue parses one "key: value" line. The failure stays recoverable
// up to the colon, so any non-header line ends the list; after the
// colon the line is committed.
func keyValue(r *Reader) (*KeyValue, *Error) {
	optionalLineTerminators(r)
	zeroOrMoreSpaces(r)
	start := r.Pos()
	key, err := keyString(r)
	if err != nil {
		return nil, err
	}
	zeroOrMoreSpaces(r)
	if err := tryLiteral(r, ":"); err != nil {
		return nil, err
	}
	zeroOrMoreSpaces(r)
	value, err := unquotedTemplate(r)
	if err != nil {
		return nil, err
	}
	end := r.Pos()
	if err := lineTerminator(r); err != nil {
		return nil, err
	}
	return &KeyValue{Key: key, Value: value, SourceInfo: SourceInfo{Start: start, End: end}}, nil
}

// sectionName parses "[Name]". A missing opening bracket is
// recoverable; the rest of the line is committed.
func sectionName(r *Reader) (string, Position, *Error) {
	optionalLineTerminators(r)
	zeroOrMoreSpaces(r)
	start := r.Pos()
	if err := tryLiteral(r, "["); err != nil {
		return "", start, err
	}
	name := r.ReadWhile(isAlpha)
	if err := literal(r, "]"); err != nil {
		return "", start, err
	}
	if err := lineTerminator(r); err != nil {
		return "", start, err
	}
	return name, start, nil
}

func requestSections(r *Reader, req *Request) *Error {
	for {
		save := r.State()
		name, start, err := sectionName(r)
		if err != nil {
			if err.Recoverable {
				r.Restore(save)
				return nil
			}
			return err
		}
		switch name {
		case "QueryStringParams":
			items, err := zeroOrMore(r, keyValue)
			if err != nil {
				return err
			}
			req.QueryParams = append(req.QueryParams, items...)
		case "FormParams":
			items, err := zeroOrMore(r, keyValue)
			if err != nil {
				return err
			}
			req.FormParams = append(req.FormParams, items...)
		case "MultipartFormData":
			items, err := zeroOrMore(r, multipartParam)
			if err != nil {
				return err
			}
			req.Multipart = append(req.Multipart, items...)
		case "Cookies":
			items, err := zeroOrMore(r, keyValue)
			if err != nil {
				return err
			}
			req.Cookies = append(req.Cookies, items...)
		case "Options":
			items, err := zeroOrMore(r, optionEntry)
			if err != nil {
				return err
			}
			req.Options = append(req.Options, items...)
		default:
			return newError(start, false, KindSection, name)
		}
	}
}

func multipartParam(r *Reader) (*MultipartParam, *Error) {
	optionalLineTerminators(r)
	zeroOrMoreSpaces(r)
	start := r.Pos()
	key, err := keyString(r)
	if err != nil {
		return nil, err
	}
	zeroOrMoreSpaces(r)
	if err := tryLiteral(r, ":"); err != nil {
		return nil, err
	}
	zeroOrMoreSpaces(r)
	file, err := optional(r, fileValue)
	if err != nil {
		return nil, err
	}
	param := &MultipartParam{Key: key, File: file}
	if file == nil {
		value, err := unquotedTemplate(r)
		if err != nil {
			return nil, err
		}
		param.Value = value
	}
	end := r.Pos()
	if err := lineTerminator(r); err != nil {
		return nil, err
	}
	param.SourceInfo = SourceInfo{Start: start, End: end}
	return param, nil
}

// fileValue parses "file,name.ext;" with an optional content type
// after the semicolon.
func fileValue(r *Reader) (*FileValue, *Error) {
	if err := tryLiteral(r, "file,"); err != nil {
		return nil, err
	}
	zeroOrMoreSpaces(r)
	f, err := filename(r)
	if err != nil {
		return nil, err
	}
	zeroOrMoreSpaces(r)
	if err := literal(r, ";"); err != nil {
		return nil, err
	}
	zeroOrMoreSpaces(r)
	contentType := r.ReadWhile(func(c rune) bool {
		return c != '\n' && c != '\r' && c != '#' && !isSpace(c)
	})
	return &FileValue{Filename: f, ContentType: contentType}, nil
}

func optionEntry(r *Reader) (*EntryOption, *Error) {
	optionalLineTerminators(r)
	zeroOrMoreSpaces(r)
	start := r.Pos()
	opt := &EntryOption{}
	switch {
	case tryLiteral(r, "insecure") == nil:
		opt.Kind = OptionInsecure
		b, err := optionBool(r)
		if err != nil {
			return nil, err
		}
		opt.BoolValue = b
	case tryLiteral(r, "location") == nil:
		opt.Kind = OptionLocation
		b, err := optionBool(r)
		if err != nil {
			return nil, err
		}
		opt.BoolValue = b
	case tryLiteral(r, "max-redirect") == nil:
		opt.Kind = OptionMaxRedirect
		n, err := optionInt(r)
		if err != nil {
			return nil, err
		}
		opt.IntValue = n
	case tryLiteral(r, "skip-when") == nil:
		opt.Kind = OptionSkipWhen
		s, err := optionExpr(r)
		if err != nil {
			return nil, err
		}
		opt.StringValue = s
	default:
		return nil, newError(start, true, KindOption, "")
	}
	end := r.Pos()
	if err := lineTerminator(r); err != nil {
		return nil, err
	}
	opt.SourceInfo = SourceInfo{Start: start, End: end}
	return opt, nil
}

func optionBool(r *Reader) (bool, *Error) {
	if err := literal(r, ":"); err != nil {
		return false, err
	}
	zeroOrMoreSpaces(r)
	if err := tryLiteral(r, "true"); err == nil {
		return true, nil
	}
	if err := tryLiteral(r, "false"); err == nil {
		return false, nil
	}
	return false, newError(r.Pos(), false, KindExpecting, "true|false")
}

func optionInt(r *Reader) (int, *Error) {
	if err := literal(r, ":"); err != nil {
		return 0, err
	}
	zeroOrMoreSpaces(r)
	n, err := natural(r)
	if err != nil {
		return 0, err.ToFatal()
	}
	return n, nil
}

// optionExpr keeps the raw expression text to the end of the line.
func optionExpr(r *Reader) (string, *Error) {
	if err := literal(r, ":"); err != nil {
		return "", err
	}
	zeroOrMoreSpaces(r)
	start := r.Pos()
	text := r.ReadWhile(func(c rune) bool {
		return c != '\n' && c != '\r' && c != '#'
	})
	trimmed := trimRightSpaces(text)
	if trimmed == "" {
		return "", newError(start, false, KindExpecting, "expression")
	}
	return trimmed, nil
}

func trimRightSpaces(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[:end]
}

func parseResponse(r *Reader) (*Response, *Error) {
	optionalLineTerminators(r)
	zeroOrMoreSpaces(r)
	start := r.Pos()
	v, err := version(r)
	if err != nil {
		return nil, err
	}
	if _, err := oneOrMoreSpaces(r); err != nil {
		return nil, err.ToFatal()
	}
	st, err := status(r)
	if err != nil {
		return nil, err
	}
	end := r.Pos()
	if err := lineTerminator(r); err != nil {
		return nil, err
	}
	headers, err := zeroOrMore(r, keyValue)
	if err != nil {
		return nil, err
	}
	resp := &Response{
		Version:    v,
		Status:     st,
		Headers:    headers,
		SourceInfo: SourceInfo{Start: start, End: end},
	}
	if err := responseSections(r, resp); err != nil {
		return nil, err
	}
	body, err := optional(r, parseBody)
	if err != nil {
		return nil, err
	}
	resp.Body = body
	return resp, nil
}

func version(r *Reader) (Version, *Error) {
	start := r.Pos()
	var value VersionValue
	switch {
	case tryLiteral(r, "HTTP/1.0") == nil:
		value = Version10
	case tryLiteral(r, "HTTP/1.1") == nil:
		value = Version11
	case tryLiteral(r, "HTTP/2") == nil:
		value = Version2
	case tryLiteral(r, "HTTP") == nil:
		value = VersionAny
	default:
		return Version{}, newError(start, true, KindVersion, "")
	}
	if c, ok := r.Peek(); ok && c == '/' {
		return Version{}, newError(start, false, KindVersion, "")
	}
	return Version{Value: value, SourceInfo: SourceInfo{Start: start, End: r.Pos()}}, nil
}

func status(r *Reader) (Status, *Error) {
	start := r.Pos()
	if err := tryLiteral(r, "*"); err == nil {
		return Status{Any: true, SourceInfo: SourceInfo{Start: start, End: r.Pos()}}, nil
	}
	n, err := natural(r)
	if err != nil {
		return Status{}, newError(start, false, KindStatus, "")
	}
	return Status{Value: n, SourceInfo: SourceInfo{Start: start, End: r.Pos()}}, nil
}

func responseSections(r *Reader, resp *Response) *Error {
	for {
		save := r.State()
		name, start, err := sectionName(r)
		if err != nil {
			if err.Recoverable {
				r.Restore(save)
				return nil
			}
			return err
		}
		switch name {
		case "Captures":
			items, err := zeroOrMore(r, capture)
			if err != nil {
				return err
			}
			resp.Captures = append(resp.Captures, items...)
		case "Asserts":
			items, err := zeroOrMore(r, assertLine)
			if err != nil {
				return err
			}
			resp.Asserts = append(resp.Asserts, items...)
		default:
			return newError(start, false, KindSection, name)
		}
	}
}

func capture(r *Reader) (*Capture, *Error) {
	optionalLineTerminators(r)
	zeroOrMoreSpaces(r)
	start := r.Pos()
	name, err := keyString(r)
	if err != nil {
		return nil, err
	}
	zeroOrMoreSpaces(r)
	if err := tryLiteral(r, ":"); err != nil {
		return nil, err
	}
	zeroOrMoreSpaces(r)
	q, err := nonrecover(r, query)
	if err != nil {
		return nil, err
	}
	end := r.Pos()
	if err := lineTerminator(r); err != nil {
		return nil, err
	}
	return &Capture{Name: name, Query: q, SourceInfo: SourceInfo{Start: start, End: end}}, nil
}

func assertLine(r *Reader) (*Assert, *Error) {
	optionalLineTerminators(r)
	zeroOrMoreSpaces(r)
	start := r.Pos()
	q, err := query(r)
	if err != nil {
		return nil, err
	}
	if _, err := oneOrMoreSpaces(r); err != nil {
		return nil, err.ToFatal()
	}
	a := &Assert{Query: q}
	if tryLiteral(r, "not") == nil {
		a.Not = true
		if _, err := oneOrMoreSpaces(r); err != nil {
			return nil, err.ToFatal()
		}
	}
	p, err := predicate(r)
	if err != nil {
		return nil, err
	}
	a.Predicate = p
	end := r.Pos()
	if err := lineTerminator(r); err != nil {
		return nil, err
	}
	a.SourceInfo = SourceInfo{Start: start, End: end}
	return a, nil
}

// query parses a query keyword and its argument. An unknown keyword is
// recoverable so assert lists can end; callers that have committed wrap
// it in nonrecover.
func query(r *Reader) (*Query, *Error) {
	start := r.Pos()
	q := &Query{}
	switch {
	case tryLiteral(r, "status") == nil:
		q.Kind = QueryStatus
	case tryLiteral(r, "duration") == nil:
		q.Kind = QueryDuration
	case tryLiteral(r, "body") == nil:
		q.Kind = QueryBody
	case tryLiteral(r, "header") == nil:
		q.Kind = QueryHeader
	case tryLiteral(r, "cookie") == nil:
		q.Kind = QueryCookie
	case tryLiteral(r, "jsonpath") == nil:
		q.Kind = QueryJSONPath
	case tryLiteral(r, "jmespath") == nil:
		q.Kind = QueryJMESPath
	case tryLiteral(r, "regex") == nil:
		q.Kind = QueryRegex
	case tryLiteral(r, "variable") == nil:
		q.Kind = QueryVariable
	default:
		return nil, newError(start, true, KindQuery, "")
	}
	if q.Kind.HasArg() {
		if _, err := oneOrMoreSpaces(r); err != nil {
			return nil, err.ToFatal()
		}
		arg, err := nonrecover(r, quotedTemplate)
		if err != nil {
			return nil, err
		}
		q.Arg = arg
	}
	q.SourceInfo = SourceInfo{Start: start, End: r.Pos()}
	return q, nil
}

// predicate parses a predicate keyword and, when the kind takes one,
// its value. Longer keywords are tried before their prefixes.
func predicate(r *Reader) (*Predicate, *Error) {
	start := r.Pos()
	p := &Predicate{}
	switch {
	case tryLiteral(r, "equals") == nil:
		p.Kind = PredicateEquals
	case tryLiteral(r, "greaterThanOrEquals") == nil:
		p.Kind = PredicateGreaterOrEqual
	case tryLiteral(r, "greaterThan") == nil:
		p.Kind = PredicateGreaterThan
	case tryLiteral(r, "lessThanOrEquals") == nil:
		p.Kind = PredicateLessOrEqual
	case tryLiteral(r, "lessThan") == nil:
		p.Kind = PredicateLessThan
	case tryLiteral(r, "startsWith") == nil:
		p.Kind = PredicateStartsWith
	case tryLiteral(r, "endsWith") == nil:
		p.Kind = PredicateEndsWith
	case tryLiteral(r, "contains") == nil:
		p.Kind = PredicateContains
	case tryLiteral(r, "includes") == nil:
		p.Kind = PredicateIncludes
	case tryLiteral(r, "matchesSchema") == nil:
		p.Kind = PredicateMatchesSchema
	case tryLiteral(r, "matches") == nil:
		p.Kind = PredicateMatches
	case tryLiteral(r, "exists") == nil:
		p.Kind = PredicateExists
	case tryLiteral(r, "countEquals") == nil:
		p.Kind = PredicateCountEquals
	case tryLiteral(r, "isInteger") == nil:
		p.Kind = PredicateIsInteger
	case tryLiteral(r, "isFloat") == nil:
		p.Kind = PredicateIsFloat
	case tryLiteral(r, "isBoolean") == nil:
		p.Kind = PredicateIsBoolean
	case tryLiteral(r, "isString") == nil:
		p.Kind = PredicateIsString
	case tryLiteral(r, "isCollection") == nil:
		p.Kind = PredicateIsCollection
	default:
		return nil, newError(start, false, KindPredicate, "")
	}
	if p.Kind.HasValue() {
		if _, err := oneOrMoreSpaces(r); err != nil {
			return nil, err.ToFatal()
		}
		v, err := predicateValue(r)
		if err != nil {
			return nil, err
		}
		p.Value = v
	}
	p.SourceInfo = SourceInfo{Start: start, End: r.Pos()}
	return p, nil
}

func predicateValue(r *Reader) (*PredicateValue, *Error) {
	start := r.Pos()
	if err := tryLiteral(r, "null"); err == nil {
		return &PredicateValue{Kind: ValueNull}, nil
	}
	if err := tryLiteral(r, "true"); err == nil {
		return &PredicateValue{Kind: ValueBool, Bool: true}, nil
	}
	if err := tryLiteral(r, "false"); err == nil {
		return &PredicateValue{Kind: ValueBool, Bool: false}, nil
	}
	if v, err := numberValue(r); err == nil {
		return v, nil
	} else if !err.Recoverable {
		return nil, err
	}
	t, err := optional(r, quotedTemplate)
	if err != nil {
		return nil, err
	}
	if t != nil {
		return &PredicateValue{Kind: ValueString, Str: t}, nil
	}
	return nil, newError(start, false, KindPredicateValue, "")
}

func numberValue(r *Reader) (*PredicateValue, *Error) {
	save := r.State()
	v, err := jsonNumber(r)
	if err != nil {
		if err.Recoverable {
			r.Restore(save)
		}
		return nil, err
	}
	f, perr := strconv.ParseFloat(v.Number, 64)
	if perr != nil {
		return nil, newError(save.Pos, false, KindPredicateValue, "")
	}
	return &PredicateValue{Kind: ValueNumber, Number: f, Raw: v.Number}, nil
}

func parseBody(r *Reader) (*Bytes, *Error) {
	optionalLineTerminators(r)
	zeroOrMoreSpaces(r)
	b, err := bytes(r)
	if err != nil {
		return nil, err
	}
	if err := lineTerminator(r); err != nil {
		return nil, err
	}
	return b, nil
}
