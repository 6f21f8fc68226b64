package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/volleyhq/volley/packages/core/parser"
)

// body renders a request or expected-response body into raw bytes plus
// the content type it implies, if any.
func (rs *resolver) body(b *parser.Bytes, contextDir string) ([]byte, string, *Error) {
	switch b.Kind {
	case parser.BytesMultiline:
		text, err := rs.template(b.Multiline.Value)
		if err != nil {
			return nil, "", err
		}
		return []byte(text), contentTypeForLang(b.Multiline.Lang), nil
	case parser.BytesJSON:
		text, err := rs.jsonValue(b.JSON)
		if err != nil {
			return nil, "", err
		}
		return []byte(text), "application/json", nil
	case parser.BytesXML:
		return []byte(b.XML), "application/xml", nil
	case parser.BytesBase64:
		return b.Base64.Decoded, "", nil
	case parser.BytesFile:
		data, err := readContextFile(contextDir, b.File.Filename)
		if err != nil {
			return nil, "", err
		}
		return data, "", nil
	default:
		return nil, "", nil
	}
}

func contentTypeForLang(lang string) string {
	switch lang {
	case "json":
		return "application/json"
	case "xml":
		return "application/xml"
	default:
		return ""
	}
}

// jsonValue reconstructs the body text exactly as written, whitespace
// included, with template expressions resolved in place.
func (rs *resolver) jsonValue(v *parser.JSONValue) (string, *Error) {
	switch v.Kind {
	case parser.JSONNumber:
		return v.Number, nil
	case parser.JSONBoolean:
		if v.Bool {
			return "true", nil
		}
		return "false", nil
	case parser.JSONNull:
		return "null", nil
	case parser.JSONString:
		s, err := rs.templateEncoded(v.Str)
		if err != nil {
			return "", err
		}
		return `"` + s + `"`, nil
	case parser.JSONList:
		var sb strings.Builder
		sb.WriteString("[")
		sb.WriteString(v.Space0)
		for i, el := range v.Elements {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(el.Space0)
			inner, err := rs.jsonValue(el.Value)
			if err != nil {
				return "", err
			}
			sb.WriteString(inner)
			sb.WriteString(el.Space1)
		}
		sb.WriteString("]")
		return sb.String(), nil
	case parser.JSONObject:
		var sb strings.Builder
		sb.WriteString("{")
		sb.WriteString(v.Space0)
		for i, m := range v.Members {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(m.Space0)
			sb.WriteString(`"`)
			sb.WriteString(m.NameEncoded)
			sb.WriteString(`"`)
			sb.WriteString(m.Space1)
			sb.WriteString(":")
			sb.WriteString(m.Space2)
			inner, err := rs.jsonValue(m.Value)
			if err != nil {
				return "", err
			}
			sb.WriteString(inner)
			sb.WriteString(m.Space3)
		}
		sb.WriteString("}")
		return sb.String(), nil
	default:
		return "", nil
	}
}

// readContextFile reads a file referenced from the source, resolved
// against the context directory. Paths escaping the context directory
// are rejected.
func readContextFile(contextDir string, f parser.Filename) ([]byte, *Error) {
	path := f.Value
	if !filepath.IsAbs(path) {
		path = filepath.Join(contextDir, path)
	}
	if err := validatePathWithinBase(path, contextDir); err != nil {
		return nil, fileError(f.SourceInfo.Start, "%s", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fileError(f.SourceInfo.Start, "file %q could not be read", f.Value)
	}
	return data, nil
}

// validatePathWithinBase checks that the resolved path stays within the
// base directory to prevent path traversal.
func validatePathWithinBase(path, baseDir string) error {
	if baseDir == "" {
		return nil
	}

	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %v", err)
	}

	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %v", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path %s is outside the context directory %s", path, baseDir)
	}

	return nil
}
