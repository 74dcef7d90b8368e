package onboarding

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Schema returns a JSON schema for an answers document, derived from Rules.
// It checks types and option membership only; required-ness stays with
// Validate because it depends on other answers.
func Schema() map[string]any {
	props := map[string]any{}
	for _, r := range Rules {
		switch {
		case r.Field == FieldCVFile:
			props[string(r.Field)] = map[string]any{"type": "string"}
		case r.Field == FieldSkillLevel:
			props[string(r.Field)] = map[string]any{
				"type": "integer", "minimum": MinSkillLevel, "maximum": MaxSkillLevel,
			}
		case len(r.Options) > 0:
			values := make([]any, 0, len(r.Options)+1)
			values = append(values, "")
			for _, o := range r.Options {
				values = append(values, o.Value)
			}
			props[string(r.Field)] = map[string]any{"type": "string", "enum": values}
		default:
			props[string(r.Field)] = map[string]any{"type": "string"}
		}
	}
	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

// SchemaError lists every schema violation in an answers document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid answers: " + strings.Join(e.Problems, "; ")
}

// ParseAnswers decodes a YAML answers document. A cvFile entry is a path,
// resolved relative to baseDir, whose content is attached.
func ParseAnswers(data []byte, baseDir string) (*Answers, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(Schema()), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to check answers: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		sort.Strings(problems)
		return nil, &SchemaError{Problems: problems}
	}

	a := NewAnswers()
	values := make(map[Field]string, len(doc))
	for key, raw := range doc {
		f := Field(key)
		switch {
		case f == FieldCVFile:
			cv, err := loadCV(fmt.Sprint(raw), baseDir)
			if err != nil {
				return nil, err
			}
			a.SetCV(cv)
		case f == FieldSkillLevel:
			switch n := raw.(type) {
			case int:
				values[f] = strconv.Itoa(n)
			case float64:
				values[f] = strconv.Itoa(int(n))
			}
		case raw == nil:
			values[f] = ""
		default:
			values[f] = fmt.Sprint(raw)
		}
	}
	if err := a.SetAll(values); err != nil {
		return nil, err
	}
	return a, nil
}

// LoadAnswers reads and parses an answers file.
func LoadAnswers(path string) (*Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}
	return ParseAnswers(data, filepath.Dir(path))
}

func loadCV(path, baseDir string) (*Attachment, error) {
	if path == "" {
		return nil, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cv file: %w", err)
	}
	return NewAttachment(path, data)
}
