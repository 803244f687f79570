package intake

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const createSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["title", "description", "locationText", "latitude", "longitude"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string", "minLength": 1},
    "locationText": {"type": "string", "minLength": 1},
    "latitude": {"type": "number", "minimum": -90, "maximum": 90},
    "longitude": {"type": "number", "minimum": -180, "maximum": 180}
  }
}`

const statusSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["status"],
  "properties": {
    "status": {"type": "string", "enum": ["Pendente", "Resolvida", "Cancelada"]}
  }
}`

var (
	createSchema = jsonschema.MustCompileString("create-request.json", createSchemaJSON)
	statusSchema = jsonschema.MustCompileString("update-status.json", statusSchemaJSON)

	quotedName = regexp.MustCompile(`'([^']+)'`)
)

// validateDocument decodes body and checks it against schema, filling verr
// with one entry per failing keyword. On success it returns the validated
// object so callers read exactly the keys the schema checked.
func validateDocument(schema *jsonschema.Schema, body []byte, verr *ValidationError) (map[string]any, bool) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		verr.addForm("body must be valid JSON")
		return nil, false
	}
	err := schema.Validate(doc)
	if err == nil {
		fields, ok := doc.(map[string]any)
		if !ok {
			verr.addForm("body must be a JSON object")
		}
		return fields, ok
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		verr.addForm(err.Error())
		return nil, false
	}
	for _, unit := range ve.BasicOutput().Errors {
		if unit.KeywordLocation == "" || unit.Error == "" {
			continue
		}
		field := strings.TrimPrefix(unit.InstanceLocation, "/")
		if strings.HasSuffix(unit.KeywordLocation, "/required") {
			for _, m := range quotedName.FindAllStringSubmatch(unit.Error, -1) {
				verr.addField(m[1], "required")
			}
			continue
		}
		if field == "" {
			verr.addForm(unit.Error)
			continue
		}
		verr.addField(field, unit.Error)
	}
	if verr.empty() {
		verr.addForm(ve.Error())
	}
	return nil, false
}
