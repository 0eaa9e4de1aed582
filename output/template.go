package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"text/template"

	"spriteatlas/atlas"
	"spriteatlas/config"
	"spriteatlas/errors"
)

// TemplateData builds the value a template is executed with:
//
//	.atlas.sheet_path
//	.atlas.frames   name -> {x, y, width, height, rotated}
//	.atlas.names    frame names in atlas order
//	.config         the config, keyed like the config file
//
// Numbers stay json.Number so they print without float formatting.
func TemplateData(meta *atlas.Metadata, cfg config.Config) (map[string]any, error) {
	raw, err := json.Marshal(struct {
		Atlas  *atlas.Metadata `json:"atlas"`
		Config config.Config   `json:"config"`
	}{meta, cfg})
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, err
	}
	if a, ok := data["atlas"].(map[string]any); ok {
		a["names"] = meta.Names()
	}
	return data, nil
}

// renderTemplate executes the template at path against meta. Missing keys
// are errors. Backslashes in the result become forward slashes.
func renderTemplate(path string, meta *atlas.Metadata, cfg config.Config) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNoTemplate, err, "template %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read template %s", path)
	}
	tmpl, err := template.New(path).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse template %s", path)
	}
	data, err := TemplateData(meta, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "build template data")
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeEncode, err, "render template %s", path)
	}
	return []byte(strings.ReplaceAll(buf.String(), `\`, "/")), nil
}
