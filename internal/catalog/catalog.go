// Package catalog loads the region-to-image-id catalog attached to templates
// as a RegionMap mapping. The catalog lives in ami_cache.json next to the
// environment config and is typically refreshed by image build pipelines.
package catalog

import (
	"encoding/json"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/envstack/envstack/internal/constants"
	apperrors "github.com/envstack/envstack/internal/errors"
	"github.com/envstack/envstack/internal/template"
)

// ImageCatalog maps region name to a table of image ids by role, e.g.
// {"us-east-1": {"amazonLinuxAmiId": "ami-08111162"}}.
type ImageCatalog map[string]map[string]any

// Load reads the catalog at path, defaulting to ami_cache.json in the
// working directory. When the file is absent and createMissing is true, the
// factory default catalog is written to path and returned; otherwise the
// absence is a load error.
func Load(path string, createMissing bool) (ImageCatalog, error) {
	if path == "" {
		path = constants.DefaultImageCatalogFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var catalog ImageCatalog
		if err := json.Unmarshal(jsonc.ToJSON(data), &catalog); err != nil {
			return nil, apperrors.NewLoadError(path+" could not be parsed", err)
		}
		return catalog, nil

	case os.IsNotExist(err) && createMissing:
		catalog := FactoryDefault()
		encoded, encodeErr := json.MarshalIndent(catalog, "", "    ")
		if encodeErr != nil {
			return nil, apperrors.NewLoadError(path+" could not be written", encodeErr)
		}
		if writeErr := os.WriteFile(path, append(encoded, '\n'), constants.OutputFilePermissions); writeErr != nil {
			return nil, apperrors.NewLoadError(path+" could not be written", writeErr)
		}
		return catalog, nil

	case os.IsNotExist(err):
		return nil, apperrors.NewLoadError(path+" could not be found", err)

	default:
		return nil, apperrors.NewLoadError(path+" could not be read", err)
	}
}

// FactoryDefault returns the catalog written when no ami_cache.json exists.
func FactoryDefault() ImageCatalog {
	return ImageCatalog{
		"us-east-1":    {"amazonLinuxAmiId": "ami-08111162"},
		"us-west-1":    {"amazonLinuxAmiId": "ami-1b0f7d7b"},
		"us-west-2":    {"amazonLinuxAmiId": "ami-c229c0a2"},
		"eu-west-1":    {"amazonLinuxAmiId": "ami-31328842"},
		"eu-central-1": {"amazonLinuxAmiId": "ami-e2df388d"},
	}
}

// Apply merges the catalog into the template's RegionMap mapping.
func (c ImageCatalog) Apply(t *template.Template) {
	t.AddRegionMapping(map[string]map[string]any(c))
}
