package services

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kubev2v/taskrunner/internal/models"
	srvErrors "github.com/kubev2v/taskrunner/pkg/errors"
)

// LoadGraph reads and validates a YAML graph definition file.
func LoadGraph(path string) (*models.GraphDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph file: %w", err)
	}
	defer f.Close()

	return ParseGraph(f)
}

// ParseGraph decodes a YAML graph definition. Unknown fields are rejected.
func ParseGraph(r io.Reader) (*models.GraphDefinition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def models.GraphDefinition
	if err := dec.Decode(&def); err != nil {
		if err == io.EOF {
			return nil, srvErrors.NewGraphDefinitionError("graph definition is empty")
		}
		return nil, srvErrors.NewGraphDefinitionError("failed to parse graph definition: %v", err)
	}
	if err := def.Validate(); err != nil {
		return nil, srvErrors.NewGraphDefinitionError("invalid graph definition: %v", err)
	}
	return &def, nil
}
