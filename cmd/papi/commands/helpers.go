// Package commands implements the papi CLI command tree.
package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pressroom-io/papi/internal/constants"
	"github.com/pressroom-io/papi/pkg/papi"
	"gopkg.in/yaml.v3"
)

// Output format constants.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// StandardJSONRenderer renders data as indented JSON to stdout.
func StandardJSONRenderer[T any](data T) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer renders data as YAML to stdout.
func StandardYAMLRenderer[T any](data T) error {
	encoder := yaml.NewEncoder(os.Stdout)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// resourceAttrs extracts the raw attribute maps from a slice of resource
// handles for structured output.
func resourceAttrs[T interface{ Attrs() papi.Attrs }](resources []T) []papi.Attrs {
	attrs := make([]papi.Attrs, 0, len(resources))
	for _, resource := range resources {
		attrs = append(attrs, resource.Attrs())
	}

	return attrs
}

// truncate shortens s to max runes, appending "..." when it was cut.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}

	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max]) + "..."
}

// yesNo renders a boolean for table cells.
func yesNo(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}

// confirmAction prompts for a yes/no answer on stdin.
func confirmAction(prompt string) bool {
	fmt.Printf("%s (y/N): ", prompt)

	reader := bufio.NewReader(os.Stdin)

	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))

	return answer == "y" || answer == "yes"
}

// parseEnvAssignments splits KEY=VALUE arguments into a map.
func parseEnvAssignments(args []string) (map[string]string, error) {
	vars := make(map[string]string, len(args))

	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: '%s'", constants.ErrInvalidEnvAssignment, arg)
		}

		vars[key] = value
	}

	return vars, nil
}
