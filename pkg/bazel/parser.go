package bazel

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/blazetool/targetmap/pkg/model"
)

// queryResult mirrors the structure of `bazel query --output=xml`
type queryResult struct {
	XMLName xml.Name  `xml:"query"`
	Rules   []ruleXML `xml:"rule"`
}

type ruleXML struct {
	Class    string    `xml:"class,attr"`
	Name     string    `xml:"name,attr"`
	Location string    `xml:"location,attr"`
	Lists    []listXML `xml:"list"`
}

type listXML struct {
	Name   string     `xml:"name,attr"`
	Labels []labelXML `xml:"label"`
}

type labelXML struct {
	Value string `xml:"value,attr"`
}

// dependency list attributes that form edges in the target graph
var depAttrs = map[string]bool{
	"deps":         true,
	"runtime_deps": true,
	"exports":      true,
}

// Parser turns Bazel query XML output into targets
type Parser struct{}

// NewParser creates a new Bazel query parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseQueryOutput parses XML query output into targets, preserving the
// rule order of the document. Only workspace rules (labels starting with
// "//") are returned.
func (p *Parser) ParseQueryOutput(data []byte) ([]*model.Target, error) {
	// Bazel outputs XML 1.1, but Go's XML parser only supports 1.0
	xmlStr := strings.Replace(string(data), `<?xml version="1.1"`, `<?xml version="1.0"`, 1)

	var result queryResult
	if err := xml.Unmarshal([]byte(xmlStr), &result); err != nil {
		return nil, fmt.Errorf("failed to parse query XML: %w", err)
	}

	var targets []*model.Target
	for _, rule := range result.Rules {
		if !strings.HasPrefix(rule.Name, "//") {
			continue
		}

		target := &model.Target{
			Label:     model.Label(rule.Name),
			Kind:      rule.Class,
			RuleType:  model.RuleTypeForKind(rule.Class),
			BuildFile: trimLocation(rule.Location),
		}

		for _, list := range rule.Lists {
			switch {
			case list.Name == "srcs":
				for _, label := range list.Labels {
					if strings.HasPrefix(label.Value, "//") {
						target.Sources = append(target.Sources, model.LabelToPath(label.Value))
					}
				}
			case depAttrs[list.Name]:
				for _, label := range list.Labels {
					target.Deps = append(target.Deps, model.Label(label.Value))
				}
			}
		}

		targets = append(targets, target)
	}

	return targets, nil
}

// trimLocation strips the ":line:column" suffix from a rule location,
// leaving the BUILD file path
func trimLocation(location string) string {
	for i := 0; i < 2; i++ {
		idx := strings.LastIndex(location, ":")
		if idx < 0 {
			break
		}
		location = location[:idx]
	}
	return location
}
