package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type openAPIDoc struct {
	Paths      map[string]map[string]any `yaml:"paths"`
	Components struct {
		Schemas map[string]schema `yaml:"schemas"`
	} `yaml:"components"`
}

type schema struct {
	Type       string            `yaml:"type"`
	Ref        string            `yaml:"$ref"`
	Properties map[string]schema `yaml:"properties"`
	Required   []string          `yaml:"required"`
}

// fieldRule describes one property a schema must declare.
type fieldRule struct {
	Name     string
	Type     string
	Required bool
}

var contract = map[string][]fieldRule{
	"StoryRequest": {
		{Name: "prompt", Type: "string", Required: true},
		{Name: "max_tokens", Type: "integer"},
	},
	"StoryResponse": {
		{Name: "story", Type: "string"},
	},
	"ErrorResponse": {
		{Name: "error", Type: "string"},
	},
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <openapi.yaml>\n", os.Args[0])
		os.Exit(2)
	}
	doc, err := loadDoc(os.Args[1])
	if err != nil {
		exitErr(err)
	}
	if err := checkDoc(doc); err != nil {
		exitErr(err)
	}
	fmt.Println("OpenAPI contract check passed.")
}

func loadDoc(path string) (openAPIDoc, error) {
	var doc openAPIDoc
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func checkDoc(doc openAPIDoc) error {
	ops, ok := doc.Paths["/generate-story"]
	if !ok {
		return errors.New("path \"/generate-story\" missing")
	}
	if _, ok := ops["post"]; !ok {
		return errors.New("/generate-story must declare a post operation")
	}
	for _, name := range []string{"StoryRequest", "StoryResponse", "ErrorResponse"} {
		s, err := getSchema(doc, name)
		if err != nil {
			return err
		}
		if err := validateSchema(name, s, contract[name]); err != nil {
			return err
		}
	}
	return nil
}

func getSchema(doc openAPIDoc, name string) (schema, error) {
	if doc.Components.Schemas == nil {
		return schema{}, errors.New("components.schemas missing")
	}
	s, ok := doc.Components.Schemas[name]
	if !ok {
		return schema{}, fmt.Errorf("schema %q missing", name)
	}
	return s, nil
}

func validateSchema(name string, s schema, rules []fieldRule) error {
	if s.Type != "object" {
		return fmt.Errorf("%s must be object", name)
	}
	required := makeSet(s.Required)
	for _, rule := range rules {
		prop, ok := s.Properties[rule.Name]
		if !ok || prop.Type != rule.Type {
			return fmt.Errorf("%s.%s must be %s", name, rule.Name, rule.Type)
		}
		if rule.Required && !required[rule.Name] {
			return fmt.Errorf("%s.required must include %q", name, rule.Name)
		}
	}
	return nil
}

func makeSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out[item] = true
	}
	return out
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
