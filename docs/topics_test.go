package docs

import (
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func TestTopics(t *testing.T) {
	// This test ensures that the documentation is in sync with the code:
	// every topic listed in readme.md loads, and every .md file (except
	// readme.md itself) is listed as a topic in readme.md.

	source, err := os.ReadFile("readme.md")
	if err != nil {
		t.Fatalf("failed to read readme.md: %v", err)
	}

	// Walk the readme's list items and collect "name:" prefixes.
	var topicsInReadme []string
	topicRegex := regexp.MustCompile(`^([a-z-]+):`)

	doc := goldmark.DefaultParser().Parse(text.NewReader(source))
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, ok := n.(*ast.ListItem); !ok {
			return ast.WalkContinue, nil
		}
		line := string(n.Text(source))
		if m := topicRegex.FindStringSubmatch(line); m != nil {
			topicsInReadme = append(topicsInReadme, m[1])
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("failed to walk readme.md: %v", err)
	}

	if len(topicsInReadme) == 0 {
		t.Fatal("no topics listed in readme.md")
	}

	for _, topic := range topicsInReadme {
		if _, err := GetTopic(topic); err != nil {
			t.Errorf("topic %q listed in readme.md but does not load: %v", topic, err)
		}
	}

	all, err := GetAllTopics()
	if err != nil {
		t.Fatalf("GetAllTopics: %v", err)
	}
	for _, topic := range all {
		if topic == "readme" {
			continue
		}
		found := false
		for _, listed := range topicsInReadme {
			if listed == topic {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("topic file %s.md is not listed in readme.md", topic)
		}
	}
}

func TestGetTopicsStar(t *testing.T) {
	content, err := GetTopics("*")
	if err != nil {
		t.Fatalf("GetTopics(*): %v", err)
	}
	for _, want := range []string{"# papertrade", "# Quickstart", "# HTTP API"} {
		if !strings.Contains(content, want) {
			t.Errorf("expanded topics miss %q", want)
		}
	}
}
