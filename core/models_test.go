package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same ID",
			content: "test content",
		},
		{
			name:    "empty string",
			content: "",
		},
		{
			name:    "long content",
			content: "This is a much longer piece of content that should still hash consistently",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %s vs %s", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestFieldsGet(t *testing.T) {
	fields := Fields{
		{Key: "name", Value: "bert-base"},
		{Key: "framework", Value: "pytorch"},
	}

	v, ok := fields.Get("framework")
	if !ok {
		t.Fatal("Get() did not find existing key")
	}
	if v != "pytorch" {
		t.Errorf("Get() = %v, want pytorch", v)
	}

	if _, ok := fields.Get("missing"); ok {
		t.Error("Get() found a missing key")
	}
}

func TestFieldsGetFields(t *testing.T) {
	fields := Fields{
		{Key: "popularity", Value: Fields{{Key: "stars", Value: 120}}},
		{Key: "license", Value: "mit"},
	}

	nested := fields.GetFields("popularity")
	if nested == nil {
		t.Fatal("GetFields() returned nil for nested mapping")
	}
	if v, _ := nested.Get("stars"); v != 120 {
		t.Errorf("nested Get() = %v, want 120", v)
	}

	if fields.GetFields("license") != nil {
		t.Error("GetFields() returned non-nil for scalar value")
	}
	if fields.GetFields("missing") != nil {
		t.Error("GetFields() returned non-nil for missing key")
	}
}
